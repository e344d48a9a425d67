// Package alice holds the wire types of the Yandex Dialogs webhook
// protocol: one incoming turn per user utterance and one structured
// response per turn. Field names follow the platform contract.
package alice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const Version = "1.0"

// Request types the platform may deliver.
const (
	TypeSimpleUtterance      = "SimpleUtterance"
	TypeButtonPressed        = "ButtonPressed"
	TypePurchaseConfirmation = "Purchase.Confirmation"
	TypeShowPull             = "Show.Pull"
)

var ErrInvalidTurn = errors.New("invalid incoming turn")

type IncomingTurn struct {
	Meta    Meta    `json:"meta"`
	Request Request `json:"request"`
	Session Session `json:"session"`
	State   State   `json:"state"`
	Version string  `json:"version"`
}

type Meta struct {
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
	ClientID string `json:"client_id"`
}

type Request struct {
	Type              string `json:"type"`
	Command           string `json:"command"`
	OriginalUtterance string `json:"original_utterance"`
	NLU               NLU    `json:"nlu"`
}

type NLU struct {
	Tokens   []string          `json:"tokens"`
	Entities []Entity          `json:"entities"`
	Intents  map[string]Intent `json:"intents"`
}

type Entity struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type Intent struct {
	Slots map[string]Slot `json:"slots"`
}

type Slot struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type Session struct {
	MessageID   int          `json:"message_id"`
	SessionID   string       `json:"session_id"`
	SkillID     string       `json:"skill_id"`
	User        *User        `json:"user,omitempty"`
	Application *Application `json:"application,omitempty"`
	New         bool         `json:"new"`
}

type User struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token,omitempty"`
}

type Application struct {
	ApplicationID string `json:"application_id"`
}

type State struct {
	Session     SessionState    `json:"session"`
	User        json.RawMessage `json:"user,omitempty"`
	Application json.RawMessage `json:"application,omitempty"`
}

// SessionState is the continuation blob the platform round-trips
// between turns verbatim. Data is interpreted only by the handler
// named in NextHandler.
type SessionState struct {
	NextHandler string          `json:"nextHandler,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Validate rejects turns the core must never see. Everything else is
// the router's problem.
func (t *IncomingTurn) Validate() error {
	switch t.Request.Type {
	case TypeSimpleUtterance, TypeButtonPressed, TypePurchaseConfirmation, TypeShowPull:
	default:
		return fmt.Errorf("%w: unsupported request type %q", ErrInvalidTurn, t.Request.Type)
	}
	if strings.TrimSpace(t.Session.SessionID) == "" {
		return fmt.Errorf("%w: missing session id", ErrInvalidTurn)
	}
	if strings.TrimSpace(t.Session.SkillID) == "" {
		return fmt.Errorf("%w: missing skill id", ErrInvalidTurn)
	}
	return nil
}

// AccessToken returns the bearer token delivered with the session, if any.
func (t *IncomingTurn) AccessToken() string {
	if t.Session.User == nil {
		return ""
	}
	return t.Session.User.AccessToken
}

// Utterance returns the full original user phrase.
func (t *IncomingTurn) Utterance() string {
	return t.Request.OriginalUtterance
}

// HasIntent reports whether the NLU payload carries the given intent label.
func (t *IncomingTurn) HasIntent(id string) bool {
	_, ok := t.Request.NLU.Intents[id]
	return ok
}
