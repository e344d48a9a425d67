package alice

import "encoding/json"

// OutgoingTurn is the structured dialogue response. The session_state
// block is emitted only when a continuation was set, so an omitted
// block tells the platform to clear prior state.
type OutgoingTurn struct {
	Response            Body          `json:"response"`
	Version             string        `json:"version"`
	StartAccountLinking *struct{}     `json:"start_account_linking,omitempty"`
	SessionState        *SessionState `json:"session_state,omitempty"`
}

type Body struct {
	Text       string   `json:"text"`
	EndSession bool     `json:"end_session"`
	Buttons    []Button `json:"buttons,omitempty"`
}

type Button struct {
	Title string `json:"title"`
	Hide  bool   `json:"hide"`
}

// NewResponse returns a plain-text response with end_session false.
func NewResponse(text string) *OutgoingTurn {
	return &OutgoingTurn{
		Response: Body{Text: text},
		Version:  Version,
	}
}

func (o *OutgoingTurn) WithEndSession() *OutgoingTurn {
	o.Response.EndSession = true
	return o
}

func (o *OutgoingTurn) WithAccountLinking() *OutgoingTurn {
	o.StartAccountLinking = &struct{}{}
	return o
}

// WithButton appends a button to the end of the ordered list.
func (o *OutgoingTurn) WithButton(title string, hide bool) *OutgoingTurn {
	o.Response.Buttons = append(o.Response.Buttons, Button{Title: title, Hide: hide})
	return o
}

// PrependButton puts a navigation button at the front of the list,
// removing any existing button with the same title first.
func (o *OutgoingTurn) PrependButton(title string, hide bool) *OutgoingTurn {
	kept := o.Response.Buttons[:0]
	for _, b := range o.Response.Buttons {
		if b.Title != title {
			kept = append(kept, b)
		}
	}
	o.Response.Buttons = append([]Button{{Title: title, Hide: hide}}, kept...)
	return o
}

// WithNextHandler names the step that must receive the following turn.
func (o *OutgoingTurn) WithNextHandler(name string) *OutgoingTurn {
	o.sessionState().NextHandler = name
	return o
}

// WithData attaches the continuation payload for the next handler.
// The payload types are plain structs, so marshalling cannot fail at
// runtime; a nil payload leaves the state untouched.
func (o *OutgoingTurn) WithData(payload any) *OutgoingTurn {
	if payload == nil {
		return o
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return o
	}
	o.sessionState().Data = raw
	return o
}

func (o *OutgoingTurn) sessionState() *SessionState {
	if o.SessionState == nil {
		o.SessionState = &SessionState{}
	}
	return o.SessionState
}
