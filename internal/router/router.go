// Package router decides which conversational step handles an
// incoming turn. The route table is built statically at startup, so
// dispatch is data-driven and testable without a running server.
package router

import (
	"fmt"
	"strings"

	"github.com/itplan/alice-worktime/internal/alice"
)

type Kind int

const (
	KindRoot Kind = iota
	KindIntent
	KindCommand
	KindHandler
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindIntent:
		return "intent"
	case KindCommand:
		return "command"
	case KindHandler:
		return "handler"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Key identifies one registered step.
type Key struct {
	Kind Kind
	ID   string
}

func Intent(id string) Key  { return Key{Kind: KindIntent, ID: id} }
func Command(id string) Key { return Key{Kind: KindCommand, ID: NormalizeCommand(id)} }
func Handler(id string) Key { return Key{Kind: KindHandler, ID: id} }

var (
	Root    = Key{Kind: KindRoot}
	Unknown = Key{Kind: KindUnknown}
)

func (k Key) String() string {
	if k.ID == "" {
		return k.Kind.String()
	}
	return k.Kind.String() + ":" + k.ID
}

// Table is the static route table. Intent priority is the
// registration order: when a turn carries several recognized intents,
// the earliest registered one wins. Relying on enumeration order of
// the upstream NLU payload would make routing nondeterministic.
type Table struct {
	requiresAuth map[Key]bool
	intentOrder  []string
	commands     map[string]struct{}
	handlers     map[string]struct{}
}

func NewTable() *Table {
	return &Table{
		requiresAuth: make(map[Key]bool),
		commands:     make(map[string]struct{}),
		handlers:     make(map[string]struct{}),
	}
}

// Register adds a step to the table. Registering the same key twice is
// a programming error.
func (t *Table) Register(key Key, requiresAuth bool) error {
	if _, dup := t.requiresAuth[key]; dup {
		return fmt.Errorf("route %s registered twice", key)
	}
	t.requiresAuth[key] = requiresAuth
	switch key.Kind {
	case KindIntent:
		t.intentOrder = append(t.intentOrder, key.ID)
	case KindCommand:
		t.commands[key.ID] = struct{}{}
	case KindHandler:
		t.handlers[key.ID] = struct{}{}
	}
	return nil
}

func (t *Table) RequiresAuth(key Key) bool {
	return t.requiresAuth[key]
}

// Route selects the step for a validated turn. Priority is total and
// fixed: intent > command > carried handler > unknown command > root.
func (t *Table) Route(turn *alice.IncomingTurn) Key {
	for _, id := range t.intentOrder {
		if turn.HasIntent(id) {
			return Intent(id)
		}
	}
	command := NormalizeCommand(turn.Request.Command)
	if _, ok := t.commands[command]; ok {
		return Key{Kind: KindCommand, ID: command}
	}
	if next := turn.State.Session.NextHandler; next != "" {
		if _, ok := t.handlers[next]; ok {
			return Handler(next)
		}
	}
	if command != "" {
		return Unknown
	}
	return Root
}

// NormalizeCommand lowercases a spoken command and collapses interior
// whitespace so literal matching survives recognizer formatting.
func NormalizeCommand(command string) string {
	return strings.Join(strings.Fields(strings.ToLower(command)), " ")
}
