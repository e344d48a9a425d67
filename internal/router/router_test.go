package router

import (
	"testing"

	"github.com/itplan/alice-worktime/internal/alice"
)

func buildTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()
	registrations := []struct {
		key  Key
		auth bool
	}{
		{Root, false},
		{Unknown, false},
		{Intent("getTasks"), true},
		{Intent("getReport"), true},
		{Command("мои задачи"), true},
		{Command("далее"), false},
		{Handler("time"), true},
		{Handler("confirm"), true},
	}
	for _, r := range registrations {
		if err := table.Register(r.key, r.auth); err != nil {
			t.Fatalf("register %s: %v", r.key, err)
		}
	}
	return table
}

func turnWith(command string, intents []string, nextHandler string) *alice.IncomingTurn {
	turn := &alice.IncomingTurn{}
	turn.Request.Command = command
	if len(intents) > 0 {
		turn.Request.NLU.Intents = make(map[string]alice.Intent, len(intents))
		for _, id := range intents {
			turn.Request.NLU.Intents[id] = alice.Intent{}
		}
	}
	turn.State.Session.NextHandler = nextHandler
	return turn
}

func TestRoutePriority(t *testing.T) {
	t.Parallel()
	table := buildTable(t)

	cases := []struct {
		name string
		turn *alice.IncomingTurn
		want Key
	}{
		{"empty turn is root", turnWith("", nil, ""), Root},
		{"intent beats command", turnWith("мои задачи", []string{"getReport"}, ""), Intent("getReport")},
		{"intent beats carried handler", turnWith("что-то", []string{"getTasks"}, "time"), Intent("getTasks")},
		{"command beats carried handler", turnWith("Далее", nil, "time"), Command("далее")},
		{"carried handler catches free text", turnWith("два часа", nil, "time"), Handler("time")},
		{"unknown command without handler", turnWith("сделай кофе", nil, ""), Unknown},
		{"unregistered handler falls through to unknown", turnWith("два часа", nil, "stale-step"), Unknown},
		{"unregistered handler with empty command is root", turnWith("", nil, "stale-step"), Root},
		{"unrecognized intent is ignored", turnWith("", []string{"YANDEX.WHAT"}, ""), Root},
	}
	for _, tc := range cases {
		if got := table.Route(tc.turn); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestRouteIntentRegistrationOrderWins(t *testing.T) {
	t.Parallel()
	table := buildTable(t)

	turn := turnWith("", []string{"getReport", "getTasks"}, "")
	if got := table.Route(turn); got != Intent("getTasks") {
		t.Fatalf("expected earliest registered intent to win, got %s", got)
	}
}

func TestRouteCommandNormalization(t *testing.T) {
	t.Parallel()
	table := buildTable(t)

	turn := turnWith("  Мои   ЗАДАЧИ ", nil, "")
	if got := table.Route(turn); got != Command("мои задачи") {
		t.Fatalf("expected normalized command match, got %s", got)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Parallel()
	table := NewTable()
	if err := table.Register(Command("далее"), false); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := table.Register(Command("ДАЛЕЕ"), true); err == nil {
		t.Fatal("expected duplicate registration to fail after normalization")
	}
}

func TestRequiresAuth(t *testing.T) {
	t.Parallel()
	table := buildTable(t)

	if !table.RequiresAuth(Handler("time")) {
		t.Fatal("expected handler route to require auth")
	}
	if table.RequiresAuth(Command("далее")) {
		t.Fatal("expected pagination command to stay public")
	}
	if table.RequiresAuth(Root) {
		t.Fatal("expected root to stay public")
	}
}
