// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func testRegistry(calls *[]string) *Registry {
	record := func(name string) Handler {
		return func(args []string) error {
			*calls = append(*calls, name+" "+strings.Join(args, ","))
			return nil
		}
	}

	r := NewRegistry()
	r.Register(&Command{Name: "/new", Aliases: []string{"/n"}, Description: "Start a new conversation", Handler: record("new")})
	r.Register(&Command{
		Name:        "/open",
		Aliases:     []string{"/o"},
		Description: "Open a conversation",
		Usage:       "/open N",
		Args:        []ArgDef{{Name: "N", Required: true, Type: ArgTypeNumber, Description: "number from /list"}},
		Handler:     record("open"),
	})
	r.Register(&Command{
		Name:        "/export",
		Description: "Export a conversation",
		Usage:       "/export N [md|html|json]",
		Args: []ArgDef{
			{Name: "N", Required: true, Type: ArgTypeNumber},
			{Name: "format", Type: ArgTypeEnum, Values: []string{"md", "html", "json"}},
		},
		Handler: record("export"),
	})
	r.Register(&Command{Name: "/quit", Handler: func([]string) error { return ErrQuit }})
	r.Register(&Command{Name: "/debug", Hidden: true})
	return r
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		if got := IsCommand(tc.input); got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/open 1", []string{"/open", "1"}},
		{"  /open   2  ", []string{"/open", "2"}},
		{`/say "hello world"`, []string{"/say", "hello world"}},
		{`/say 'it''s'`, []string{"/say", "its"}},
		{`/say "a \"b\""`, []string{"/say", `a "b"`}},
		{`/say ""`, []string{"/say", ""}},
		{"/say café", []string{"/say", "café"}},
	}

	for _, tc := range tests {
		got := splitCommandLine(tc.input)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitCommandLine(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	var calls []string
	p := NewParser(testRegistry(&calls))

	res := p.Parse("  /O  3 ")
	if !res.IsCommand || res.Command == nil || res.Command.Name != "/open" {
		t.Fatalf("Parse alias = %+v", res)
	}
	if !reflect.DeepEqual(res.Args, []string{"3"}) || res.RawArgs != "3" {
		t.Errorf("args = %q raw = %q", res.Args, res.RawArgs)
	}

	if res := p.Parse("hello"); res.IsCommand {
		t.Error("plain text parsed as command")
	}
	if res := p.Parse("/nope"); res.Command != nil || res.CommandName != "/nope" {
		t.Errorf("unknown command = %+v", res)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_Run(t *testing.T) {
	var calls []string
	r := testRegistry(&calls)

	for _, in := range []string{"/n", "/open 2", "/export 1 HTML", "/export 1"} {
		if err := r.Run(in); err != nil {
			t.Errorf("Run(%q) = %v", in, err)
		}
	}
	want := []string{"new ", "open 2", "export 1,HTML", "export 1"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %q, want %q", calls, want)
	}

	if err := r.Run("/quit"); !errors.Is(err, ErrQuit) {
		t.Errorf("Run(/quit) = %v, want ErrQuit", err)
	}
}

func TestRegistry_RunErrors(t *testing.T) {
	var calls []string
	r := testRegistry(&calls)

	tests := []struct {
		input   string
		wantErr string
	}{
		{"/nope", "unknown command"},
		{"/open", "required argument missing"},
		{"/open x", "invalid number"},
		{"/open 0", "invalid number"},
		{"/open 1 2", "too many arguments"},
		{"/export 1 pdf", "invalid value"},
		{"hello", "not a command"},
	}

	for _, tc := range tests {
		err := r.Run(tc.input)
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("Run(%q) = %v, want error containing %q", tc.input, err, tc.wantErr)
		}
	}
	if len(calls) != 0 {
		t.Errorf("handlers ran on invalid input: %q", calls)
	}
	if err := r.Run("/nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command error = %v", err)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	var calls []string
	r := testRegistry(&calls)
	n := len(r.All())

	r.Register(&Command{Name: "/new", Description: "replaced"})
	if len(r.All()) != n {
		t.Errorf("All() length = %d, want %d", len(r.All()), n)
	}
	if got := r.Get("/NEW").Description; got != "replaced" {
		t.Errorf("Get(/NEW).Description = %q", got)
	}
}

func TestRegistry_HelpLines(t *testing.T) {
	var calls []string
	lines := testRegistry(&calls).HelpLines()

	if len(lines) != 4 {
		t.Fatalf("HelpLines() = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "/new                      Start") {
		t.Errorf("first line = %q", lines[0])
	}
	for _, l := range lines {
		if strings.Contains(l, "/debug") {
			t.Error("hidden command listed in help")
		}
	}
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestComplete(t *testing.T) {
	var calls []string
	c := NewCompleter(testRegistry(&calls))

	tests := []struct {
		input string
		want  []string
	}{
		{"/", []string{"/export", "/new", "/open", "/quit"}},
		{"/e", []string{"/export"}},
		{"/O", []string{"/open"}},
		{"/d", nil},
		{"/n", []string{"/new"}},
		{"/export 1 ", []string{"/export 1 html", "/export 1 json", "/export 1 md"}},
		{"/export 1 h", []string{"/export 1 html"}},
		{"/open ", nil},
		{"/unknown x", nil},
		{"hello", nil},
	}

	for _, tc := range tests {
		got := c.Complete(tc.input)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Complete(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
