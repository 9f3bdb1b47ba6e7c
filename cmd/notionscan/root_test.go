package main

import (
	"errors"
	"strings"
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "notionscan" {
			t.Errorf("expected use 'notionscan', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("accepts scan flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"format", "output", "config", "probe", "save-history"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected root flag %q", name)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"scan": false, "compare": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			name := strings.Fields(sub.Use)[0]
			if _, ok := want[name]; ok {
				want[name] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

func TestRootCmd_NoArguments(t *testing.T) {
	t.Parallel()

	stdout, _, err := runRoot(t)
	if !errors.Is(err, errNoArguments) {
		t.Fatalf("expected errNoArguments, got %v", err)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Errorf("expected help output, got:\n%s", stdout)
	}
}

func TestRootCmd_RejectsPositionalArguments(t *testing.T) {
	t.Parallel()

	if _, _, err := runRoot(t, "-f", "json", "extra"); err == nil {
		t.Error("expected error for a positional argument")
	}
}
