package eval

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func stubDef(name string) TaskDefinition {
	return TaskDefinition{
		Name:        name,
		Description: "stub",
		DefaultRuns: 1,
		Trial: func(ctx context.Context, call ModelCaller, p Params, rng *rand.Rand) Outcome {
			return Outcome{Score: 1}
		},
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("not_a_real_eval")
	if !errors.Is(err, ErrUnknownEval) {
		t.Fatalf("expected ErrUnknownEval, got %v", err)
	}
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubDef("c"))
	r.Register(stubDef("a"))
	r.Register(stubDef("b"))

	names := r.Names()
	want := []string{"c", "a", "b"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestRegistry_OverwriteKeepsOneEntry(t *testing.T) {
	r := NewRegistry()
	r.Register(stubDef("dup"))

	replacement := stubDef("dup")
	replacement.Description = "second"
	r.Register(replacement)

	if n := len(r.List()); n != 1 {
		t.Fatalf("expected 1 entry after overwrite, got %d", n)
	}
	def, err := r.Get("dup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if def.Description != "second" {
		t.Fatalf("expected last registration to win, got %q", def.Description)
	}
}

func TestDefaultRegistry_Builtins(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"math", "tictactoe_random", "tictactoe_perfect"} {
		def, err := r.Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if def.DefaultRuns <= 0 {
			t.Fatalf("%s: default runs must be positive", name)
		}
		if def.Trial == nil {
			t.Fatalf("%s: missing trial function", name)
		}
	}
}

func TestMergeParams(t *testing.T) {
	defaults := Params{"low": 100, "high": 1000, "label": "x", "rate": 0.5}

	t.Run("defaults pass through", func(t *testing.T) {
		p, err := MergeParams(defaults, nil)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if p.Int("low") != 100 || p.Int("high") != 1000 {
			t.Fatalf("defaults mangled: %v", p)
		}
	})

	t.Run("override wins key by key", func(t *testing.T) {
		p, err := MergeParams(defaults, map[string]string{"low": "5", "rate": "0.9"})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if p.Int("low") != 5 {
			t.Fatalf("expected low=5, got %d", p.Int("low"))
		}
		if p.Int("high") != 1000 {
			t.Fatalf("high should keep default, got %d", p.Int("high"))
		}
		if p.Float("rate") != 0.9 {
			t.Fatalf("expected rate=0.9, got %f", p.Float("rate"))
		}
		if p.Str("label") != "x" {
			t.Fatalf("expected label=x, got %q", p.Str("label"))
		}
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		if _, err := MergeParams(defaults, map[string]string{"nope": "1"}); err == nil {
			t.Fatal("expected error for unknown key")
		}
	})

	t.Run("type mismatch rejected", func(t *testing.T) {
		if _, err := MergeParams(defaults, map[string]string{"low": "many"}); err == nil {
			t.Fatal("expected error for non-integer value")
		}
	})
}
