package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestBindParams(t *testing.T) {
	t.Run("positional in numeric order", func(t *testing.T) {
		args := bindParams(map[string]any{"2": "b", "1": "a", "10": "j"})
		if len(args) != 3 || args[0] != "a" || args[1] != "b" || args[2] != "j" {
			t.Fatalf("expected [a b j], got %v", args)
		}
	})

	t.Run("named", func(t *testing.T) {
		args := bindParams(map[string]any{"kind": "song", "1": "x"})
		if len(args) != 1 {
			t.Fatalf("expected a single NamedArgs value, got %v", args)
		}
		named, ok := args[0].(pgx.NamedArgs)
		if !ok {
			t.Fatalf("expected pgx.NamedArgs, got %T", args[0])
		}
		if named["kind"] != "song" {
			t.Fatalf("expected kind=song, got %v", named["kind"])
		}
	})

	t.Run("empty", func(t *testing.T) {
		if args := bindParams(nil); args != nil {
			t.Fatalf("expected nil args, got %v", args)
		}
	})
}
