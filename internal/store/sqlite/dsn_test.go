package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "relative", input: "sqlite://./micelio.db", expected: "./micelio.db"},
		{name: "bare relative", input: "sqlite://micelio.db", expected: "./micelio.db"},
		{name: "absolute", input: "sqlite:///var/lib/micelio.db", expected: "/var/lib/micelio.db"},
		{name: "escaped with query", input: "sqlite://my%20data.db?mode=ro", expected: "./my data.db?mode=ro"},
		{name: "wrong scheme", input: "postgres://localhost/micelio", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithPragmas(t *testing.T) {
	got := withPragmas("./micelio.db")
	want := "./micelio.db?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got = withPragmas("./micelio.db?mode=ro")
	want = "./micelio.db?mode=ro&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
