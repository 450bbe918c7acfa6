package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"micelio/internal/config"
)

func TestLoadDataset(t *testing.T) {
	t.Run("fixture loads", func(t *testing.T) {
		ds, err := LoadDataset(filepath.Join("testdata", "data"), config.Default().Files)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(ds.Characters) != 2 || len(ds.Locations) != 2 || len(ds.Songs) != 1 || len(ds.Plots) != 1 {
			t.Fatalf("unexpected collection sizes: %d %d %d %d", len(ds.Characters), len(ds.Locations), len(ds.Songs), len(ds.Plots))
		}
		if len(ds.Timeline) != 5 {
			t.Fatalf("expected 5 events, got %d", len(ds.Timeline))
		}
		if ds.Intro.Logline == "" || len(ds.Intro.Storyline) != 1 {
			t.Fatalf("expected intro loaded, got %+v", ds.Intro)
		}
		if got := ds.Characters[0].Relations[0]; got.Target != "tamen" || got.Type != "aliado" {
			t.Fatalf("unexpected relation: %+v", got)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := copyFixture(t)
		writeFile(t, filepath.Join(dir, "songs.json"), "[{\"id\": ")
		_, err := LoadDataset(dir, config.Default().Files)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed, got %v", err)
		}
		var loadErr *LoadError
		if !errors.As(err, &loadErr) || !strings.HasSuffix(loadErr.File, "songs.json") {
			t.Fatalf("expected load error naming songs.json, got %v", err)
		}
	})

	t.Run("wrong shape", func(t *testing.T) {
		dir := copyFixture(t)
		writeFile(t, filepath.Join(dir, "plots.json"), "{\"id\": \"p\"}")
		if _, err := LoadDataset(dir, config.Default().Files); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		dir := copyFixture(t)
		if err := os.Remove(filepath.Join(dir, "intro.json")); err != nil {
			t.Fatalf("remove: %v", err)
		}
		_, err := LoadDataset(dir, config.Default().Files)
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected not exist error, got %v", err)
		}
	})
}

func TestLocationBaseName(t *testing.T) {
	cases := map[string]string{
		"Red Tower (ruins)": "Red Tower",
		"Red Tower":         "",
		"  Dome (old) ":     "Dome",
	}
	for name, want := range cases {
		if got := (Location{Name: name}).BaseName(); got != want {
			t.Fatalf("%q: expected %q, got %q", name, want, got)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("creates parents without escaping markup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out.json")
		backedUp, err := WriteJSON(path, map[string]string{"text": `<a href="#">x</a>`}, ".bak")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if backedUp {
			t.Fatalf("expected no backup for a new file")
		}
		data := readFile(t, path)
		if !strings.Contains(data, `<a href=\"#\">x</a>`) {
			t.Fatalf("expected unescaped markup, got %s", data)
		}
		if !strings.Contains(data, "\n  \"text\"") {
			t.Fatalf("expected indented output, got %s", data)
		}
	})

	t.Run("backs up previous version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		writeFile(t, path, "old")
		backedUp, err := WriteJSON(path, []string{"new"}, ".bak")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !backedUp {
			t.Fatalf("expected backup")
		}
		if got := readFile(t, path+".bak"); got != "old" {
			t.Fatalf("expected old contents in backup, got %q", got)
		}
		if got := readFile(t, path); !strings.Contains(got, "new") {
			t.Fatalf("expected new contents, got %q", got)
		}
	})
}

func TestVisitText(t *testing.T) {
	ds, err := LoadDataset(filepath.Join("testdata", "data"), config.Default().Files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	seen := map[Kind]int{}
	ds.VisitText(func(f Field, value string) string {
		if f.Linkable {
			seen[f.Kind]++
			return strings.ToUpper(value)
		}
		return value
	})

	for _, kind := range Kinds {
		if seen[kind] == 0 {
			t.Fatalf("expected linkable fields visited for %s", kind)
		}
	}
	if ds.Characters[0].Name != "Vaquero Atómico" {
		t.Fatalf("expected names untouched, got %q", ds.Characters[0].Name)
	}
	if ds.Characters[0].Skills[0] != "SINTONIZAR EL MICELIO" {
		t.Fatalf("expected list items rewritten, got %q", ds.Characters[0].Skills[0])
	}
	if ds.Intro.Storyline[0].Summary != "TAMEN DESPIERTA EN EL DESIERTO DE SAL." {
		t.Fatalf("expected storyline summary rewritten, got %q", ds.Intro.Storyline[0].Summary)
	}
	if ds.Characters[0].Relations[0].Target != "tamen" {
		t.Fatalf("expected references untouched")
	}
}

func TestClone(t *testing.T) {
	ds, err := LoadDataset(filepath.Join("testdata", "data"), config.Default().Files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	clone := ds.Clone()
	clone.VisitText(func(_ Field, _ string) string { return "x" })
	if ds.Characters[0].Motivations[0] == "x" || ds.Intro.Storyline[0].Summary == "x" || ds.Plots[0].Summary == "x" {
		t.Fatalf("expected source dataset untouched by clone rewrite")
	}
}

func copyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(filepath.Join("testdata", "data"))
	if err != nil {
		t.Fatalf("read fixture dir: %v", err)
	}
	for _, entry := range entries {
		writeFile(t, filepath.Join(dir, entry.Name()), readFile(t, filepath.Join("testdata", "data", entry.Name())))
	}
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
