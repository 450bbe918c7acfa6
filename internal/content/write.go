package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Encode renders v as indented JSON without HTML escaping, so reference
// markers survive as written.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v to path. When backupSuffix is set and path already
// exists, the previous contents are copied to path+backupSuffix first; a
// failed backup does not stop the write.
func WriteJSON(path string, v any, backupSuffix string) (backedUp bool, err error) {
	data, err := Encode(v)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if backupSuffix != "" {
		backedUp = Backup(path, backupSuffix) == nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return backedUp, fmt.Errorf("writing %s: %w", path, err)
	}
	return backedUp, nil
}

// Backup copies path to path+suffix.
func Backup(path, suffix string) error {
	previous, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path+suffix, previous, 0o644)
}
