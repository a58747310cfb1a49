// Package snapshot reads and writes the flat JSON files used by the bulk
// import/export endpoints.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
)

// Write marshals v pretty-printed and writes it atomically enough for our
// purposes (single writer): temp file in the same directory, then rename.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("snapshot marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("snapshot write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("snapshot rename: %w", err)
	}
	return nil
}

// Read unmarshals the file at path into v.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("snapshot read: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("snapshot parse: %w", err)
	}
	return nil
}
