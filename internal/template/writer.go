package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteFile renders the export document to path. Struct tag order is the
// key order; nothing is sorted. Generated expressions contain no spaces, so
// the emitter has no break points and never splits them across lines.
func WriteFile(path string, export *Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(export); err != nil {
		f.Close()
		return fmt.Errorf("encode template yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush template yaml: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
