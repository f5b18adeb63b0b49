package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Load reads and parses the dotenv file at path.
//
// A missing file is not an error: Load returns (nil, nil) so callers can
// distinguish "no local file yet" from a malformed one. When the file
// exists, its modification time is recorded on the document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		doc.lastModified = info.ModTime()
	}

	return doc, nil
}

// Save writes the rewritten document text to path. A non-zero modified
// time is applied to the file afterwards so that a later sync sees the
// file as old as its newest pulled value, not as freshly written.
func Save(path, text string, modified time.Time) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if !modified.IsZero() {
		if err := os.Chtimes(path, modified, modified); err != nil {
			return fmt.Errorf("set mtime on %s: %w", path, err)
		}
	}
	return nil
}
