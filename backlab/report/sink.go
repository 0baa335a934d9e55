package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink delivers an assembled document to the user. The CLI writes a
// file; a browser front-end would trigger a download instead.
type Sink interface {
	Save(doc *Document) (string, error)
}

// FileSink writes report documents into an output directory, creating
// it on first use. The document's own timestamped filename keeps
// repeated exports from colliding.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(doc *Document) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(s.Dir, doc.Filename)
	if err := os.WriteFile(path, doc.HTML, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
