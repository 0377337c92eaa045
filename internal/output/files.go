package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/jmylchreest/dorar/internal/logger"
)

// ErrExists is returned by Dir.Write when the file exists and SkipExisting
// is set.
var ErrExists = errors.New("file exists")

// FileRecord describes one written file.
type FileRecord struct {
	Name      string    `json:"name" yaml:"name"`
	Title     string    `json:"title" yaml:"title"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	Entries   int       `json:"entries" yaml:"entries"`
	Bytes     int       `json:"bytes" yaml:"bytes"`
	Chars     int       `json:"chars" yaml:"chars"`
	Skipped   bool      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	WrittenAt time.Time `json:"written_at" yaml:"written_at"`
}

// Dir writes Markdown files into one output directory.
type Dir struct {
	root string

	// SkipExisting leaves files already present untouched so an
	// interrupted run can resume.
	SkipExisting bool
}

// NewDir creates root if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the full path of name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// Exists reports whether name is already present.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.Path(name))
	return err == nil
}

// Write stores content under name. With SkipExisting set, an existing file
// is left alone and ErrExists is returned with a record marked Skipped.
func (d *Dir) Write(name, content string) (FileRecord, error) {
	rec := FileRecord{Name: name}
	if d.SkipExisting && d.Exists(name) {
		rec.Skipped = true
		logger.Info("file exists, skipping", "file", name)
		return rec, ErrExists
	}

	if err := os.WriteFile(d.Path(name), []byte(content), 0o644); err != nil {
		return rec, fmt.Errorf("writing %s: %w", name, err)
	}
	rec.Bytes = len(content)
	rec.Chars = utf8.RuneCountInString(content)
	rec.WrittenAt = time.Now()
	return rec, nil
}
