package output

import (
	"fmt"
	"os"
	"time"
)

// Manifest summarizes one run.
type Manifest struct {
	Command  string       `json:"command" yaml:"command"`
	Source   string       `json:"source" yaml:"source"`
	Started  time.Time    `json:"started" yaml:"started"`
	Finished time.Time    `json:"finished" yaml:"finished"`
	Requests int          `json:"requests" yaml:"requests"`
	Failures int          `json:"failures" yaml:"failures"`
	Bytes    int64        `json:"bytes" yaml:"bytes"`
	Files    []FileRecord `json:"files" yaml:"files"`

	// Clusters maps each section key to the raw headings filed under it.
	Clusters map[string][]string `json:"clusters,omitempty" yaml:"clusters,omitempty"`
}

// Add appends a file record.
func (m *Manifest) Add(rec FileRecord) {
	m.Files = append(m.Files, rec)
}

// Written returns the number of files written, excluding skipped ones.
func (m *Manifest) Written() int {
	n := 0
	for _, f := range m.Files {
		if !f.Skipped {
			n++
		}
	}
	return n
}

// Save writes the manifest to path in the given format.
func (m *Manifest) Save(path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	defer f.Close()

	w, err := NewWriter(f, format)
	if err != nil {
		return err
	}
	if err := w.Write(m); err != nil {
		return err
	}
	return w.Close()
}
