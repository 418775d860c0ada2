package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Recorder describes where submitted forms go.
type Recorder interface {
	Record(ctx context.Context, s Submission) error
	List(ctx context.Context) ([]Submission, error)
}

// Submission is one submitted form.
type Submission struct {
	At     time.Time    `yaml:"at"`
	Values []FieldValue `yaml:"values"`
}

// FieldValue is the formatted value of one field at submit time.
type FieldValue struct {
	Label  string `yaml:"label"`
	Value  string `yaml:"value"`
	Secure bool   `yaml:"secure,omitempty"`
}

// ErrEmptySubmission indicates a submission where every value is empty.
var ErrEmptySubmission = errors.New("submission has no values")

// Redact replaces the value of a secure field so it is never persisted.
func (v FieldValue) Redact() FieldValue {
	if v.Secure && v.Value != "" {
		v.Value = strings.Repeat("*", len([]rune(v.Value)))
	}
	return v
}

// Validate rejects submissions without any value.
func (s Submission) Validate() error {
	for _, v := range s.Values {
		if v.Value != "" {
			return nil
		}
	}
	return ErrEmptySubmission
}

// FileRecorder appends submissions to a yaml file, one document each.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

// NewFileRecorder constructs a FileRecorder.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Path returns the file submissions are written to.
func (r *FileRecorder) Path() string {
	return r.path
}

// Record appends the submission with secure values redacted.
func (r *FileRecorder) Record(ctx context.Context, s Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s = redact(s)

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append([]byte("---\n"), data...)); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}

// List decodes every recorded submission. A missing file means none yet.
func (r *FileRecorder) List(ctx context.Context) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	var out []Submission
	dec := yaml.NewDecoder(f)
	for {
		var s Submission
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode submission %d: %w", len(out)+1, err)
		}
		out = append(out, s)
	}
}

// MemoryRecorder keeps submissions in memory.
type MemoryRecorder struct {
	mu          sync.Mutex
	submissions []Submission
}

// NewMemoryRecorder constructs an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record stores the submission with secure values redacted.
func (r *MemoryRecorder) Record(ctx context.Context, s Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, redact(s))
	return nil
}

// List returns a copy of the stored submissions.
func (r *MemoryRecorder) List(ctx context.Context) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Submission, len(r.submissions))
	copy(out, r.submissions)
	return out, nil
}

func redact(s Submission) Submission {
	values := make([]FieldValue, len(s.Values))
	for i, v := range s.Values {
		values[i] = v.Redact()
	}
	s.Values = values
	return s
}
