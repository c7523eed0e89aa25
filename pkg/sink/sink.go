package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrClosed is returned by sinks written to after Close.
var ErrClosed = errors.New("sink closed")

// Sink receives serialized payloads.
type Sink interface {
	Write(ctx context.Context, payload string) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, payload string) error

// Write calls f.
func (f Func) Write(ctx context.Context, payload string) error {
	return f(ctx, payload)
}

// Writer writes each payload followed by a newline. Writes are serialized.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Stdout returns a Writer over os.Stdout.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Stderr returns a Writer over os.Stderr.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

// Write implements Sink.
func (s *Writer) Write(_ context.Context, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, payload+"\n"); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	return nil
}

// File appends payloads to a file.
type File struct {
	mu     sync.Mutex
	f      *os.File
	closed bool
}

// NewFile opens path for appending, creating it with 0600 permissions.
func NewFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening sink file: %w", err)
	}
	return &File{f: f}, nil
}

// Write implements Sink.
func (s *File) Write(_ context.Context, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, err := s.f.WriteString(payload + "\n"); err != nil {
		return fmt.Errorf("writing sink file: %w", err)
	}
	return nil
}

// Close syncs and closes the file. It is safe to call more than once.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("syncing sink file: %w", err)
	}
	return s.f.Close()
}

// Multi writes to every sink in order and joins their errors.
func Multi(sinks ...Sink) Sink {
	return Func(func(ctx context.Context, payload string) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Write(ctx, payload); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
