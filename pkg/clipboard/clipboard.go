// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when the host has no usable clipboard.
var ErrUnavailable = errors.New("no clipboard available")

// Writer copies text somewhere the user can paste it from.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// System writes to the OS clipboard.
type System struct {
	unsupported func() bool
	write       func(string) error
}

// NewSystem returns a Writer backed by the OS clipboard.
func NewSystem() *System {
	return &System{
		unsupported: func() bool { return clipboard.Unsupported },
		write:       clipboard.WriteAll,
	}
}

// Available reports whether a clipboard backend was found on this host.
func (s *System) Available() bool {
	return !s.unsupported()
}

func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Available() {
		return ErrUnavailable
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Buffer is an in-memory Writer.
type Buffer struct {
	mu   sync.Mutex
	text string
	n    int
}

func (b *Buffer) WriteText(_ context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.n++
	return nil
}

// Text returns the last copied text.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Writes returns how many copies were made.
func (b *Buffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}
