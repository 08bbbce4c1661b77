package smtlib

import (
	"bytes"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoInput is returned by a Pipe that has nothing to read yet but has not been closed.
// It is not an end of stream: reading again after more input is flushed succeeds.
var ErrNoInput = errors.New("no input available")

// Pipe is an in-memory text channel. Text written to it becomes readable once flushed.
// One goroutine may write while another reads.
type Pipe struct {
	mu      sync.Mutex
	pending bytes.Buffer
	ready   bytes.Buffer
	closed  bool
}

func NewPipe() *Pipe {
	return &Pipe{}
}

func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	return p.pending.Write(b)
}

func (p *Pipe) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

// Flush makes everything written so far readable.
func (p *Pipe) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return io.ErrClosedPipe
	}
	_, err := p.pending.WriteTo(&p.ready)
	return err
}

// Close flushes pending text and marks the end of the stream.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	_, err := p.pending.WriteTo(&p.ready)
	return err
}

// Read returns flushed text. With nothing flushed it returns ErrNoInput, or io.EOF once closed.
func (p *Pipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready.Len() == 0 {
		if p.closed {
			return 0, io.EOF
		}
		return 0, ErrNoInput
	}
	return p.ready.Read(b)
}

// Buffered is the number of flushed bytes not read yet.
func (p *Pipe) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready.Len()
}
