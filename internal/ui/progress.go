package ui

import (
	"fmt"
	"io"
	"sync"
)

// Progress reports the outcome of each dependency in an update run.
type Progress struct {
	out   io.Writer
	total int
	n     int
	mu    sync.Mutex
}

// NewProgress creates a progress reporter for total dependencies.
// A nil writer discards everything.
func NewProgress(out io.Writer, total int) *Progress {
	if out == nil {
		out = io.Discard
	}
	return &Progress{out: out, total: total}
}

// Done records a finished dependency and prints "[n/total] name: detail".
func (p *Progress) Done(name, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	p.line(name, detail)
}

// Fail records a failed dependency. The counter still advances so the
// failing position is visible.
func (p *Progress) Fail(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	p.line(name, "failed: "+err.Error())
}

// Completed returns how many dependencies have been reported.
func (p *Progress) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// Log prints an informational message within the progress context.
func (p *Progress) Log(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Progress) line(name, detail string) {
	if detail == "" {
		_, _ = fmt.Fprintf(p.out, "[%d/%d] %s\n", p.n, p.total, name)
		return
	}
	_, _ = fmt.Fprintf(p.out, "[%d/%d] %s: %s\n", p.n, p.total, name, detail)
}
