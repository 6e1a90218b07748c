// Package scrapertest provides a scripted scraper.Executor for tests that
// must not launch processes.
package scrapertest

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/gobeaver/filescraper/scraper"
)

// Reply is the canned outcome of one invocation.
type Reply struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Err simulates a launch failure or kill.
	Err error
}

// Executor replays replies keyed by binary base name and records every
// invocation.
type Executor struct {
	mu      sync.Mutex
	replies map[string]Reply
	handler map[string]func(argv []string) Reply
	calls   [][]string
}

var _ scraper.Executor = (*Executor)(nil)

// NewExecutor creates an executor with no scripted replies. Unscripted
// binaries fail to launch.
func NewExecutor() *Executor {
	return &Executor{
		replies: make(map[string]Reply),
		handler: make(map[string]func(argv []string) Reply),
	}
}

// On scripts the reply for a binary.
func (e *Executor) On(bin string, r Reply) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replies[bin] = r
	return e
}

// OnFunc scripts a reply computed from the argv.
func (e *Executor) OnFunc(bin string, fn func(argv []string) Reply) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler[bin] = fn
	return e
}

// Run implements scraper.Executor.
func (e *Executor) Run(ctx context.Context, argv []string) (*scraper.Output, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command line")
	}
	bin := filepath.Base(argv[0])

	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), argv...))
	reply, ok := e.replies[bin]
	fn := e.handler[bin]
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s killed", bin)
	}
	if fn != nil {
		reply, ok = fn(argv), true
	}
	if !ok {
		return nil, errors.Newf("launch %s: executable file not found", bin)
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &scraper.Output{
		Argv:     argv,
		ExitCode: reply.ExitCode,
		Stdout:   []byte(reply.Stdout),
		Stderr:   []byte(reply.Stderr),
	}, nil
}

// Calls returns every recorded argv in invocation order.
func (e *Executor) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallCount returns the number of invocations.
func (e *Executor) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// CallsTo returns the invocations of one binary.
func (e *Executor) CallsTo(bin string) [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out [][]string
	for _, c := range e.calls {
		if filepath.Base(c[0]) == bin {
			out = append(out, c)
		}
	}
	return out
}
