package scraper

import (
	"context"
	"sync"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/gobeaver/filescraper/logger"
)

// SkipMessage is recorded when a well-formedness-only scraper is skipped.
const SkipMessage = "Skipping scraper: Well-formed check not used."

// Session is what a Strategy sees during a run.
type Session struct {
	Request *Request
	Result  *ResultBuilder
	Log     *zap.SugaredLogger

	exec Executor
}

// Run invokes a validator. Launch failures and kills are returned as
// ScrapeErrors of kind KindToolInvocation.
func (s *Session) Run(ctx context.Context, argv ...string) (*Output, error) {
	cmdline := shellquote.Join(argv...)
	s.Log.Debugw("invoking validator", logger.FieldArgv, cmdline)

	out, err := s.exec.Run(ctx, argv)
	if err != nil {
		s.Log.Warnw("validator invocation failed", logger.FieldArgv, cmdline, logger.FieldError, err)
		return nil, &ScrapeError{
			Kind:    KindToolInvocation,
			Scraper: s.Result.result.Scraper,
			Message: "could not run " + cmdline,
			Err:     err,
		}
	}
	s.Log.Debugw("validator finished",
		logger.FieldArgv, cmdline,
		logger.FieldExitCode, out.ExitCode,
		logger.FieldDurationMS, out.Duration.Milliseconds(),
	)
	return out, nil
}

// Runner drives one descriptor through Init → Running → {Success, Skipped,
// Fatal}. A runner runs at most once.
type Runner struct {
	desc *Descriptor
	req  Request
	exec Executor
	log  *zap.SugaredLogger

	mu     sync.Mutex
	state  State
	result *Result
}

// NewRunner creates a runner. It performs no I/O.
func NewRunner(desc *Descriptor, req Request, exec Executor) *Runner {
	return &Runner{
		desc:  desc,
		req:   req,
		exec:  exec,
		log:   logger.ComponentLogger("scraper.runner").With(logger.FieldScraper, desc.Name),
		state: StateInit,
	}
}

// State returns the current state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Result returns the result once the run has finished, or nil.
func (r *Runner) Result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Run executes the scraper. It always returns a result; fatal outcomes are
// reported through Result.State and Result.Err. Running twice returns
// ErrAlreadyRun.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.state != StateInit {
		r.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	r.state = StateRunning
	r.mu.Unlock()

	log := logger.FromContext(ctx, r.log)
	log.Debugw("state change", logger.FieldState, StateRunning.String())

	result := r.run(ctx, log)

	r.mu.Lock()
	r.state = result.State
	r.result = result
	r.mu.Unlock()

	log.Debugw("state change",
		logger.FieldState, result.State.String(),
		logger.FieldWellFormed, result.WellFormed.String(),
		logger.FieldCount, len(result.Streams),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, log *zap.SugaredLogger) *Result {
	b := NewResultBuilder(r.desc, &r.req)

	if !r.req.FullValidation && r.desc.OnlyWellformed {
		b.AddMessage(SkipMessage)
		return b.Build(StateSkipped)
	}

	s := &Session{Request: &r.req, Result: b, Log: log, exec: r.exec}
	if err := r.desc.Strategy.Scrape(ctx, s); err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = KindToolInvocation
		}
		b.AddError(kind, err.Error())
		result := b.Build(StateFatal)
		result.Err = err
		log.Warnw("scraper failed", logger.FieldError, err)
		return result
	}

	b.identify()
	r.desc.checkSupported(&b.result)
	return b.Build(StateSuccess)
}
