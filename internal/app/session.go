package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"textchecker/internal/contracts"
	"textchecker/internal/debounce"
	"textchecker/internal/logging"
)

// Result is a published lint of one revision of a document.
type Result struct {
	Seq     uint64
	Text    string
	Results []contracts.LintResult
}

// Messages flattens the messages of all results.
func (r Result) Messages() []contracts.Message {
	var messages []contracts.Message
	for _, result := range r.Results {
		messages = append(messages, result.Messages...)
	}
	if messages == nil {
		messages = []contracts.Message{}
	}
	return messages
}

// PublishFunc receives lint results in dispatch order.
type PublishFunc func(Result)

// Session lints one document as it changes. Changes are debounced; each
// dispatch supersedes the previous one, whose result is never published.
type Session struct {
	checker   *Checker
	publish   PublishFunc
	debouncer *debounce.Debouncer[string]
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	inflight context.CancelFunc
	closed   bool

	publishMu sync.Mutex
}

// NewSession creates a session. A non-positive quiet period means the
// debouncer default.
func NewSession(checker *Checker, quiet time.Duration, publish PublishFunc, opts ...debounce.Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		checker: checker,
		publish: publish,
		logger:  logging.Component(checker.base, "session"),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.debouncer = debounce.New(quiet, s.dispatch, opts...)
	return s
}

// OnChange records a new revision. The lint runs once the document has been
// quiet for the debounce period.
func (s *Session) OnChange(text string) {
	s.debouncer.Trigger(text)
}

// LintNow drops any pending change and lints text immediately.
func (s *Session) LintNow(text string) {
	s.debouncer.Cancel()
	s.dispatch(text)
}

// Flush dispatches a pending change now. It reports whether one was pending.
func (s *Session) Flush() bool {
	return s.debouncer.Flush()
}

// Pending reports whether a change is waiting for the quiet period.
func (s *Session) Pending() bool {
	return s.debouncer.State() == debounce.StatePending
}

// Seq returns the sequence number of the latest dispatch.
func (s *Session) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Close cancels the pending change and in-flight interest, then waits for
// outstanding dispatches to return.
func (s *Session) Close() {
	s.debouncer.Cancel()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) dispatch(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.inflight != nil {
		s.inflight()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		results := s.checker.LintText(ctx, text)

		s.publishMu.Lock()
		defer s.publishMu.Unlock()
		if !s.isLatest(seq) {
			s.logger.Debug("discarding superseded result", "seq", seq)
			return
		}
		s.publish(Result{Seq: seq, Text: text, Results: results})
	}()
}

func (s *Session) isLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && seq == s.seq
}
