package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"textchecker/internal/app"
	"textchecker/internal/contracts"
)

// fixOutcome is a fix computed off the run loop against base.
type fixOutcome struct {
	base   string
	result contracts.FixResult
}

type metadataReady struct {
	html string
}

// pageConn is one browser page. Its run loop owns the websocket writes and
// the document state; everything else talks to it through events.
type pageConn struct {
	id      string
	server  *PageServer
	ws      *websocket.Conn
	logger  *slog.Logger
	checker *app.Checker
	session *app.Session

	events chan any
	done   chan struct{}
	once   sync.Once

	// Owned by the run loop.
	text   string
	latest app.Result
}

func newPageConn(s *PageServer, ws *websocket.Conn) *pageConn {
	pc := &pageConn{
		id:     uuid.NewString(),
		server: s,
		ws:     ws,
		events: make(chan any, 64),
		done:   make(chan struct{}),
	}
	pc.logger = s.logger.With("session", pc.id)
	pc.checker = app.NewChecker(s.client, s.ext,
		app.WithStatus(func(status string) {
			pc.post(contracts.StatusMessage{Type: contracts.MessageTypeStatus, Status: status})
		}),
		app.WithLogger(s.base.With("session", pc.id)),
	)
	pc.session = app.NewSession(pc.checker, s.quiet, func(r app.Result) { pc.post(r) }, s.debounce...)
	return pc
}

// post hands an event to the run loop. It gives up once the page is gone.
func (pc *pageConn) post(event any) {
	select {
	case pc.events <- event:
	case <-pc.done:
	}
}

func (pc *pageConn) stop() {
	pc.once.Do(func() {
		close(pc.done)
	})
}

// readLoop forwards browser messages to the run loop until the socket fails.
func (pc *pageConn) readLoop() {
	defer pc.stop()
	for {
		_, raw, err := pc.ws.ReadMessage()
		if err != nil {
			return
		}
		pc.post(raw)
	}
}

// run serializes document state changes and websocket writes on a single goroutine.
func (pc *pageConn) run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		pc.stop()
		pc.session.Close()
		_ = pc.ws.Close()
	}()

	go pc.loadMetadata(runCtx)

	for {
		select {
		case event := <-pc.events:
			if !pc.handle(runCtx, event) {
				return
			}
		case <-pc.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (pc *pageConn) handle(ctx context.Context, event any) bool {
	switch ev := event.(type) {
	case []byte:
		pc.handleBrowser(ctx, ev)
		return true
	case contracts.StatusMessage:
		return pc.write(ev)
	case app.Result:
		pc.latest = ev
		return pc.write(contracts.DiagnosticsMessage{
			Type:     contracts.MessageTypeDiagnostics,
			Rev:      ev.Seq,
			Text:     ev.Text,
			Messages: ev.Messages(),
		})
	case fixOutcome:
		return pc.applyFix(ev)
	case metadataReady:
		return pc.write(contracts.MetadataMessage{Type: contracts.MessageTypeMetadata, HTML: ev.html})
	default:
		pc.logger.Warn("unexpected event", "event", event)
		return true
	}
}

func (pc *pageConn) handleBrowser(ctx context.Context, raw []byte) {
	var envelope contracts.IncomingMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		pc.logger.Debug("malformed browser message", "error", err)
		return
	}

	switch envelope.Type {
	case contracts.MessageTypeChange:
		var msg contracts.ChangeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		pc.text = msg.Text
		pc.session.OnChange(msg.Text)

	case contracts.MessageTypeFix:
		var msg contracts.FixMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		messages := pc.latest.Messages()
		if msg.Index < 0 || msg.Index >= len(messages) {
			pc.logger.Debug("fix index out of range", "index", msg.Index)
			return
		}
		if pc.latest.Text != pc.text || pc.session.Pending() {
			pc.logger.Debug("ignoring fix for a stale result", "rev", pc.latest.Seq)
			return
		}
		target := messages[msg.Index]
		base := pc.latest.Text
		go func() {
			pc.post(fixOutcome{base: base, result: pc.checker.FixText(ctx, base, &target)})
		}()

	case contracts.MessageTypeFixRule:
		var msg contracts.FixRuleMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		pc.fixRemote(ctx, msg.RuleID)

	case contracts.MessageTypeFixAll:
		pc.fixRemote(ctx, "")

	default:
		pc.logger.Debug("unknown browser message", "type", envelope.Type)
	}
}

// fixRemote runs a worker fix off the loop so status updates keep flowing.
func (pc *pageConn) fixRemote(ctx context.Context, ruleID string) {
	base := pc.text
	go func() {
		var result contracts.FixResult
		if ruleID == "" {
			result = pc.checker.FixAll(ctx, base)
		} else {
			result = pc.checker.FixRule(ctx, base, ruleID)
		}
		pc.post(fixOutcome{base: base, result: result})
	}()
}

// applyFix publishes a fixed document unless the page changed in the meantime.
func (pc *pageConn) applyFix(outcome fixOutcome) bool {
	if outcome.base != pc.text {
		pc.logger.Debug("discarding fix for an edited document")
		return true
	}
	for _, msg := range outcome.result.Remaining {
		if msg.RuleID == contracts.InternalErrorRuleID {
			pc.logger.Warn("fix failed", "message", msg.Message)
		}
	}
	if outcome.result.Output == pc.text {
		return true
	}

	pc.text = outcome.result.Output
	if !pc.write(contracts.TextMessage{Type: contracts.MessageTypeText, Text: pc.text}) {
		return false
	}
	pc.session.LintNow(pc.text)
	return true
}

func (pc *pageConn) loadMetadata(ctx context.Context) {
	meta, err := pc.checker.Metadata(ctx)
	if err != nil {
		pc.logger.Debug("metadata unavailable", "error", err)
		return
	}
	html, err := pc.server.renderer.RenderMetadata(meta)
	if err != nil {
		pc.logger.Error("render metadata", "error", err)
		return
	}
	pc.post(metadataReady{html: html})
}

// write writes a JSON message and reports whether the connection is usable.
func (pc *pageConn) write(v any) bool {
	if err := pc.ws.WriteJSON(v); err != nil {
		pc.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}
