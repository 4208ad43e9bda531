// Package httpserver serves the checker page and handles all message traffic
// between the browser and the lint worker.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"textchecker/internal/client"
	"textchecker/internal/debounce"
	"textchecker/internal/logging"
	"textchecker/internal/render"
)

const shutdownTimeout = 2 * time.Second

// Options configures a PageServer.
type Options struct {
	Addr   string
	Ext    string
	Quiet  time.Duration
	Logger *slog.Logger
	// Debounce is passed to every page session, mainly to inject a clock.
	Debounce []debounce.Option
}

// PageServer serves the page shell at / and one lint session per WebSocket
// connection at /ws. All page connections share one worker client.
type PageServer struct {
	addr     string
	ext      string
	quiet    time.Duration
	client   *client.Client
	renderer *render.Renderer
	base     *slog.Logger
	logger   *slog.Logger
	debounce []debounce.Option

	upgrader websocket.Upgrader
}

// NewPageServer creates a page server backed by c.
func NewPageServer(c *client.Client, renderer *render.Renderer, opts Options) *PageServer {
	base := opts.Logger
	if base == nil {
		base = logging.Discard()
	}
	return &PageServer{
		addr:     opts.Addr,
		ext:      opts.Ext,
		quiet:    opts.Quiet,
		client:   c,
		renderer: renderer,
		base:     base,
		logger:   logging.Component(base, "page"),
		debounce: opts.Debounce,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// URL returns the browser URL for the page server.
func (s *PageServer) URL() string {
	return "http://" + s.addr
}

// Handler returns the HTTP handler serving the page and the WebSocket endpoint.
func (s *PageServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *PageServer) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()
	s.logger.Info("page server listening", "url", s.URL())

	select {
	case err := <-errc:
		return fmt.Errorf("page server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("page server shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("page server: %w", err)
	}
	return nil
}

// handleIndex serves the HTML shell, prefilled from the text query parameter.
func (s *PageServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.renderer.RenderShell(r.URL.Query().Get("text"))))
}

// handleWS upgrades the connection and runs its session until either side
// goes away.
func (s *PageServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	pc := newPageConn(s, conn)
	pc.logger.Debug("page connected", "remote", r.RemoteAddr)
	go pc.readLoop()
	pc.run(r.Context())
	pc.logger.Debug("page disconnected")
}
