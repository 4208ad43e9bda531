package channel

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"textchecker/internal/contracts"
)

const (
	subprotocolPrefix = "textchecker."
	closeGracePeriod  = time.Second
)

// WebSocket is a channel end over a websocket connection. The codec is
// negotiated through the websocket subprotocol.
type WebSocket[S, R any] struct {
	conn  *websocket.Conn
	codec Codec

	writeMu sync.Mutex
	in      *reader[R]

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
}

// NewWebSocket wraps an established connection.
func NewWebSocket[S, R any](conn *websocket.Conn, codec Codec) *WebSocket[S, R] {
	done := make(chan struct{})
	ws := &WebSocket[S, R]{conn: conn, codec: codec, done: done}
	ws.in = startReader(ws.decode, done)
	return ws
}

// Dial connects to a worker served over websocket and returns the host end.
func Dial(ctx context.Context, url string, codec Codec) (HostConn, error) {
	dialer := *websocket.DefaultDialer
	dialer.Subprotocols = []string{subprotocolPrefix + codec.Name()}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocket[contracts.Command, contracts.Response](conn, codecFor(conn.Subprotocol(), codec)), nil
}

// Upgrader accepts worker connections from hosts.
type Upgrader struct {
	upgrader websocket.Upgrader
}

// NewUpgrader returns an upgrader that accepts every known codec.
func NewUpgrader() *Upgrader {
	return &Upgrader{
		upgrader: websocket.Upgrader{
			Subprotocols: []string{subprotocolPrefix + CodecJSON, subprotocolPrefix + CodecMsgpack},
			CheckOrigin:  func(r *http.Request) bool { return true },
		},
	}
}

// Accept upgrades an HTTP request and returns the worker end.
func (u *Upgrader) Accept(w http.ResponseWriter, r *http.Request) (WorkerConn, error) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocket[contracts.Response, contracts.Command](conn, codecFor(conn.Subprotocol(), JSON())), nil
}

func codecFor(subprotocol string, fallback Codec) Codec {
	codec, err := CodecByName(strings.TrimPrefix(subprotocol, subprotocolPrefix))
	if subprotocol == "" || err != nil {
		return fallback
	}
	return codec
}

func (ws *WebSocket[S, R]) decode(v *R) error {
	for {
		_, data, err := ws.conn.ReadMessage()
		if err != nil {
			return err
		}
		// A malformed frame is dropped; the connection itself is still usable.
		if err := ws.codec.Unmarshal(data, v); err == nil {
			return nil
		}
	}
}

func (ws *WebSocket[S, R]) Send(ctx context.Context, msg S) error {
	select {
	case <-ws.done:
		return ErrClosed
	default:
	}
	data, err := ws.codec.Marshal(msg)
	if err != nil {
		return err
	}
	messageType := websocket.TextMessage
	if ws.codec.Binary() {
		messageType = websocket.BinaryMessage
	}

	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := ws.conn.SetWriteDeadline(deadline); err != nil {
		return closedError(err)
	}
	if err := ws.conn.WriteMessage(messageType, data); err != nil {
		return closedError(err)
	}
	return nil
}

func (ws *WebSocket[S, R]) Receive(ctx context.Context) (R, error) {
	return ws.in.receive(ctx)
}

func (ws *WebSocket[S, R]) Close() error {
	ws.closeOnce.Do(func() {
		close(ws.done)
		ws.writeMu.Lock()
		_ = ws.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod),
		)
		ws.writeMu.Unlock()
		ws.closeErr = ws.conn.Close()
	})
	return ws.closeErr
}
