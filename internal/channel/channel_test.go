package channel

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textchecker/internal/contracts"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPipeRoundTrip(t *testing.T) {
	ctx := testContext(t)
	host, worker := Pipe(1)

	require.NoError(t, host.Send(ctx, contracts.Command{Kind: contracts.CommandLint, ID: 1, Text: "hi"}))
	cmd, err := worker.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cmd.ID)
	assert.Equal(t, "hi", cmd.Text)

	require.NoError(t, worker.Send(ctx, contracts.Response{Kind: contracts.ResponseLintResult, ID: 1}))
	resp, err := host.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, contracts.ResponseLintResult, resp.Kind)
}

func TestPipeCloseDeliversBufferedMessages(t *testing.T) {
	ctx := testContext(t)
	host, worker := Pipe(4)

	require.NoError(t, worker.Send(ctx, contracts.Response{Kind: contracts.ResponseInit}))
	require.NoError(t, worker.Close())

	resp, err := host.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, contracts.ResponseInit, resp.Kind)

	_, err = host.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, host.Send(ctx, contracts.Command{}), ErrClosed)
	assert.NoError(t, host.Close(), "closing twice is harmless")
}

func TestPipeReceiveHonorsContext(t *testing.T) {
	host, _ := Pipe(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := host.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"", CodecJSON, CodecMsgpack} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		assert.NotNil(t, codec)
	}
	_, err := CodecByName("xml")
	assert.Error(t, err)
}

func TestStreamCodecs(t *testing.T) {
	for _, codec := range []Codec{JSON(), Msgpack()} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := testContext(t)
			hostR, workerW := io.Pipe()
			workerR, hostW := io.Pipe()

			host := NewHostStream(hostR, hostW, codec, hostW, hostR)
			worker := NewWorkerStream(workerR, workerW, codec, workerW, workerR)
			defer worker.Close()

			go func() {
				_ = host.Send(ctx, contracts.NewFixCommand("teh", ".md", "prh"))
			}()
			cmd, err := worker.Receive(ctx)
			require.NoError(t, err)
			assert.Equal(t, contracts.CommandFix, cmd.Kind)
			assert.Equal(t, "prh", cmd.RuleID)

			fixResult := &contracts.FixResult{Output: "the", Applied: []contracts.Message{{
				RuleID: "prh",
				Range:  contracts.Range{0, 3},
				Fix:    &contracts.Fix{Range: contracts.Range{0, 3}, Text: "the"},
			}}}
			go func() {
				_ = worker.Send(ctx, contracts.Response{Kind: contracts.ResponseFixResult, ID: 7, FixResult: fixResult})
			}()
			resp, err := host.Receive(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), resp.ID)
			require.NotNil(t, resp.FixResult)
			assert.Equal(t, "the", resp.FixResult.Output)
			assert.Equal(t, contracts.Range{0, 3}, resp.FixResult.Applied[0].Fix.Range)

			require.NoError(t, host.Close())
			_, err = worker.Receive(ctx)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSON(), Msgpack()} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := testContext(t)
			upgrader := NewUpgrader()
			echoed := make(chan contracts.Command, 1)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				worker, err := upgrader.Accept(w, r)
				if err != nil {
					return
				}
				defer worker.Close()
				cmd, err := worker.Receive(r.Context())
				if err != nil {
					return
				}
				echoed <- cmd
				_ = worker.Send(r.Context(), contracts.Response{Kind: contracts.ResponseLintResult, ID: cmd.ID})
				_, _ = worker.Receive(r.Context())
			}))
			defer srv.Close()

			host, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), codec)
			require.NoError(t, err)
			defer host.Close()

			require.NoError(t, host.Send(ctx, contracts.Command{Kind: contracts.CommandLint, ID: 3, Text: "x"}))
			resp, err := host.Receive(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(3), resp.ID)
			assert.Equal(t, contracts.ResponseLintResult, resp.Kind)
			assert.Equal(t, "x", (<-echoed).Text)
		})
	}
}
