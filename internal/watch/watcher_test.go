package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textchecker/internal/app"
	"textchecker/internal/channel"
	"textchecker/internal/client"
	"textchecker/internal/config"
	"textchecker/internal/lint"
	"textchecker/internal/worker"
)

func newChecker(t *testing.T) *app.Checker {
	t.Helper()
	e, err := lint.New(lint.Options{Rules: []config.RuleConfig{{ID: "no-todo", Enabled: true}}})
	require.NoError(t, err)

	host, conn := channel.Pipe(4)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = worker.NewHandler(e, nil).Serve(ctx, conn) }()
	c := client.New(host)
	t.Cleanup(func() {
		_ = c.Close()
		cancel()
	})
	return app.NewChecker(c, ".md")
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no lint event")
		return Event{}
	}
}

func TestWatcherLintsOnStartAndOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("TODO: outline\n"), 0o644))

	events := make(chan Event, 8)
	w, err := New(newChecker(t), 20*time.Millisecond, func(ev Event) { events <- ev }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(path))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	first := waitEvent(t, events)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, first.Path)
	assert.Len(t, first.Result.Messages(), 1)

	require.NoError(t, os.WriteFile(path, []byte("done\n"), 0o644))
	var second Event
	for {
		second = waitEvent(t, events)
		if second.Result.Text == "done\n" {
			break
		}
	}
	assert.Empty(t, second.Result.Messages())

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(watched, []byte("ok\n"), 0o644))

	events := make(chan Event, 8)
	w, err := New(newChecker(t), 10*time.Millisecond, func(ev Event) { events <- ev }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(watched))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	waitEvent(t, events)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("TODO: no\n"), 0o644))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestAddRejectsMissingAndDirectories(t *testing.T) {
	w, err := New(newChecker(t), 0, func(Event) {}, nil)
	require.NoError(t, err)
	defer w.close()

	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing.md")))
	assert.Error(t, w.Add(t.TempDir()))
}
