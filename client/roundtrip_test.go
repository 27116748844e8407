package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calcbridge/calcctl/bridge/engine"
	"github.com/calcbridge/calcctl/client"
	"github.com/calcbridge/calcctl/env"
	"github.com/calcbridge/calcctl/server"
)

func startServer(t *testing.T) *client.Client {
	t.Helper()
	environment := env.New(engine.New())
	srv := server.New(environment)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		environment.Close(context.Background())
	})
	return client.New(ts.URL, "")
}

func TestClientServerRoundTrip(t *testing.T) {
	c := startServer(t)

	reset, err := c.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !reset.Observation.Success {
		t.Fatalf("reset failed: %s", reset.Observation.ErrorMessage)
	}

	if _, err := c.SetCell("A1", 21, ""); err != nil {
		t.Fatalf("set_cell: %v", err)
	}
	if _, err := c.SetFormula("B1", "=A1*2", ""); err != nil {
		t.Fatalf("set_formula: %v", err)
	}

	result, err := c.GetCell("B1", "")
	if err != nil {
		t.Fatalf("get_cell: %v", err)
	}
	if result.Observation.Data != "42" {
		t.Fatalf("expected computed \"42\", got %v", result.Observation.Data)
	}

	state, err := c.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.StepCount != 3 {
		t.Fatalf("expected 3 steps, got %d", state.StepCount)
	}
	if state.EpisodeID != reset.State.EpisodeID {
		t.Fatalf("episode changed mid-run: %s vs %s", state.EpisodeID, reset.State.EpisodeID)
	}
}

func TestClientWatch(t *testing.T) {
	c := startServer(t)
	if _, err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan client.Event, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Watch(ctx, func(event client.Event) error {
			events <- event
			return errStop
		})
	}()

	// let the watcher connect before producing an event
	time.Sleep(100 * time.Millisecond)
	if _, err := c.SetCell("A1", "ping", ""); err != nil {
		t.Fatalf("set_cell: %v", err)
	}

	select {
	case event := <-events:
		if event.Type != "step" || event.Metadata.Command != env.CmdSetCell {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}

	if err := <-errCh; err != errStop {
		t.Fatalf("expected errStop from Watch, got %v", err)
	}
}

type stopError struct{}

func (stopError) Error() string { return "stop" }

var errStop error = stopError{}
