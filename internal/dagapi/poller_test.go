package dagapi_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jeremylgl2/dagster/internal/dagapi"
	"github.com/jeremylgl2/dagster/internal/observability"
	"github.com/jeremylgl2/dagster/internal/runtable"
)

func fastLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Millisecond), 1)
}

func receiveMsg(t *testing.T, out <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a poller message")
		return nil
	}
}

func TestPoller_DeliversRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan tea.Msg)
	p := &dagapi.Poller{
		Fetch: func(context.Context) ([]runtable.Run, error) {
			return []runtable.Run{{ID: "aaaa1111-0000"}}, nil
		},
		Limiter: fastLimiter(),
		Out:     out,
		Logger:  observability.NewNoOpLogger(),
	}
	p.Start(ctx)

	msg := receiveMsg(t, out)
	runs, ok := msg.(runtable.RunsMsg)
	require.True(t, ok, "expected a RunsMsg, got %T", msg)
	require.Len(t, runs.Runs, 1)
	require.Equal(t, "aaaa1111-0000", runs.Runs[0].ID)
}

func TestPoller_ForwardsFetchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan tea.Msg)
	p := &dagapi.Poller{
		Fetch: func(context.Context) ([]runtable.Run, error) {
			return nil, errors.New("connection refused")
		},
		Limiter: fastLimiter(),
		Out:     out,
		Logger:  observability.NewNoOpLogger(),
	}
	p.Start(ctx)

	msg := receiveMsg(t, out)
	errMsg, ok := msg.(runtable.RunsFetchErrMsg)
	require.True(t, ok, "expected a RunsFetchErrMsg, got %T", msg)
	require.ErrorContains(t, errMsg.Err, "connection refused")
}

func TestPoller_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetched := make(chan struct{}, 1)
	out := make(chan tea.Msg) // unbuffered: the loop blocks on send
	p := &dagapi.Poller{
		Fetch: func(context.Context) ([]runtable.Run, error) {
			select {
			case fetched <- struct{}{}:
			default:
			}
			return nil, nil
		},
		Limiter: fastLimiter(),
		Out:     out,
		Logger:  observability.NewNoOpLogger(),
	}
	p.Start(ctx)

	<-fetched
	cancel()

	// The loop is blocked sending its result; cancellation must unblock
	// it and stop further fetches. Drain whatever was in flight, then
	// verify silence.
	for {
		select {
		case <-out:
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}

	select {
	case msg := <-out:
		t.Fatalf("poller kept sending after cancel: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPoller_RespectsInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan tea.Msg, 16)
	p := &dagapi.Poller{
		Fetch: func(context.Context) ([]runtable.Run, error) {
			return nil, nil
		},
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		Out:     out,
		Logger:  observability.NewNoOpLogger(),
	}
	p.Start(ctx)

	// The limiter's burst allows exactly one immediate fetch; the next
	// one is an hour out.
	receiveMsg(t, out)
	select {
	case <-out:
		t.Fatal("second fetch should have been rate limited")
	case <-time.After(100 * time.Millisecond):
	}
}
