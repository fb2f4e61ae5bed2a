package dagapi

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/jeremylgl2/dagster/internal/observability"
	"github.com/jeremylgl2/dagster/internal/runtable"
)

// Poller periodically fetches the run list and forwards the result to the
// UI message channel.
//
// It owns the only goroutine in the program besides the Bubble Tea loop;
// everything it learns crosses into the UI as a message. Fetch failures
// are forwarded too — the table shows them without dropping the last good
// list.
type Poller struct {
	// Fetch retrieves the current run list. Required.
	Fetch func(ctx context.Context) ([]runtable.Run, error)

	// Limiter paces the fetches.
	Limiter *rate.Limiter

	// Out receives RunsMsg / RunsFetchErrMsg values.
	Out chan<- tea.Msg

	Logger *observability.CoreLogger
}

// NewPoller builds a Poller that fetches up to limit runs from the client
// at most once per interval.
func NewPoller(
	client *Client,
	cfg Config,
	out chan<- tea.Msg,
	logger *observability.CoreLogger,
) *Poller {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	return &Poller{
		Fetch: func(ctx context.Context) ([]runtable.Run, error) {
			return client.Runs(ctx, cfg.RunLimit)
		},
		Limiter: rate.NewLimiter(rate.Every(cfg.PollInterval.Duration()), 1),
		Out:     out,
		Logger:  logger,
	}
}

// Start launches the poll loop. It returns immediately; the loop stops
// when ctx is canceled.
func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	for {
		if err := p.Limiter.Wait(ctx); err != nil {
			// Context canceled: shut down quietly.
			return
		}

		runs, err := p.Fetch(ctx)

		var msg tea.Msg
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.Logger.CaptureError(err)
			msg = runtable.RunsFetchErrMsg{Err: err}
		} else {
			msg = runtable.RunsMsg{Runs: runs}
		}

		select {
		case p.Out <- msg:
		case <-ctx.Done():
			return
		}
	}
}
