// Package dagapi is the client for the orchestrator's GraphQL API.
//
// The run table never talks to the backend directly; it consumes the run
// lists this package fetches and forwards as messages.
package dagapi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/jeremylgl2/dagster/internal/observability"
	"github.com/jeremylgl2/dagster/internal/runtable"
)

const runsQuery = `
query RunTableRunsQuery($limit: Int!) {
  runsOrError(limit: $limit) {
    __typename
    ... on Runs {
      results {
        runId
        status
        jobName
        mode
        isJob
        creationTime
        startTime
        endTime
        tags {
          key
          value
        }
        repositoryOrigin {
          repositoryName
          repositoryLocationName
        }
        assetSelection {
          path
        }
        hasTerminatePermission
        hasDeletePermission
      }
    }
    ... on InvalidPipelineRunsFilterError {
      message
    }
    ... on PythonError {
      message
    }
  }
}`

const terminateRunMutation = `
mutation TerminateRunMutation($runId: String!) {
  terminateRun(runId: $runId) {
    __typename
    ... on PythonError {
      message
    }
  }
}`

const deleteRunMutation = `
mutation DeleteRunMutation($runId: String!) {
  deletePipelineRun(runId: $runId) {
    __typename
    ... on PythonError {
      message
    }
  }
}`

// Client fetches runs and issues run mutations against a GraphQL endpoint.
type Client struct {
	gql    graphql.Client
	logger *observability.CoreLogger
}

// NewClient builds a Client for the given endpoint with a retrying HTTP
// transport.
func NewClient(endpoint string, logger *observability.CoreLogger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil // the TUI owns the terminal; nothing may print to it

	return NewClientWithHTTP(endpoint, rc.StandardClient(), logger)
}

// NewClientWithHTTP builds a Client over a caller-supplied HTTP client.
func NewClientWithHTTP(endpoint string, httpClient *http.Client, logger *observability.CoreLogger) *Client {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	return &Client{
		gql:    graphql.NewClient(endpoint, httpClient),
		logger: logger,
	}
}

// Wire representation of the runsOrError payload. Optional fields stay
// pointers so absence decodes as "no value", never as an error.
type runsOrErrorData struct {
	RunsOrError struct {
		Typename string      `json:"__typename"`
		Results  []runResult `json:"results"`
		Message  string      `json:"message"`
	} `json:"runsOrError"`
}

type runResult struct {
	RunID        string   `json:"runId"`
	Status       string   `json:"status"`
	JobName      string   `json:"jobName"`
	Mode         string   `json:"mode"`
	IsJob        bool     `json:"isJob"`
	CreationTime float64  `json:"creationTime"`
	StartTime    *float64 `json:"startTime"`
	EndTime      *float64 `json:"endTime"`

	Tags []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"tags"`

	RepositoryOrigin *struct {
		RepositoryName         string `json:"repositoryName"`
		RepositoryLocationName string `json:"repositoryLocationName"`
	} `json:"repositoryOrigin"`

	AssetSelection []struct {
		Path []string `json:"path"`
	} `json:"assetSelection"`

	HasTerminatePermission bool `json:"hasTerminatePermission"`
	HasDeletePermission    bool `json:"hasDeletePermission"`
}

// Runs fetches up to limit runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]runtable.Run, error) {
	var data runsOrErrorData
	err := c.gql.MakeRequest(ctx,
		&graphql.Request{
			OpName:    "RunTableRunsQuery",
			Query:     runsQuery,
			Variables: map[string]any{"limit": limit},
		},
		&graphql.Response{Data: &data},
	)
	if err != nil {
		return nil, fmt.Errorf("dagapi: query runs: %w", err)
	}

	payload := data.RunsOrError
	if payload.Typename != "" && payload.Typename != "Runs" {
		return nil, fmt.Errorf("dagapi: runsOrError returned %s: %s",
			payload.Typename, payload.Message)
	}

	runs := make([]runtable.Run, 0, len(payload.Results))
	for _, r := range payload.Results {
		runs = append(runs, r.toRun())
	}
	return runs, nil
}

// TerminateRun asks the backend to terminate a run.
func (c *Client) TerminateRun(ctx context.Context, runID string) error {
	return c.mutateRun(ctx, "TerminateRunMutation", terminateRunMutation, runID)
}

// DeleteRun asks the backend to delete a run record.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.mutateRun(ctx, "DeleteRunMutation", deleteRunMutation, runID)
}

func (c *Client) mutateRun(ctx context.Context, opName, query, runID string) error {
	var data map[string]any
	err := c.gql.MakeRequest(ctx,
		&graphql.Request{
			OpName:    opName,
			Query:     query,
			Variables: map[string]any{"runId": runID},
		},
		&graphql.Response{Data: &data},
	)
	if err != nil {
		return fmt.Errorf("dagapi: %s %s: %w", opName, runID, err)
	}
	return nil
}

func (r runResult) toRun() runtable.Run {
	run := runtable.Run{
		ID:           r.RunID,
		Status:       runtable.RunStatus(r.Status),
		JobName:      r.JobName,
		Mode:         r.Mode,
		IsJob:        r.IsJob,
		CreationTime: secondsToTime(r.CreationTime),
		CanTerminate: r.HasTerminatePermission,
		CanDelete:    r.HasDeletePermission,
	}
	if r.StartTime != nil {
		run.StartTime = secondsToTime(*r.StartTime)
	}
	if r.EndTime != nil {
		run.EndTime = secondsToTime(*r.EndTime)
	}
	for _, t := range r.Tags {
		run.Tags = append(run.Tags, runtable.Tag{Key: t.Key, Value: t.Value})
	}
	if r.RepositoryOrigin != nil {
		run.RepositoryName = r.RepositoryOrigin.RepositoryName
		run.LocationName = r.RepositoryOrigin.RepositoryLocationName
	}
	for _, a := range r.AssetSelection {
		if len(a.Path) > 0 {
			run.AssetSelection = append(run.AssetSelection, joinAssetPath(a.Path))
		}
	}
	return run
}

func joinAssetPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "/" + p
	}
	return out
}

// secondsToTime converts a unix-seconds float (the API's timestamp
// encoding) to a time.Time, preserving sub-second precision.
func secondsToTime(sec float64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}
