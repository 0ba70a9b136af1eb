// Package archive stores captured step responses behind a small REST API
package archive

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/calvinmclean/babyapi"

	"github.com/calvinmclean/motorloop"
)

// Path is the base path of the API
const Path = "/responses"

// StepResponse is one captured window of one motor
type StepResponse struct {
	babyapi.DefaultResource

	Label      string            `json:"label"`
	CapturedAt time.Time         `json:"captured_at"`
	Points     []motorloop.Point `json:"points"`
}

// Bind validates a StepResponse received by the API
func (s *StepResponse) Bind(r *http.Request) error {
	err := s.DefaultResource.Bind(r)
	if err != nil {
		return err
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut:
		if s.Label == "" {
			return errors.New("missing required label field")
		}
		if len(s.Points) == 0 {
			return errors.New("step response has no points")
		}
	}
	return nil
}

// Series converts back to the captured series
func (s *StepResponse) Series() motorloop.Series {
	return motorloop.Series{Label: s.Label, Points: s.Points}
}

// NewAPI creates the archive API with in-memory storage
func NewAPI() *babyapi.API[*StepResponse] {
	return babyapi.NewAPI("Step Responses", Path, func() *StepResponse {
		return &StepResponse{}
	})
}

// Serve runs the archive API on addr until ctx is done
func Serve(ctx context.Context, addr string) error {
	return NewAPI().
		SetAddress(addr).
		WithContext(ctx).
		Serve()
}

type Client struct {
	client *babyapi.Client[*StepResponse]
}

// NewClient creates a client for the archive at addr
func NewClient(addr string) *Client {
	return &Client{client: babyapi.NewClient[*StepResponse](addr, Path)}
}

// Upload stores a captured series and returns its ID
func (c *Client) Upload(ctx context.Context, s motorloop.Series, capturedAt time.Time) (string, error) {
	resp, err := c.client.Post(ctx, &StepResponse{
		Label:      s.Label,
		CapturedAt: capturedAt,
		Points:     s.Points,
	})
	if err != nil {
		return "", err
	}
	return resp.Data.GetID(), nil
}

// UploadAll stores every series and returns the IDs in order
func (c *Client) UploadAll(ctx context.Context, series []motorloop.Series, capturedAt time.Time) ([]string, error) {
	ids := make([]string, 0, len(series))
	for _, s := range series {
		id, err := c.Upload(ctx, s, capturedAt)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Get fetches a stored step response
func (c *Client) Get(ctx context.Context, id string) (*StepResponse, error) {
	resp, err := c.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
