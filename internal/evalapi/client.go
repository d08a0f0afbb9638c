package evalapi

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/voxelplan-labs/voxelplan/internal/config"
)

// Client is a REST client for the evaluation service, intended for optimizer
// processes that keep proposing weight vectors against one loaded plan.
type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string, cfg *config.ClientEnvConfig) *Client {
	cli := resty.New().
		SetBaseURL(baseURL).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.ClientTimeout)

	cli.SetRetryCount(cfg.RetryMax)
	cli.SetRetryWaitTime(cfg.RetryWait)
	cli.SetRetryMaxWaitTime(cfg.RetryWait * 2)
	return &Client{httpClient: cli}
}

// Evaluate posts one weight vector and returns (f, g).
func (c *Client) Evaluate(ctx context.Context, weights []float64, wantGradient bool) (EvaluateResponse, error) {
	var out EvaluateResponse
	var apiErr ErrorResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(EvaluateRequest{Weights: weights, WantGradient: wantGradient}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/evaluate")
	if err != nil {
		return out, fmt.Errorf("evaluate: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return out, fmt.Errorf("evaluate status %d: %s", resp.StatusCode(), apiErr.Error)
	}
	return out, nil
}

// Health reports the loaded plan dimensions.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	resp, err := c.httpClient.R().SetContext(ctx).SetResult(&out).Get("/health")
	if err != nil {
		return out, fmt.Errorf("health: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return out, fmt.Errorf("health status %d: %s", resp.StatusCode(), resp.String())
	}
	return out, nil
}
