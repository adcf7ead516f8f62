// Package lifecycle is the HTTP client for the campaign service. The editor
// core talks to the service exclusively through this boundary.
package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/moogar0880/problems"

	"github.com/zapflow/zapflow/pkg/models"
)

const defaultTimeout = 30 * time.Second

// quotaProblemType marks a problem document as a quota failure; the
// extensions carry the upgrade flag.
const quotaProblemType = "quota_exceeded"

// Client calls the campaign service over HTTP. Every call enforces a bounded
// wait and normalizes failures into ErrTimeout, *QuotaError, or *APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout overrides the per-request bounded wait.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a campaign service client.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("module", "lifecycle_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// UpdateCampaignRequest carries the mutable campaign fields. Nil fields are
// omitted from the request body. Status is not part of this shape; the
// service routes every status change through its lifecycle endpoints.
type UpdateCampaignRequest struct {
	Name          *string           `json:"name,omitempty"`
	Graph         *models.FlowGraph `json:"graph,omitempty"`
	ScheduledDate *time.Time        `json:"scheduled_date,omitempty"`
}

// GetCampaign loads a campaign with its graph.
func (c *Client) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+id, nil, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// ListCampaigns loads all campaigns.
func (c *Client) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	var response struct {
		Campaigns []*models.Campaign `json:"campaigns"`
	}

	if err := c.do(ctx, http.MethodGet, "/campaigns", nil, &response); err != nil {
		return nil, err
	}

	return response.Campaigns, nil
}

// CreateCampaign creates a new draft.
func (c *Client) CreateCampaign(ctx context.Context, name string) (*models.Campaign, error) {
	var campaign models.Campaign

	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/campaigns", body, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// UpdateCampaign saves name and graph changes.
func (c *Client) UpdateCampaign(ctx context.Context, id string, req UpdateCampaignRequest) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := c.do(ctx, http.MethodPatch, "/campaigns/"+id, req, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// PublishCampaign asks the service to run the publish gate and transition the
// campaign. The service re-validates; any local pre-check is advisory. A
// non-nil scheduledAt overrides the trigger node's schedule settings.
func (c *Client) PublishCampaign(ctx context.Context, id string, scheduledAt *time.Time) (*models.Campaign, error) {
	var body any
	if scheduledAt != nil {
		body = map[string]*time.Time{"scheduled_date": scheduledAt}
	}

	var campaign models.Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/"+id+"/publish", body, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// PauseCampaign suspends execution.
func (c *Client) PauseCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/"+id+"/pause", nil, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// CompleteCampaign moves the campaign to its terminal status.
func (c *Client) CompleteCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/"+id+"/complete", nil, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// DuplicateCampaign copies a campaign into a fresh draft.
func (c *Client) DuplicateCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/"+id+"/duplicate", nil, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

// DeleteCampaign removes a campaign and its sessions.
func (c *Client) DeleteCampaign(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/campaigns/"+id, nil, nil)
}

// GetCampaignReport fetches the report shape the funnel engine consumes.
func (c *Client) GetCampaignReport(ctx context.Context, id string) (*models.CampaignReport, error) {
	var report models.CampaignReport
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+id+"/report", nil, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// GetConnections fetches the WhatsApp connections for the trigger picker.
func (c *Client) GetConnections(ctx context.Context) ([]*models.Connection, error) {
	var response struct {
		Connections []*models.Connection `json:"connections"`
	}

	if err := c.do(ctx, http.MethodGet, "/connections", nil, &response); err != nil {
		return nil, err
	}

	return response.Connections, nil
}

// GetAllCategories fetches the contact categories for the trigger picker.
func (c *Client) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	var response struct {
		Categories []*models.Category `json:"categories"`
	}

	if err := c.do(ctx, http.MethodGet, "/categories", nil, &response); err != nil {
		return nil, err
	}

	return response.Categories, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}

		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// decodeError normalizes a non-2xx response. Quota problems become
// *QuotaError; anything else becomes *APIError with the decoded detail when
// the body was a problem document.
func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var problem struct {
		problems.Problem

		UpgradeRequired bool `json:"upgrade_required"`
	}

	if err := json.Unmarshal(raw, &problem); err != nil {
		c.logger.Debug("Undecodable error response", "status", resp.StatusCode)

		return apiErr
	}

	if problem.Type == quotaProblemType {
		return &QuotaError{
			Message:         problem.Detail,
			UpgradeRequired: problem.UpgradeRequired,
		}
	}

	apiErr.Type = problem.Type
	apiErr.Detail = problem.Detail

	return apiErr
}

// isTimeout distinguishes "temporarily slow, retry" from other transport
// failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error

	return errors.As(err, &urlErr) && urlErr.Timeout()
}
