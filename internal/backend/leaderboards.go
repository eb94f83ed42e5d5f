package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/atssight/recruiter-desk/internal/models"
)

// DefaultExportTopN is the row limit the backend applies to CSV exports
const DefaultExportTopN = 10

// ListLeaderboards returns every leaderboard owned by the recruiter
func (c *Client) ListLeaderboards(ctx context.Context) ([]models.Leaderboard, error) {
	var lbs []models.Leaderboard
	if err := c.getJSON(ctx, apiPrefix+"/leaderboards", &lbs); err != nil {
		return nil, err
	}
	if lbs == nil {
		lbs = []models.Leaderboard{}
	}
	return lbs, nil
}

// GetLeaderboard fetches a single leaderboard with its entries
func (c *Client) GetLeaderboard(ctx context.Context, id int64) (*models.Leaderboard, error) {
	var lb models.Leaderboard
	if err := c.getJSON(ctx, fmt.Sprintf("%s/leaderboard/%d", apiPrefix, id), &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}

type exportCSVQuery struct {
	TopN int `url:"topN"`
}

// ExportLeaderboardCSV downloads the backend's CSV export of the top N entries.
// topN <= 0 uses DefaultExportTopN.
func (c *Client) ExportLeaderboardCSV(ctx context.Context, id int64, topN int) (*models.Download, error) {
	if topN <= 0 {
		topN = DefaultExportTopN
	}
	v, err := query.Values(exportCSVQuery{TopN: topN})
	if err != nil {
		return nil, fmt.Errorf("failed to encode export query: %w", err)
	}

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/leaderboard/%d/export-csv?%s", apiPrefix, id, v.Encode()), nil, "")
	if err != nil {
		return nil, err
	}
	return toDownload(resp, fmt.Sprintf("leaderboard_%d.csv", id)), nil
}

// DeleteLeaderboard removes a leaderboard and all of its entries
func (c *Client) DeleteLeaderboard(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/leaderboard/%d", apiPrefix, id), nil, "")
	return err
}

// Health checks that the recruiter API is up. It returns the backend's status line.
func (c *Client) Health(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, apiPrefix+"/health", nil, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.Body)), nil
}
