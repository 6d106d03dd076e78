package api

import (
	"context"
	"net/http"

	"github.com/coachboard/coachboard-client/internal/models"
	"github.com/coachboard/coachboard-client/internal/querycache"
)

const defaultHistoryLimit = 20

// Generate asks the backend for AI content. req is validated and defaulted in place.
func (c *Client) Generate(ctx context.Context, req *models.AIGenerateRequest) (*models.AIGenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.AIGenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/ai/generate", nil, req, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, resAIHistory, resAnalytics)
	return &out, nil
}

// History lists past generations, newest first.
func (c *Client) History(ctx context.Context, page Page) ([]models.AIRequest, error) {
	query := page.values(defaultHistoryLimit)
	key := querycache.Key(resAIHistory, query.Get("skip"), query.Get("limit"))
	return querycache.Load(ctx, c.cache, key, func(ctx context.Context) ([]models.AIRequest, error) {
		out := []models.AIRequest{}
		err := c.doJSON(ctx, http.MethodGet, "/ai/history", query, nil, &out)
		return out, err
	})
}
