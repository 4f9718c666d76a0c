// Package soho wraps the external homework API.
package soho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/pkg/config"
)

// Client fetches homework submissions sent to review.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a homework API client.
func NewClient(cfg config.SohoConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type forReviewRequest struct {
	HomeworkID int64 `json:"homeworkId"`
}

type forReviewResponse struct {
	Homeworks []sohoHomework `json:"homeworks"`
}

type sohoHomework struct {
	ClientHomeworkID int64  `json:"clientHomeworkId"`
	ClientID         int64  `json:"clientId"`
	SentToReviewAt   string `json:"sentToReviewAt"`
	ChatURL          string `json:"chatUrl"`
	VKID             *int64 `json:"vkId,omitempty"`
}

// HomeworksForReview returns all submissions of one homework group that
// are waiting for review.
func (c *Client) HomeworksForReview(ctx context.Context, homeworkID int64) ([]models.SohoHomework, error) {
	body, err := json.Marshal(forReviewRequest{HomeworkID: homeworkID})
	if err != nil {
		return nil, fmt.Errorf("marshal homework request: %w", err)
	}

	url := c.baseURL + "/api/v1/learning/homework/for_review_list"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build homework request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch homeworks %d: %w", homeworkID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch homeworks %d: unexpected status %d", homeworkID, resp.StatusCode)
	}

	var payload forReviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode homeworks %d: %w", homeworkID, err)
	}

	homeworks := make([]models.SohoHomework, 0, len(payload.Homeworks))
	for _, hw := range payload.Homeworks {
		sentAt, err := time.Parse(time.RFC3339, hw.SentToReviewAt)
		if err != nil {
			return nil, fmt.Errorf("parse sentToReviewAt of homework %d: %w", hw.ClientHomeworkID, err)
		}
		homeworks = append(homeworks, models.SohoHomework{
			StudentHomeworkID: hw.ClientHomeworkID,
			StudentSohoID:     hw.ClientID,
			SentToReviewAt:    sentAt,
			ChatURL:           hw.ChatURL,
			StudentVKID:       hw.VKID,
		})
	}
	return homeworks, nil
}
