// Package autopilot fires the enrollment/homework webhooks. Calls are
// best-effort: one try with a short deadline, failures are logged upstream.
package autopilot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

const requestTimeout = 2 * time.Second

// Client issues webhook GET requests.
type Client struct {
	http *http.Client
}

// NewClient constructs an autopilot webhook client.
func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: requestTimeout}}
}

// NotifyTeacherAttached tells the autopilot a student got a teacher.
func (c *Client) NotifyTeacherAttached(ctx context.Context, webhookURL, targetPath string, studentVKID, teacherVKID int64, teacherType models.TeacherType) error {
	query := url.Values{}
	query.Set("avtp", "1")
	query.Set("sid", strconv.FormatInt(studentVKID, 10))
	query.Set("curator", strconv.FormatInt(teacherVKID, 10))
	query.Set("option", strconv.Itoa(teacherType.AutopilotOption()))
	return c.get(ctx, webhookURL, targetPath, query)
}

// NotifyHomeworkChecked tells the autopilot a homework file was checked.
func (c *Client) NotifyHomeworkChecked(ctx context.Context, webhookURL string, studentVKID int64, fileURL, title, subjectEngName string) error {
	query := url.Values{}
	query.Set("avtp", "1")
	query.Set("sid", strconv.FormatInt(studentVKID, 10))
	query.Set("soch", fileURL)
	query.Set("title", title)
	query.Set("subject", subjectEngName)
	return c.get(ctx, webhookURL, "", query)
}

func (c *Client) get(ctx context.Context, webhookURL, targetPath string, query url.Values) error {
	target := strings.TrimRight(webhookURL, "/")
	if targetPath != "" {
		target += "/" + strings.TrimLeft(targetPath, "/")
	}
	target += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fire webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fire webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
