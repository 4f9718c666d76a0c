// Package google holds thin REST adapters for the drive and sheets APIs.
// Credential exchange is out of scope here: the key bundle must already
// carry a usable access token.
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/course-backoffice-api/pkg/config"
)

const (
	driveBase  = "https://www.googleapis.com/drive/v3"
	sheetsBase = "https://sheets.googleapis.com/v4"
)

// Client executes drive and sheets calls with one shared token.
type Client struct {
	driveURL  string
	sheetsURL string
	token     string
	http      *http.Client
}

type keyBundle struct {
	AccessToken string `json:"access_token"`
}

// NewClient decodes the base64 key bundle and builds the client.
func NewClient(cfg config.GoogleConfig) (*Client, error) {
	var bundle keyBundle
	if cfg.KeyBundle != "" {
		raw, err := base64.StdEncoding.DecodeString(cfg.KeyBundle)
		if err != nil {
			return nil, fmt.Errorf("decode google key bundle: %w", err)
		}
		if err := json.Unmarshal(raw, &bundle); err != nil {
			return nil, fmt.Errorf("parse google key bundle: %w", err)
		}
	}
	return &Client{
		driveURL:  driveBase,
		sheetsURL: sheetsBase,
		token:     bundle.AccessToken,
		http:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// CreateFolder creates a drive folder under the parent and opens it to
// anyone with the link. Returns the new folder id.
func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	payload := map[string]interface{}{
		"name":     name,
		"mimeType": "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		payload["parents"] = []string{parentID}
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.driveURL+"/files", payload, &created); err != nil {
		return "", fmt.Errorf("create drive folder: %w", err)
	}

	permission := map[string]interface{}{"role": "reader", "type": "anyone"}
	if err := c.post(ctx, fmt.Sprintf("%s/files/%s/permissions", c.driveURL, created.ID), permission, nil); err != nil {
		return "", fmt.Errorf("share drive folder: %w", err)
	}
	return created.ID, nil
}

// WriteColumns writes value columns into the sheet at the given index of
// the spreadsheet, starting at A1, using COLUMNS major dimension.
func (c *Client) WriteColumns(ctx context.Context, spreadsheetID string, sheetIndex int, values [][]interface{}) error {
	title, err := c.sheetTitle(ctx, spreadsheetID, sheetIndex)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"majorDimension": "COLUMNS",
		"values":         values,
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.sheetsURL, spreadsheetID, url.PathEscape("'"+title+"'!A1"))
	if err := c.put(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("write sheet columns: %w", err)
	}
	return nil
}

func (c *Client) sheetTitle(ctx context.Context, spreadsheetID string, sheetIndex int) (string, error) {
	var meta struct {
		Sheets []struct {
			Properties struct {
				Index int    `json:"index"`
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s?fields=sheets.properties", c.sheetsURL, spreadsheetID)
	if err := c.get(ctx, endpoint, &meta); err != nil {
		return "", fmt.Errorf("read spreadsheet meta: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties.Index == sheetIndex {
			return sheet.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("spreadsheet %s has no sheet at index %d", spreadsheetID, sheetIndex)
}

func (c *Client) get(ctx context.Context, endpoint string, dest interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, dest)
}

func (c *Client) post(ctx context.Context, endpoint string, payload, dest interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, payload, dest)
}

func (c *Client) put(ctx context.Context, endpoint string, payload, dest interface{}) error {
	return c.do(ctx, http.MethodPut, endpoint, payload, dest)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, dest interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("google api %s %s: status %d", method, endpoint, resp.StatusCode)
	}
	if dest != nil {
		return json.NewDecoder(resp.Body).Decode(dest)
	}
	return nil
}
