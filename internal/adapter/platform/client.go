package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// Client talks to the hosted app platform: entity CRUD, auth, file
// uploads, and structured extraction. All entity payloads are JSON.
type Client struct {
	baseURL    string
	appID      string
	apiKey     string
	httpClient *retryablehttp.Client
	logger     *slog.Logger
}

// NewClient creates a platform API client with retrying transport.
func NewClient(baseURL, appID, apiKey string, timeout time.Duration, retryMax int, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		baseURL:    baseURL,
		appID:      appID,
		apiKey:     apiKey,
		httpClient: rc,
		logger:     logger,
	}
}

// entityPath builds the CRUD path for an entity collection.
func (c *Client) entityPath(entity string) string {
	return fmt.Sprintf("%s/apps/%s/entities/%s", c.baseURL, c.appID, entity)
}

// doJSON performs a request with an optional JSON body and decodes the
// JSON response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, fullURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("platform API error: status %d: %s", resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListEntities fetches up to limit records of an entity, sorted by the given
// field ("-created_date" sorts newest first). A limit of 0 means no limit.
func (c *Client) ListEntities(ctx context.Context, entity, sort string, limit int, out any) error {
	params := url.Values{}
	if sort != "" {
		params.Set("sort", sort)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}

	u := c.entityPath(entity)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, u, nil, out)
}

// FilterEntities fetches records matching the field/value pairs in query.
func (c *Client) FilterEntities(ctx context.Context, entity string, query map[string]any, sort string, out any) error {
	q, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}

	params := url.Values{"q": {string(q)}}
	if sort != "" {
		params.Set("sort", sort)
	}
	return c.doJSON(ctx, http.MethodGet, c.entityPath(entity)+"?"+params.Encode(), nil, out)
}

// CreateEntity creates a single record and decodes the created record
// (with its server-assigned ID) into out when out is non-nil.
func (c *Client) CreateEntity(ctx context.Context, entity string, record, out any) error {
	return c.doJSON(ctx, http.MethodPost, c.entityPath(entity), record, out)
}

// UpdateEntity applies a partial update to one record.
func (c *Client) UpdateEntity(ctx context.Context, entity, id string, fields any) error {
	return c.doJSON(ctx, http.MethodPut, c.entityPath(entity)+"/"+id, fields, nil)
}

// BulkCreate creates many records in one request.
func (c *Client) BulkCreate(ctx context.Context, entity string, records any) error {
	return c.doJSON(ctx, http.MethodPost, c.entityPath(entity)+"/bulk", records, nil)
}

// DeleteEntity removes one record.
func (c *Client) DeleteEntity(ctx context.Context, entity, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.entityPath(entity)+"/"+id, nil, nil)
}

// Me fetches the authenticated user.
func (c *Client) Me(ctx context.Context, out any) error {
	u := fmt.Sprintf("%s/apps/%s/users/me", c.baseURL, c.appID)
	return c.doJSON(ctx, http.MethodGet, u, nil, out)
}

// UpdateMe applies a partial update to the authenticated user's record.
func (c *Client) UpdateMe(ctx context.Context, fields any) error {
	u := fmt.Sprintf("%s/apps/%s/users/me", c.baseURL, c.appID)
	return c.doJSON(ctx, http.MethodPut, u, fields, nil)
}

// Logout invalidates the current session on the platform.
func (c *Client) Logout(ctx context.Context) error {
	u := fmt.Sprintf("%s/apps/%s/auth/logout", c.baseURL, c.appID)
	return c.doJSON(ctx, http.MethodPost, u, nil, nil)
}

// UploadFile uploads a file and returns its hosted URL.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	u := fmt.Sprintf("%s/apps/%s/files", c.baseURL, c.appID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("platform API error: status %d: %s", resp.StatusCode, msg)
	}

	var uploaded struct {
		FileURL string `json:"file_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if uploaded.FileURL == "" {
		return "", fmt.Errorf("upload response missing file_url")
	}
	return uploaded.FileURL, nil
}

// ExtractFromFile runs the platform's structured extraction over a
// previously uploaded file, decoding rows matching schema into out.
func (c *Client) ExtractFromFile(ctx context.Context, fileURL string, schema map[string]any, out any) error {
	body := map[string]any{
		"file_url":    fileURL,
		"json_schema": schema,
	}
	u := fmt.Sprintf("%s/apps/%s/integrations/extract-data", c.baseURL, c.appID)

	var result struct {
		Status string          `json:"status"`
		Error  string          `json:"error"`
		Output json.RawMessage `json:"output"`
	}
	if err := c.doJSON(ctx, http.MethodPost, u, body, &result); err != nil {
		return err
	}
	if result.Status != "success" {
		return fmt.Errorf("extraction failed: %s", result.Error)
	}
	if err := json.Unmarshal(result.Output, out); err != nil {
		return fmt.Errorf("decode extraction output: %w", err)
	}
	return nil
}
