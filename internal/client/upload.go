package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/evcraddock/staybook/internal/logging"
)

// UploadImage sends an image to the backend's storage proxy and returns
// the stored object path, which is what listings reference.
func (c *Client) UploadImage(ctx context.Context, folder, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("writing folder field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/storage/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(logging.RequestIDHeader, uuid.NewString())
	if c.session != "" {
		req.Header.Set("Cookie", c.session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("uploading %s: %w", name, newAPIError(resp, body))
	}

	var out struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Path == "" {
		return "", fmt.Errorf("uploading %s: no path in response", name)
	}
	return out.Path, nil
}
