package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/luischz/inventario_ventas/internal/config"
)

// Cloudinary uploads images to a Cloudinary-style unsigned upload endpoint
// and returns the secure URL assigned by the host.
type Cloudinary struct {
	uploadURL    string
	uploadPreset string
	client       *http.Client
}

// NewCloudinary creates a Cloudinary uploader from configuration
func NewCloudinary(cfg *config.Config) *Cloudinary {
	return &Cloudinary{
		uploadURL:    cfg.Images.UploadURL,
		uploadPreset: cfg.Images.UploadPreset,
		client:       &http.Client{Timeout: cfg.Images.Timeout},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends the image as a multipart form and returns the hosted URL
func (c *Cloudinary) Upload(ctx context.Context, image io.Reader) (string, error) {
	if c.uploadURL == "" {
		return "", fmt.Errorf("image upload endpoint not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fmt.Sprintf("producto-%d", time.Now().UnixNano()))
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if c.uploadPreset != "" {
		if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
			return "", fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("image host returned no URL")
	}

	return parsed.SecureURL, nil
}
