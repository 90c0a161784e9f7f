package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// metadataRetryDelay is how long to wait before the single metadata retry;
// a file may not be ready immediately after the result event names it.
var metadataRetryDelay = 500 * time.Millisecond

// FileMetadata describes a file created by code execution.
type FileMetadata struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	SizeBytes    int64  `json:"size_bytes"`
	MimeType     string `json:"mime_type"`
	CreatedAt    string `json:"created_at,omitempty"`
	Downloadable *bool  `json:"downloadable,omitempty"`
}

// ListFilesResponse is one page of the files listing.
type ListFilesResponse struct {
	Data     []FileMetadata `json:"data"`
	HasMore  bool           `json:"has_more,omitempty"`
	NextPage string         `json:"next_page,omitempty"`
}

// GetFileMetadata fetches metadata for one file.
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*FileMetadata, error) {
	var meta FileMetadata
	if err := c.filesGet(ctx, "/v1/files/"+fileID, &meta); err != nil {
		return nil, fmt.Errorf("get file metadata: %w", err)
	}
	return &meta, nil
}

// DownloadFile fetches a file's raw content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.filesRequest(ctx, "/v1/files/"+fileID+"/content")
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file content: %w", err)
	}
	c.log.Debug("downloaded file", "id", fileID, "bytes", len(content))
	return content, nil
}

// ListFiles fetches the first page of files visible to the key.
func (c *Client) ListFiles(ctx context.Context) (*ListFilesResponse, error) {
	var list ListFilesResponse
	if err := c.filesGet(ctx, "/v1/files", &list); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return &list, nil
}

func (c *Client) filesGet(ctx context.Context, path string, result any) error {
	resp, err := c.filesRequest(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) filesRequest(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", filesBeta)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// DownloadAndSaveFile resolves a file's name and persists its content under
// outputDir. The resolved display name is reported on updates so the
// consumer can replace the placeholder it rendered from the result event.
//
// Failures degrade instead of propagating: a failed metadata lookup (after
// one retry) falls back to "{id}.bin", and a failed content fetch writes a
// placeholder file naming the id and the reason. Only local filesystem
// errors are returned.
func (c *Client) DownloadAndSaveFile(ctx context.Context, outputDir, fileID string, updates chan<- FileUpdate) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := c.resolveFilename(ctx, fileID)
	if updates != nil {
		select {
		case updates <- FileUpdate{ID: fileID, Name: name}:
		case <-ctx.Done():
		}
	}

	path := filepath.Join(outputDir, sanitizeFilename(name))

	content, err := c.DownloadFile(ctx, fileID)
	if err != nil {
		c.log.Warn("could not download file content, writing placeholder", "id", fileID, "error", err)
		placeholder := fmt.Sprintf(
			"Failed to download file from Claude's code execution.\n"+
				"\n"+
				"File ID: %s\n"+
				"Error: %s\n"+
				"\n"+
				"This could be due to:\n"+
				"- The file API not being available yet\n"+
				"- The file having expired\n"+
				"- Authentication or permission issues\n"+
				"\n"+
				"You can try using the Anthropic Files API directly with the file ID above.\n",
			fileID, err)
		if werr := os.WriteFile(path, []byte(placeholder), 0o644); werr != nil {
			return fmt.Errorf("write placeholder: %w", werr)
		}
		return nil
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	c.log.Info("saved file", "path", path)
	return nil
}

// resolveFilename asks the metadata API for the real filename, retrying
// once after a short delay, and falls back to a synthetic name.
func (c *Client) resolveFilename(ctx context.Context, fileID string) string {
	meta, err := c.GetFileMetadata(ctx, fileID)
	if err != nil {
		c.log.Warn("could not fetch file metadata", "id", fileID, "error", err)
		select {
		case <-time.After(metadataRetryDelay):
		case <-ctx.Done():
			return fileID + ".bin"
		}
		meta, err = c.GetFileMetadata(ctx, fileID)
	}
	if err != nil || meta.Filename == "" {
		return fileID + ".bin"
	}
	return meta.Filename
}

// sanitizeFilename reduces a resolved name to its final path segment and
// maps every byte outside [A-Za-z0-9._-] to an underscore.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	switch base {
	case "", ".", "..", string(filepath.Separator):
		base = "unnamed_file"
	}

	out := make([]byte, 0, len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
