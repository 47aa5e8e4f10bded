package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/Selfdb-io/selfdb-go/internal/httpapi"
)

// Client implements the SelfDB storage API.
type Client struct {
	api    *httpapi.Client
	logger *slog.Logger
}

// NewClient creates a storage client bound to the given transport.
func NewClient(api *httpapi.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger}
}

// CreateBucket creates a bucket.
func (c *Client) CreateBucket(ctx context.Context, name string, opts CreateBucketOptions) (*Bucket, error) {
	body := map[string]any{
		"name":      name,
		"is_public": opts.IsPublic,
	}
	if opts.Description != "" {
		body["description"] = opts.Description
	}
	var bucket Bucket
	if err := c.api.DoJSON(ctx, http.MethodPost, "/api/v1/buckets", nil, body, &bucket); err != nil {
		return nil, err
	}
	c.logger.Debug("created bucket", "name", name)
	return &bucket, nil
}

// ListBuckets returns all buckets visible to the current credentials.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	if err := c.api.DoJSON(ctx, http.MethodGet, "/api/v1/buckets", nil, nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// GetBucket fetches a bucket by id.
func (c *Client) GetBucket(ctx context.Context, id string) (*Bucket, error) {
	var bucket Bucket
	if err := c.api.DoJSON(ctx, http.MethodGet, "/api/v1/buckets/"+url.PathEscape(id), nil, nil, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

// DeleteBucket removes a bucket. The server rejects non-empty buckets.
func (c *Client) DeleteBucket(ctx context.Context, id string) error {
	return c.api.DoJSON(ctx, http.MethodDelete, "/api/v1/buckets/"+url.PathEscape(id), nil, nil, nil)
}

// Upload streams content into a bucket as a multipart request. The
// body is consumed once, so uploads are never retried; callers decide
// whether resubmitting is safe.
func (c *Client) Upload(ctx context.Context, bucketID, filename, contentType string, content io.Reader) (*FileInfo, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	path := "/api/v1/buckets/" + url.PathEscape(bucketID) + "/files"
	req, err := c.api.NewRequest(ctx, http.MethodPost, path, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var info FileInfo
	if err := c.api.DoRequest(req, &info); err != nil {
		return nil, err
	}
	c.logger.Debug("uploaded file", "bucket", bucketID, "filename", filename, "size", info.Size)
	return &info, nil
}

// Download streams a file's content. The caller must close the
// returned reader.
func (c *Client) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := c.api.Raw(ctx, http.MethodGet, "/api/v1/files/"+url.PathEscape(fileID)+"/download")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ListFiles returns the files in a bucket.
func (c *Client) ListFiles(ctx context.Context, bucketID string) ([]FileInfo, error) {
	var files []FileInfo
	path := "/api/v1/buckets/" + url.PathEscape(bucketID) + "/files"
	if err := c.api.DoJSON(ctx, http.MethodGet, path, nil, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteFile removes a file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.api.DoJSON(ctx, http.MethodDelete, "/api/v1/files/"+url.PathEscape(fileID), nil, nil, nil)
}
