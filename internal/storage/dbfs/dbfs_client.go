package dbfs

import (
	"context"
	"fmt"
	"io"
	"path"

	"docsight/internal/domain"
	"docsight/internal/port"
)

// fileAPI is the slice of the workspace client DBFS staging needs.
type fileAPI interface {
	UploadFile(ctx context.Context, filePath string, r io.Reader) error
	DeleteFile(ctx context.Context, filePath string) error
}

type dbfsClient struct {
	api    fileAPI
	prefix string
}

// NewDBFSClient creates a DBFS-backed staging store rooted at prefix.
// READ_FILES addresses staged files by their plain DBFS path, so URI
// reports prefix/key verbatim. DBFS has no presigned URLs.
func NewDBFSClient(api fileAPI, prefix string) port.ObjectStorage {
	if prefix == "" {
		prefix = "/tmp/docsight"
	}
	return &dbfsClient{api: api, prefix: prefix}
}

func (c *dbfsClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	filePath := c.URI(input.Key)
	if err := c.api.UploadFile(ctx, filePath, input.Body); err != nil {
		return nil, fmt.Errorf("dbfs upload: %w", err)
	}
	return &port.UploadOutput{Location: filePath}, nil
}

func (c *dbfsClient) Delete(ctx context.Context, key string) error {
	if err := c.api.DeleteFile(ctx, c.URI(key)); err != nil {
		return fmt.Errorf("dbfs delete: %w", err)
	}
	return nil
}

func (c *dbfsClient) GetPresignedURL(_ context.Context, _ string, _ int64) (string, error) {
	return "", domain.ErrPresignUnsupported
}

func (c *dbfsClient) URI(key string) string {
	return path.Join(c.prefix, key)
}
