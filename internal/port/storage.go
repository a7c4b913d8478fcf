package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to stage an object.
type UploadInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful staging upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts the staging backends the warehouse can read
// files from. URI reports the location a READ_FILES call should be
// pointed at for a staged key; backends that cannot presign return
// domain.ErrPresignUnsupported from GetPresignedURL.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, expirySeconds int64) (string, error)
	URI(key string) string
}
