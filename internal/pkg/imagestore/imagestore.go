package imagestore

import (
	"context"
	"io"
)

// Store uploads raw image bytes to an external image host and returns the
// public URL of the stored image.
type Store interface {
	Upload(ctx context.Context, image io.Reader) (string, error)
}
