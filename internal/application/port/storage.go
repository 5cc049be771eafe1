package port

import "context"

// StoredObject describes an object written to file storage
type StoredObject struct {
	Key  string
	URL  string
	Size int64
}

// ObjectStorage stores uploaded document files and resolves their public URLs
type ObjectStorage interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
