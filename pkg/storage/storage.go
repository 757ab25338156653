package storage

import "context"

// Storage keeps publicly readable files such as room maps and character
// portraits.
type Storage interface {
	Upload(context.Context, *UploadObject) (*UploadResponse, error)
	BulkUpload(context.Context, []*UploadObject) ([]*UploadResponse, error)

	// Delete removes the object served at url. Unknown urls are ignored.
	Delete(ctx context.Context, bucket, url string) error
}

type UploadObject struct {
	Bucket string

	// Folder and Name build the object key. The storage makes the key
	// unique, two uploads with the same name never collide.
	Folder string
	Name   string

	ContentType string
	Data        []byte
}

type UploadResponse struct {
	URL string
	Key string
}
