package storage

import "io"

// BlobStore is the local home of an uploaded image until the background
// uploader has pushed it to Drive and removed it.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Remove(key string) error
	Path(key string) string // absolute-ish path handed to the uploader
}
