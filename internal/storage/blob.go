package storage

import "io"

// BlobStore archives uploaded source documents so a generated quiz can be
// traced back to the material it came from.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
