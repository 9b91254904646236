package cache

import "context"

// DocumentCache is a best-effort read-through cache in front of the document
// store. Implementations must tolerate misses; callers must tolerate errors.
type DocumentCache interface {
	// GetDocumentID returns the document id cached for a content hash, or
	// "" on a miss.
	GetDocumentID(ctx context.Context, hash string) (string, error)
	// SetDocumentID caches the document id for a content hash.
	SetDocumentID(ctx context.Context, hash, id string) error
	// GetDocsCount returns the cached document count. ok is false on a miss.
	GetDocsCount(ctx context.Context) (count int64, ok bool, err error)
	// SetDocsCount caches the document count.
	SetDocsCount(ctx context.Context, count int64) error
}
