package store

import (
	"context"
	"errors"

	"github.com/agridocs/cloudapi/internal/model"
)

var (
	// ErrDuplicateHash is returned by CreateDocument when the insert loses
	// the race on the partial unique hash index.
	ErrDuplicateHash = errors.New("document with the same content hash already exists")
)

type Store interface {
	DocumentStore
	AuditStore
	Migrate() error
}

// DocFilter holds optional equality filters, AND-combined. Empty fields are
// ignored.
type DocFilter struct {
	ContratoNro   string
	Tipo          string
	ProductorCUIT string
}

type DocumentStore interface {
	// CreateDocument inserts a new document. It is an insert-or-conflict
	// operation: a hash collision surfaces as ErrDuplicateHash, there is
	// no prior existence check.
	CreateDocument(ctx context.Context, doc *model.Doc) error
	// GetDocument retrieves a document by id.
	GetDocument(ctx context.Context, id string) (*model.Doc, error)
	// GetDocumentByHash retrieves the document holding the given content hash.
	GetDocumentByHash(ctx context.Context, hash string) (*model.Doc, error)
	// ListDocuments returns the page window and the total count of matching
	// rows before pagination, newest first.
	ListDocuments(ctx context.Context, filter DocFilter, limit, offset int) ([]*model.Doc, int64, error)
	// CountDocuments returns the total number of documents.
	CountDocuments(ctx context.Context) (int64, error)
}

type AuditStore interface {
	// CreateAudit inserts a new audit row.
	CreateAudit(ctx context.Context, audit *model.AuditIngest) error
	// ListAudits returns the most recent audit rows, newest first.
	ListAudits(ctx context.Context, limit int) ([]*model.AuditIngest, error)
}
