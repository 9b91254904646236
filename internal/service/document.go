package service

import (
	"context"
	"errors"

	"github.com/agridocs/cloudapi/internal/cache"
	"github.com/agridocs/cloudapi/internal/canonical"
	"github.com/agridocs/cloudapi/internal/model"
	"github.com/agridocs/cloudapi/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store store.Store, cache cache.DocumentCache) *DocumentService {
	return &DocumentService{
		store: store,
		cache: cache,
	}
}

// DocumentService implements ingestion with hash deduplication and the read
// paths over documents and their audit trail.
type DocumentService struct {
	store store.Store
	cache cache.DocumentCache
}

// Ingest persists a normalized record. The effective content hash is the
// caller-supplied one, or the canonical hash of the raw payload when absent.
//
// Dedupe relies solely on the storage-level partial unique index: the insert
// either wins or surfaces store.ErrDuplicateHash, there is no check before
// the insert. Every attempt that reaches the store writes exactly one audit
// row; on the duplicate path the DUP audit row is committed before
// ErrDuplicateDocument is returned, carrying the winning document when it
// could be resolved.
//
// Document and audit are two sequential commits, not one transaction. A crash
// between them can leave a document without an OK audit row; this mirrors the
// upstream system and is accepted.
func (d *DocumentService) Ingest(ctx context.Context, rec *IngestRecord, raw map[string]interface{}) (*model.Doc, string, error) {
	hash := rec.HashSHA256
	if hash == "" {
		var err error
		hash, err = canonical.Hash(raw)
		if err != nil {
			return nil, "", err
		}
	}

	doc := &model.Doc{
		ID:          uuid.New().String(),
		ContratoNro: rec.ContratoNro,
		Tipo:        rec.Tipo,
		HashSHA256:  &hash,
		Meta:        model.JSONMap(rec.Metadata),
		Referencias: model.JSONMap(rec.Referencias),
		ContentText: rec.ContentText,
	}
	if rec.ProductorCUIT != "" {
		doc.ProductorCUIT = &rec.ProductorCUIT
	}

	err := d.store.CreateDocument(ctx, doc)
	if err == nil {
		if err := d.writeAudit(ctx, &doc.ID, model.AuditStatusOK, hash, "documento insertado", raw); err != nil {
			return nil, "", err
		}

		if err := d.cache.SetDocumentID(ctx, hash, doc.ID); err != nil {
			logrus.Warnf("failed to cache document id for hash %s: %v", hash, err)
		}

		return doc, model.AuditStatusOK, nil
	}

	if errors.Is(err, store.ErrDuplicateHash) {
		existing := d.findByHash(ctx, hash)

		var docID *string
		if existing != nil {
			docID = &existing.ID
		}
		if err := d.writeAudit(ctx, docID, model.AuditStatusDup, hash, ErrDuplicateDocument.Error(), raw); err != nil {
			return nil, "", err
		}

		return existing, model.AuditStatusDup, ErrDuplicateDocument
	}

	return nil, "", err
}

// findByHash resolves the document owning a content hash, best effort: a
// lookup failure leaves the DUP audit row without a document reference.
func (d *DocumentService) findByHash(ctx context.Context, hash string) *model.Doc {
	if id, err := d.cache.GetDocumentID(ctx, hash); err == nil && id != "" {
		if doc, err := d.store.GetDocument(ctx, id); err == nil {
			return doc
		}
	}

	doc, err := d.store.GetDocumentByHash(ctx, hash)
	if err != nil {
		logrus.Warnf("no document found for duplicate hash %s: %v", hash, err)
		return nil
	}

	if err := d.cache.SetDocumentID(ctx, hash, doc.ID); err != nil {
		logrus.Warnf("failed to cache document id for hash %s: %v", hash, err)
	}

	return doc
}

func (d *DocumentService) writeAudit(ctx context.Context, docID *string, status, hash, detail string, raw map[string]interface{}) error {
	return d.store.CreateAudit(ctx, &model.AuditIngest{
		ID:         model.NewAuditID(),
		DocID:      docID,
		Status:     status,
		HashSHA256: &hash,
		Detail:     detail,
		RawPayload: model.JSONMap(raw),
	})
}

// ListDocuments returns one page of matching documents, newest first, and the
// total match count before pagination.
func (d *DocumentService) ListDocuments(ctx context.Context, filter store.DocFilter, limit, offset int) ([]*model.Doc, int64, error) {
	return d.store.ListDocuments(ctx, filter, limit, offset)
}

// ListAudits returns the most recent audit rows, newest first.
func (d *DocumentService) ListAudits(ctx context.Context, limit int) ([]*model.AuditIngest, error) {
	return d.store.ListAudits(ctx, limit)
}

// CountDocuments returns the document count, served from the cache when warm.
func (d *DocumentService) CountDocuments(ctx context.Context) (int64, error) {
	if count, ok, err := d.cache.GetDocsCount(ctx); err == nil && ok {
		return count, nil
	}

	count, err := d.store.CountDocuments(ctx)
	if err != nil {
		return 0, err
	}

	if err := d.cache.SetDocsCount(ctx, count); err != nil {
		logrus.Warnf("failed to cache docs count: %v", err)
	}

	return count, nil
}
