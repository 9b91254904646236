package store

import (
	"context"
	"errors"

	"github.com/agridocs/cloudapi/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Doc) error {
	err := g.db.WithContext(ctx).Create(doc).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateHash
	}

	return err
}

func (g *GormStore) GetDocument(ctx context.Context, id string) (*model.Doc, error) {
	var doc model.Doc
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (g *GormStore) GetDocumentByHash(ctx context.Context, hash string) (*model.Doc, error) {
	var doc model.Doc
	err := g.db.WithContext(ctx).Where("hash_sha256 = ?", hash).First(&doc).Error
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context, filter DocFilter, limit, offset int) ([]*model.Doc, int64, error) {
	q := g.db.WithContext(ctx).Model(&model.Doc{})
	if filter.ContratoNro != "" {
		q = q.Where("contrato_nro = ?", filter.ContratoNro)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.ProductorCUIT != "" {
		q = q.Where("productor_cuit = ?", filter.ProductorCUIT)
	}

	q = q.Session(&gorm.Session{})

	// Total is counted before the page window is applied.
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	docs := make([]*model.Doc, 0)
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (g *GormStore) CountDocuments(ctx context.Context) (int64, error) {
	var total int64
	err := g.db.WithContext(ctx).Model(&model.Doc{}).Count(&total).Error
	return total, err
}

func (g *GormStore) CreateAudit(ctx context.Context, audit *model.AuditIngest) error {
	return g.db.WithContext(ctx).Create(audit).Error
}

func (g *GormStore) ListAudits(ctx context.Context, limit int) ([]*model.AuditIngest, error) {
	audits := make([]*model.AuditIngest, 0)
	q := g.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Find(&audits).Error
	if err != nil {
		return nil, err
	}

	return audits, nil
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}
