package model

import (
	"time"
)

// Doc is the durable record of one ingested document. Rows are append only,
// the service never updates or deletes them.
type Doc struct {
	ID            string  `gorm:"primaryKey;size:36" json:"id"`
	ContratoNro   string  `gorm:"size:64;index;not null" json:"contrato_nro"`
	Tipo          string  `gorm:"size:32;index;not null" json:"tipo"`
	ProductorCUIT *string `gorm:"column:productor_cuit;size:32;index" json:"productor_cuit"`

	// Dedupe key. Unique among non-NULL values, enforced by a partial
	// unique index (see Migrate).
	HashSHA256 *string `gorm:"column:hash_sha256;size:64;index" json:"hash_sha256"`

	Meta        JSONMap `gorm:"column:meta" json:"metadata"`
	Referencias JSONMap `json:"referencias"`
	ContentText *string `gorm:"type:text" json:"content_text"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"created_at"`

	Audits []AuditIngest `gorm:"foreignKey:DocID" json:"-"`
}

func (Doc) TableName() string {
	return "docs"
}
