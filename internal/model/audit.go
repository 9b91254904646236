package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AuditStatusOK  = "OK"
	AuditStatusDup = "DUP"
)

// AuditIngest records one ingestion attempt and its outcome. Exactly one row
// is written per attempt that reaches the storage layer, including rejected
// duplicates. DocID is NULL when no document could be associated.
type AuditIngest struct {
	ID         string    `gorm:"primaryKey;size:40" json:"id"`
	DocID      *string   `gorm:"size:36;index" json:"doc_id"`
	Status     string    `gorm:"size:8;not null" json:"status"`
	HashSHA256 *string   `gorm:"column:hash_sha256;size:64" json:"hash_sha256"`
	Detail     string    `gorm:"type:text" json:"detail"`
	RawPayload JSONMap   `json:"raw_payload"`
	CreatedAt  time.Time `gorm:"autoCreateTime;not null" json:"created_at"`
}

func (AuditIngest) TableName() string {
	return "audit_ingest"
}

// NewAuditID generates an audit row id of the form "a_<32 hex chars>".
func NewAuditID() string {
	return "a_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
