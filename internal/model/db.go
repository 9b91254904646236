package model

import "gorm.io/gorm"

// Migrate creates the docs and audit_ingest tables and the partial unique
// index that backs hash deduplication. Multiple rows with a NULL hash may
// coexist; non-NULL hashes are unique.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Doc{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&AuditIngest{}); err != nil {
		return err
	}

	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_docs_hash_sha256_not_null " +
			"ON docs (hash_sha256) WHERE hash_sha256 IS NOT NULL",
	).Error
}
