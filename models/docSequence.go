package models

import (
	"fmt"

	"github.com/ncon2559/construction_backend/utils"
	"gorm.io/gorm"
)

// DocSequence is the per-(prefix, year) last-issued-number record backing
// document numbering. Rows are created lazily on first allocation and never
// deleted during normal operation.
type DocSequence struct {
	ID         int    `gorm:"primary_key" json:"id"`
	Prefix     string `gorm:"size:10;not null;uniqueIndex:idx_doc_sequences_prefix_year" json:"prefix"`
	Year       int    `gorm:"not null;uniqueIndex:idx_doc_sequences_prefix_year" json:"year"`
	LastNumber int64  `gorm:"not null" json:"last_number"`
}

// FormatDocumentNumber renders "{prefix}-{year}-{0000N}". The numeric part is
// zero-padded to 4 digits and simply grows wider past 9999.
func FormatDocumentNumber(prefix string, year int, seqNo int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seqNo)
}

// NextDocumentNumber allocates the next sequence number for (docType, year)
// and returns it with its formatted document number.
//
// The increment is a single atomic upsert against the counter row. MySQL has
// no RETURNING on upserts, and LAST_INSERT_ID(expr) is unusable here: on the
// fresh-insert branch the table's AUTO_INCREMENT id overrides the expression
// value at statement end. Instead the incremented value is read back with a
// plain SELECT; the upsert holds the row lock until the caller's transaction
// ends, so the read cannot observe another allocator's increment.
//
// Call this with the SAME transaction that inserts the document: a rollback
// then also rolls the counter back, so numbers are never burned without a
// persisted document.
func NextDocumentNumber(tx *gorm.DB, docType DocType, year int) (int64, string, error) {
	prefix := docType.Prefix()

	err := tx.Exec(
		`INSERT INTO doc_sequences (prefix, year, last_number)
		 VALUES (?, ?, 1)
		 ON DUPLICATE KEY UPDATE last_number = last_number + 1`,
		prefix, year,
	).Error
	if err != nil {
		return 0, "", utils.ErrorStorageUnavailable
	}

	var seqNo int64
	err = tx.Raw(
		`SELECT last_number FROM doc_sequences WHERE prefix = ? AND year = ?`,
		prefix, year,
	).Scan(&seqNo).Error
	if err != nil {
		return 0, "", utils.ErrorStorageUnavailable
	}

	return seqNo, FormatDocumentNumber(prefix, year, seqNo), nil
}
