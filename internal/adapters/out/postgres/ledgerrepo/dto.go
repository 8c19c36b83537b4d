// Package ledgerrepo provides data transfer objects and mapping functions for
// journal persistence. The journal is append-only: the repository exposes no
// update or delete path, and corrections are posted as new reversing entries.
package ledgerrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryDTO represents the database structure for persisting journal entries.
// Indexed on the reference pair so an order's financial history resolves
// without a table scan.
type EntryDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Description   string    `gorm:"type:varchar(255);not null"`
	ReferenceType string    `gorm:"type:varchar(32);not null;index:idx_ledger_reference"`
	ReferenceID   uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_reference"`
	RecordedAt    time.Time `gorm:"not null"`

	Lines []EntryLineDTO `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for journal entries.
func (EntryDTO) TableName() string {
	return "ledger_entries"
}

// EntryLineDTO represents one debit or credit posting against an account.
// Amounts are stored as numeric so balance folds run in SQL without
// floating-point drift.
type EntryLineDTO struct {
	ID      int64           `gorm:"primaryKey;autoIncrement"`
	EntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Account string          `gorm:"type:varchar(64);not null;index"`
	Debit   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Credit  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

// TableName specifies the database table name for journal entry lines.
func (EntryLineDTO) TableName() string {
	return "ledger_entry_lines"
}

// fromDomain converts a journal entry to its database representation.
func fromDomain(entry *ledger.Entry) EntryDTO {
	entryID := entry.ID().Bytes()
	refType, refID := entry.Reference()

	lines := make([]EntryLineDTO, 0, len(entry.Lines()))
	for _, line := range entry.Lines() {
		lines = append(lines, EntryLineDTO{
			EntryID: entryID,
			Account: line.Account.String(),
			Debit:   line.Debit.Decimal(),
			Credit:  line.Credit.Decimal(),
		})
	}

	return EntryDTO{
		ID:            entryID,
		Description:   entry.Description(),
		ReferenceType: string(refType),
		ReferenceID:   refID.Bytes(),
		RecordedAt:    time.Now().UTC(),
		Lines:         lines,
	}
}

// toDomain converts a database DTO to a journal entry, re-running the
// balance check through NewEntry so a corrupted row cannot reenter the
// domain unnoticed.
func toDomain(dto EntryDTO) (*ledger.Entry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	refID, err := kernel.UUIDFromBytes(dto.ReferenceID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]ledger.EntryLine, 0, len(dto.Lines))
	for _, line := range dto.Lines {
		lines = append(lines, ledger.EntryLine{
			Account: ledger.AccountCode(line.Account),
			Debit:   kernel.NewMoneyFromDecimal(line.Debit),
			Credit:  kernel.NewMoneyFromDecimal(line.Credit),
		})
	}

	return ledger.NewEntry(id, dto.Description, ledger.ReferenceType(dto.ReferenceType), refID, lines)
}
