package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation names recorded in the ledger history.
const (
	OpAddCash        = "add_cash"
	OpRemoveCash     = "remove_cash"
	OpTransferCash   = "transfer_cash"
	OpPurchase       = "purchase_property"
	OpReleaseProp    = "remove_property_from_team"
	OpEditTeam       = "edit_team"
	OpRemoveTeam     = "remove_team"
	OpSeedProperties = "add_properties_bulk"
	OpReset          = "reset_all_tables"
)

// LedgerEntry records one committed mutation. Rows are written inside the same
// database transaction as the mutation they describe, so the history never
// shows an operation that was rolled back.
type LedgerEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	Operation    string          `gorm:"not null;size:40;index" json:"operation"`
	TeamID       *uint           `json:"team_id,omitempty"`
	OtherTeamID  *uint           `json:"other_team_id,omitempty"`
	PropertyName *string         `gorm:"size:200" json:"property_name,omitempty"`
	Amount       decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
}
