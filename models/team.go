package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team is one player group's ledger row. TotalCash is derived (cash plus the
// value of all owned properties) and is only ever written by ledger operations
// that recompute it inside the same transaction as the mutation.
type Team struct {
	TeamID     uint            `gorm:"primaryKey;column:team_id" json:"team_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	TeamName   string          `gorm:"not null;size:100" json:"team_name"`
	Cash       decimal.Decimal `gorm:"type:numeric;not null" json:"cash"`
	TotalCash  decimal.Decimal `gorm:"type:numeric;not null" json:"total_cash"`
	Properties []Property      `gorm:"foreignKey:OwnerTeamID;references:TeamID" json:"properties,omitempty"`
}
