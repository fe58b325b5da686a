package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property is a board property. The name is the identity (there is no numeric
// id); the value is fixed when the catalog is seeded. A null owner means the
// property is available for purchase.
type Property struct {
	PropertyName  string          `gorm:"primaryKey;size:200" json:"property_name"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	PropertyValue decimal.Decimal `gorm:"type:numeric;not null" json:"property_value"`
	OwnerTeamID   *uint           `gorm:"index" json:"owner_team_id"`
	Owner         *Team           `gorm:"foreignKey:OwnerTeamID;references:TeamID" json:"-"`
}

func (p *Property) Available() bool {
	return p.OwnerTeamID == nil
}
