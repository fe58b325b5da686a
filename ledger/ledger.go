// Package ledger implements the game bank: team cash balances, property
// ownership, and the operations that mutate them. Every mutation runs as a
// single database transaction with in-database arithmetic, so concurrent
// requests from different devices cannot lose updates, and the derived net
// worth is recomputed before the transaction commits.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gamebank/config"
	"gamebank/database"
	"gamebank/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// OwnedProperty is the property view embedded in a team summary.
type OwnedProperty struct {
	PropertyName string          `json:"property_name"`
	Value        decimal.Decimal `json:"value"`
}

// TeamSummary is a consistent snapshot of one team: balances plus owned
// properties, read inside a single transaction.
type TeamSummary struct {
	TeamID          uint            `json:"team_id"`
	TeamName        string          `json:"team_name"`
	Cash            decimal.Decimal `json:"cash"`
	TotalCash       decimal.Decimal `json:"total_cash"`
	OwnedProperties []OwnedProperty `json:"owned_properties"`
}

// LeaderboardRow is one entry of the cash leaderboard.
type LeaderboardRow struct {
	TeamID   uint            `json:"team_id"`
	TeamName string          `json:"team_name"`
	Cash     decimal.Decimal `json:"cash"`
}

// TransferResult carries both sides of a completed transfer.
type TransferResult struct {
	From models.Team `json:"from"`
	To   models.Team `json:"to"`
}

// PurchaseResult carries the updated buyer and property after an ownership
// change.
type PurchaseResult struct {
	Team     models.Team     `json:"team"`
	Property models.Property `json:"property"`
}

// TeamEdit is the administrative escape hatch: any non-nil field overwrites
// the stored value directly.
type TeamEdit struct {
	NewTeamID *uint            `json:"new_team_id"`
	TeamName  *string          `json:"team_name"`
	Cash      *decimal.Decimal `json:"cash"`
	TotalCash *decimal.Decimal `json:"total_cash"`
}

// AddCash credits a team. The increment happens in the database, so two
// simultaneous credits to the same team both apply.
func (s *Service) AddCash(ctx context.Context, teamID uint, amount decimal.Decimal) (*models.Team, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, Validationf("amount must be greater than 0")
	}

	var team models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Team{}).Where("team_id = ?", teamID).
			Update("cash", gorm.Expr("cash + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFoundf("team %d does not exist", teamID)
		}
		if err := recomputeTotals(tx, teamID); err != nil {
			return err
		}
		if err := appendEntry(tx, models.OpAddCash, &teamID, nil, nil, amount); err != nil {
			return err
		}
		return tx.First(&team, "team_id = ?", teamID).Error
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpAddCash, TeamID: teamID, Amount: amount, At: time.Now()})
	return &team, nil
}

// RemoveCash debits a team. Overdrawing is allowed when negative balances are
// enabled (debt); otherwise the debit fails without touching the row.
func (s *Service) RemoveCash(ctx context.Context, teamID uint, amount decimal.Decimal) (*models.Team, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, Validationf("amount must be greater than 0")
	}

	var team models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.debitCash(tx, teamID, amount); err != nil {
			return err
		}
		if err := recomputeTotals(tx, teamID); err != nil {
			return err
		}
		if err := appendEntry(tx, models.OpRemoveCash, &teamID, nil, nil, amount); err != nil {
			return err
		}
		return tx.First(&team, "team_id = ?", teamID).Error
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpRemoveCash, TeamID: teamID, Amount: amount, At: time.Now()})
	return &team, nil
}

// TransferCash moves cash between two teams atomically: either both rows
// change or neither does. Rows are touched in ascending team_id order so two
// opposing transfers cannot deadlock.
func (s *Service) TransferCash(ctx context.Context, fromTeamID, toTeamID uint, amount decimal.Decimal) (*TransferResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, Validationf("amount must be greater than 0")
	}
	if fromTeamID == toTeamID {
		return nil, Validationf("source and destination teams cannot be the same")
	}

	var result TransferResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func(*gorm.DB) error{
			func(tx *gorm.DB) error { return s.debitCash(tx, fromTeamID, amount) },
			func(tx *gorm.DB) error { return creditCash(tx, toTeamID, amount) },
		}
		if toTeamID < fromTeamID {
			steps[0], steps[1] = steps[1], steps[0]
		}
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}

		if err := recomputeTotals(tx, fromTeamID, toTeamID); err != nil {
			return err
		}
		if err := appendEntry(tx, models.OpTransferCash, &fromTeamID, &toTeamID, nil, amount); err != nil {
			return err
		}
		if err := tx.First(&result.From, "team_id = ?", fromTeamID).Error; err != nil {
			return err
		}
		return tx.First(&result.To, "team_id = ?", toTeamID).Error
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpTransferCash, TeamID: fromTeamID, OtherTeamID: &toTeamID, Amount: amount, At: time.Now()})
	return &result, nil
}

// PurchaseProperty claims an available property for a team. When the game is
// configured to debit purchases, the price leaves the buyer's cash in the same
// transaction; either way the buyer's net worth picks up the property value.
func (s *Service) PurchaseProperty(ctx context.Context, propertyName string, teamID uint) (*PurchaseResult, error) {
	if propertyName == "" {
		return nil, Validationf("property name is required")
	}

	var result PurchaseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, "property_name = ?", propertyName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("property %q does not exist", propertyName)
			}
			return err
		}
		if !property.Available() {
			return Conflictf("property %q is already owned by team %d", propertyName, *property.OwnerTeamID)
		}

		var count int64
		if err := tx.Model(&models.Team{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return NotFoundf("team %d does not exist", teamID)
		}

		// Guard against a concurrent purchase that slipped in after the read.
		res := tx.Model(&models.Property{}).
			Where("property_name = ? AND owner_team_id IS NULL", propertyName).
			Update("owner_team_id", teamID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Conflictf("property %q is already owned", propertyName)
		}

		if s.cfg.PurchaseDebitsCash {
			if err := s.debitCash(tx, teamID, property.PropertyValue); err != nil {
				return err
			}
		}

		if err := recomputeTotals(tx, teamID); err != nil {
			return err
		}
		if err := appendEntry(tx, models.OpPurchase, &teamID, nil, &propertyName, property.PropertyValue); err != nil {
			return err
		}
		if err := tx.First(&result.Team, "team_id = ?", teamID).Error; err != nil {
			return err
		}
		return tx.First(&result.Property, "property_name = ?", propertyName).Error
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpPurchase, TeamID: teamID, PropertyName: propertyName, Amount: result.Property.PropertyValue, At: time.Now()})
	return &result, nil
}

// RemovePropertyFromTeam releases a property back to the bank. The property
// must currently belong to the given team.
func (s *Service) RemovePropertyFromTeam(ctx context.Context, propertyName string, teamID uint) (*PurchaseResult, error) {
	if propertyName == "" {
		return nil, Validationf("property name is required")
	}

	var result PurchaseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, "property_name = ?", propertyName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("property %q does not exist", propertyName)
			}
			return err
		}
		if property.OwnerTeamID == nil || *property.OwnerTeamID != teamID {
			return Conflictf("property %q is not owned by team %d", propertyName, teamID)
		}

		res := tx.Model(&models.Property{}).
			Where("property_name = ? AND owner_team_id = ?", propertyName, teamID).
			Update("owner_team_id", nil)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Conflictf("property %q is not owned by team %d", propertyName, teamID)
		}

		if err := recomputeTotals(tx, teamID); err != nil {
			return err
		}
		if err := appendEntry(tx, models.OpReleaseProp, &teamID, nil, &propertyName, property.PropertyValue); err != nil {
			return err
		}
		if err := tx.First(&result.Team, "team_id = ?", teamID).Error; err != nil {
			return err
		}
		return tx.First(&result.Property, "property_name = ?", propertyName).Error
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpReleaseProp, TeamID: teamID, PropertyName: propertyName, Amount: result.Property.PropertyValue, At: time.Now()})
	return &result, nil
}

// AvailableProperties lists unowned properties, ordered by name without
// regard to case.
func (s *Service) AvailableProperties(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.WithContext(ctx).
		Where("owner_team_id IS NULL").
		Order("LOWER(property_name) ASC").
		Find(&properties).Error
	if err != nil {
		return nil, classify(err)
	}
	return properties, nil
}

// TeamSummary reads the team row and its owned properties inside one
// transaction, so a transfer or purchase committing between the two queries
// cannot produce a summary that mixes states.
func (s *Service) TeamSummary(ctx context.Context, teamID uint) (*TeamSummary, error) {
	var summary TeamSummary
	err := s.transactionRO(ctx, func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, "team_id = ?", teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("team %d does not exist", teamID)
			}
			return err
		}

		var properties []models.Property
		if err := tx.Where("owner_team_id = ?", teamID).
			Order("LOWER(property_name) ASC").
			Find(&properties).Error; err != nil {
			return err
		}

		summary = TeamSummary{
			TeamID:          team.TeamID,
			TeamName:        team.TeamName,
			Cash:            team.Cash,
			TotalCash:       team.TotalCash,
			OwnedProperties: make([]OwnedProperty, 0, len(properties)),
		}
		for _, p := range properties {
			summary.OwnedProperties = append(summary.OwnedProperties, OwnedProperty{
				PropertyName: p.PropertyName,
				Value:        p.PropertyValue,
			})
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return &summary, nil
}

// Leaderboard returns all teams by cash descending, team_id ascending on ties.
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Order("cash DESC, team_id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, classify(err)
	}

	rows := make([]LeaderboardRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, LeaderboardRow{TeamID: t.TeamID, TeamName: t.TeamName, Cash: t.Cash})
	}
	return rows, nil
}

// AddPropertiesBulk seeds the fixed board catalog. Keyed by property name;
// re-running inserts nothing and never duplicates rows.
func (s *Service) AddPropertiesBulk(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range propertyCatalog {
			property := models.Property{
				PropertyName:  entry.name,
				PropertyValue: entry.decimalValue(),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&property).Error; err != nil {
				return err
			}
		}
		if err := appendEntry(tx, models.OpSeedProperties, nil, nil, nil, decimal.Zero); err != nil {
			return err
		}
		return tx.Order("LOWER(property_name) ASC").Find(&properties).Error
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpSeedProperties, At: time.Now()})
	return properties, nil
}

// EditTeam overwrites team fields directly, bypassing the normal operation
// checks. Renumbering validates the new id is free and carries property
// ownership along. When cash is overwritten without an explicit total, the
// total is recomputed so the stored invariant still holds.
func (s *Service) EditTeam(ctx context.Context, teamID uint, edit TeamEdit) (*models.Team, error) {
	var team models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, "team_id = ?", teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("team %d does not exist", teamID)
			}
			return err
		}

		currentID := teamID
		if edit.NewTeamID != nil && *edit.NewTeamID != teamID {
			newID := *edit.NewTeamID
			if newID == 0 {
				return Validationf("team id must be a positive integer")
			}
			var count int64
			if err := tx.Model(&models.Team{}).Where("team_id = ?", newID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return Conflictf("team id %d is already taken", newID)
			}
			if err := tx.Model(&models.Team{}).Where("team_id = ?", teamID).
				Update("team_id", newID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Property{}).Where("owner_team_id = ?", teamID).
				Update("owner_team_id", newID).Error; err != nil {
				return err
			}
			currentID = newID
		}

		updates := map[string]interface{}{}
		if edit.TeamName != nil {
			updates["team_name"] = *edit.TeamName
		}
		if edit.Cash != nil {
			updates["cash"] = *edit.Cash
		}
		if edit.TotalCash != nil {
			updates["total_cash"] = *edit.TotalCash
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Team{}).Where("team_id = ?", currentID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if edit.Cash != nil && edit.TotalCash == nil {
			if err := recomputeTotals(tx, currentID); err != nil {
				return err
			}
		}

		if err := appendEntry(tx, models.OpEditTeam, &currentID, nil, nil, decimal.Zero); err != nil {
			return err
		}
		// Fresh destination: First would treat the stale primary key already
		// loaded into team as an extra query condition.
		var updated models.Team
		if err := tx.First(&updated, "team_id = ?", currentID).Error; err != nil {
			return err
		}
		team = updated
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	publish(Event{Operation: models.OpEditTeam, TeamID: team.TeamID, At: time.Now()})
	return &team, nil
}

// RemoveTeam deletes a team and releases everything it owned back to the bank.
func (s *Service) RemoveTeam(ctx context.Context, teamID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Property{}).Where("owner_team_id = ?", teamID).
			Update("owner_team_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, "team_id = ?", teamID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFoundf("team %d does not exist", teamID)
		}
		return appendEntry(tx, models.OpRemoveTeam, &teamID, nil, nil, decimal.Zero)
	})
	if err != nil {
		return classify(err)
	}

	publish(Event{Operation: models.OpRemoveTeam, TeamID: teamID, At: time.Now()})
	return nil
}

// ResetAllTables wipes the game: history, properties, and teams are cleared
// and the default teams are reseeded at starting cash. Irreversible.
func (s *Service) ResetAllTables(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Property{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Team{}).Error; err != nil {
			return err
		}
		return database.SeedTeams(tx, s.cfg.TeamCount, s.cfg.StartingCash)
	})
	if err != nil {
		return classify(err)
	}

	publish(Event{Operation: models.OpReset, At: time.Now()})
	return nil
}

// History returns the full mutation log, newest first.
func (s *Service) History(ctx context.Context) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

// debitCash decrements a team's cash in the database. With negative balances
// disabled the WHERE clause also requires sufficient funds, so the check and
// the decrement are one atomic statement.
func (s *Service) debitCash(tx *gorm.DB, teamID uint, amount decimal.Decimal) error {
	query := tx.Model(&models.Team{}).Where("team_id = ?", teamID)
	if !s.cfg.AllowNegativeCash {
		query = query.Where("cash >= ?", amount)
	}
	res := query.Update("cash", gorm.Expr("cash - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Team{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return NotFoundf("team %d does not exist", teamID)
		}
		return Validationf("team %d does not have enough cash", teamID)
	}
	return nil
}

func creditCash(tx *gorm.DB, teamID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.Team{}).Where("team_id = ?", teamID).
		Update("cash", gorm.Expr("cash + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("team %d does not exist", teamID)
	}
	return nil
}

// recomputeTotals rewrites total_cash = cash + owned property values for the
// given teams, inside the caller's transaction.
func recomputeTotals(tx *gorm.DB, teamIDs ...uint) error {
	return tx.Exec(`
		UPDATE teams
		SET total_cash = cash + COALESCE(
			(SELECT SUM(property_value) FROM properties WHERE properties.owner_team_id = teams.team_id), 0)
		WHERE team_id IN ?`, teamIDs).Error
}

func appendEntry(tx *gorm.DB, operation string, teamID, otherTeamID *uint, propertyName *string, amount decimal.Decimal) error {
	entry := models.LedgerEntry{
		ID:           uuid.New(),
		Operation:    operation,
		TeamID:       teamID,
		OtherTeamID:  otherTeamID,
		PropertyName: propertyName,
		Amount:       amount,
	}
	return tx.Create(&entry).Error
}

// transactionRO runs fn in a read-only repeatable-read transaction on
// Postgres, giving the multi-query reads a single snapshot. SQLite
// transactions are serializable already and its driver rejects explicit
// isolation options, so there the plain transaction suffices.
func (s *Service) transactionRO(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	if s.db.Dialector.Name() == "postgres" {
		return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return db.Transaction(fn)
}
