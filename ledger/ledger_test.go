package ledger

import (
	"context"
	"sync"
	"testing"

	"gamebank/config"
	"gamebank/database"
	"gamebank/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, mutate func(cfg *config.Config)) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: database is one database per connection; pin the pool
	// to a single connection so every query sees the same data.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AllowNegativeCash: true,
		TeamCount:         8,
		StartingCash:      decimal.NewFromInt(1500),
	}
	if mutate != nil {
		mutate(cfg)
	}

	require.NoError(t, database.SeedTeams(db, cfg.TeamCount, cfg.StartingCash))
	return NewService(db, cfg)
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.NewFromInt(expected)), "expected %d, got %s", expected, actual)
}

// assertInvariant checks total_cash == cash + sum of owned property values.
func assertInvariant(t *testing.T, s *Service, teamID uint) {
	t.Helper()

	var team models.Team
	require.NoError(t, s.db.First(&team, "team_id = ?", teamID).Error)

	var properties []models.Property
	require.NoError(t, s.db.Where("owner_team_id = ?", teamID).Find(&properties).Error)

	expected := team.Cash
	for _, p := range properties {
		expected = expected.Add(p.PropertyValue)
	}
	assert.True(t, team.TotalCash.Equal(expected),
		"team %d: total_cash %s != cash %s + properties (%s)", teamID, team.TotalCash, team.Cash, expected)
}

func TestAddCash(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	team, err := s.AddCash(ctx, 1, decimal.NewFromInt(200))
	require.NoError(t, err)
	assertDecimal(t, 1700, team.Cash)
	assertDecimal(t, 1700, team.TotalCash)
	assertInvariant(t, s, 1)
}

func TestAddCashRejectsNonPositiveAmount(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddCash(ctx, 1, decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = s.AddCash(ctx, 1, decimal.NewFromInt(-50))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAddCashUnknownTeam(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.AddCash(context.Background(), 99, decimal.NewFromInt(100))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NotEmpty(t, err.Error())
}

func TestRemoveCashAllowsDebt(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	// Seed scenario: 1500 + 200 - 2000 = -300.
	_, err := s.AddCash(ctx, 1, decimal.NewFromInt(200))
	require.NoError(t, err)

	team, err := s.RemoveCash(ctx, 1, decimal.NewFromInt(2000))
	require.NoError(t, err)
	assertDecimal(t, -300, team.Cash)
	assertInvariant(t, s, 1)
}

func TestRemoveCashCappedWhenDebtDisabled(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.AllowNegativeCash = false
	})
	ctx := context.Background()

	_, err := s.RemoveCash(ctx, 1, decimal.NewFromInt(2000))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	// The failed debit left the balance untouched.
	team, err := s.TeamSummary(ctx, 1)
	require.NoError(t, err)
	assertDecimal(t, 1500, team.Cash)
}

func TestAddThenRemoveRestoresBalance(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	amount := decimal.NewFromInt(125)
	_, err := s.AddCash(ctx, 2, amount)
	require.NoError(t, err)
	team, err := s.RemoveCash(ctx, 2, amount)
	require.NoError(t, err)
	assertDecimal(t, 1500, team.Cash)
}

func TestTransferCash(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	result, err := s.TransferCash(ctx, 3, 1, decimal.NewFromInt(400))
	require.NoError(t, err)
	assertDecimal(t, 1100, result.From.Cash)
	assertDecimal(t, 1900, result.To.Cash)

	// Conservation: the pair's combined cash is unchanged.
	assertDecimal(t, 3000, result.From.Cash.Add(result.To.Cash))
	assertInvariant(t, s, 1)
	assertInvariant(t, s, 3)
}

func TestTransferCashRejectsSameTeam(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.TransferCash(context.Background(), 1, 1, decimal.NewFromInt(100))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestTransferCashUnknownDestinationRollsBack(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.TransferCash(ctx, 1, 99, decimal.NewFromInt(100))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	// The debit must not survive the failed credit.
	summary, err := s.TeamSummary(ctx, 1)
	require.NoError(t, err)
	assertDecimal(t, 1500, summary.Cash)
}

func TestConcurrentAddCashLosesNoUpdate(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.AddCash(ctx, 1, decimal.NewFromInt(10))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	summary, err := s.TeamSummary(ctx, 1)
	require.NoError(t, err)
	assertDecimal(t, 1600, summary.Cash)
}

func TestPurchaseProperty(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)

	result, err := s.PurchaseProperty(ctx, "Boardwalk", 1)
	require.NoError(t, err)
	require.NotNil(t, result.Property.OwnerTeamID)
	assert.Equal(t, uint(1), *result.Property.OwnerTeamID)

	// Cash untouched by default; net worth picks up the property value.
	assertDecimal(t, 1500, result.Team.Cash)
	assertDecimal(t, 1900, result.Team.TotalCash)
	assertInvariant(t, s, 1)

	// Purchased properties leave the available list.
	available, err := s.AvailableProperties(ctx)
	require.NoError(t, err)
	for _, p := range available {
		assert.NotEqual(t, "Boardwalk", p.PropertyName)
	}
}

func TestPurchasePropertyAlreadyOwned(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)

	_, err = s.PurchaseProperty(ctx, "Park Place", 1)
	require.NoError(t, err)

	_, err = s.PurchaseProperty(ctx, "Park Place", 2)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestPurchasePropertyUnknown(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.PurchaseProperty(context.Background(), "Sesame Street", 1)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPurchasePropertyDebitsCashWhenConfigured(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.PurchaseDebitsCash = true
	})
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)

	result, err := s.PurchaseProperty(ctx, "Boardwalk", 1)
	require.NoError(t, err)
	assertDecimal(t, 1100, result.Team.Cash)
	// Net worth is unchanged: the cash became property value.
	assertDecimal(t, 1500, result.Team.TotalCash)
	assertInvariant(t, s, 1)
}

func TestRemovePropertyFromTeam(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	_, err = s.PurchaseProperty(ctx, "Boardwalk", 1)
	require.NoError(t, err)

	result, err := s.RemovePropertyFromTeam(ctx, "Boardwalk", 1)
	require.NoError(t, err)
	assert.Nil(t, result.Property.OwnerTeamID)
	assertDecimal(t, 1500, result.Team.TotalCash)
	assertInvariant(t, s, 1)
}

func TestRemovePropertyNotOwnedByTeam(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	_, err = s.PurchaseProperty(ctx, "Boardwalk", 1)
	require.NoError(t, err)

	_, err = s.RemovePropertyFromTeam(ctx, "Boardwalk", 2)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAvailablePropertiesOrdering(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	for _, p := range []models.Property{
		{PropertyName: "boardwalk south", PropertyValue: decimal.NewFromInt(100)},
		{PropertyName: "Atlantic Annex", PropertyValue: decimal.NewFromInt(100)},
		{PropertyName: "Baltic Yard", PropertyValue: decimal.NewFromInt(100)},
	} {
		require.NoError(t, s.db.Create(&p).Error)
	}

	available, err := s.AvailableProperties(ctx)
	require.NoError(t, err)
	require.Len(t, available, 3)
	assert.Equal(t, "Atlantic Annex", available[0].PropertyName)
	assert.Equal(t, "Baltic Yard", available[1].PropertyName)
	assert.Equal(t, "boardwalk south", available[2].PropertyName)
}

func TestTeamSummary(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	_, err = s.PurchaseProperty(ctx, "Boardwalk", 1)
	require.NoError(t, err)
	_, err = s.PurchaseProperty(ctx, "Baltic Avenue", 1)
	require.NoError(t, err)

	summary, err := s.TeamSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), summary.TeamID)
	assert.Equal(t, "Team 1", summary.TeamName)
	assertDecimal(t, 1500, summary.Cash)
	assertDecimal(t, 1960, summary.TotalCash)
	require.Len(t, summary.OwnedProperties, 2)
	assert.Equal(t, "Baltic Avenue", summary.OwnedProperties[0].PropertyName)
	assertDecimal(t, 60, summary.OwnedProperties[0].Value)
	assert.Equal(t, "Boardwalk", summary.OwnedProperties[1].PropertyName)
}

func TestTeamSummaryUnknownTeam(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.TeamSummary(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestLeaderboardOrdering(t *testing.T) {
	s := newTestService(t, func(cfg *config.Config) {
		cfg.TeamCount = 4
	})
	ctx := context.Background()

	_, err := s.AddCash(ctx, 3, decimal.NewFromInt(300)) // 1800
	require.NoError(t, err)
	_, err = s.RemoveCash(ctx, 2, decimal.NewFromInt(300)) // 1200
	require.NoError(t, err)

	rows, err := s.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, uint(3), rows[0].TeamID)
	// Teams 1 and 4 tie at 1500; team_id breaks the tie.
	assert.Equal(t, uint(1), rows[1].TeamID)
	assert.Equal(t, uint(4), rows[2].TeamID)
	assert.Equal(t, uint(2), rows[3].TeamID)
}

func TestAddPropertiesBulkIsIdempotent(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	first, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	second, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))

	var count int64
	require.NoError(t, s.db.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(len(first)), count)
}

func TestEditTeam(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	name := "Sharks"
	cash := decimal.NewFromInt(5000)
	team, err := s.EditTeam(ctx, 1, TeamEdit{TeamName: &name, Cash: &cash})
	require.NoError(t, err)
	assert.Equal(t, "Sharks", team.TeamName)
	assertDecimal(t, 5000, team.Cash)
	// Total follows the overwritten cash when not explicitly set.
	assertDecimal(t, 5000, team.TotalCash)
}

func TestEditTeamRenumber(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	_, err = s.PurchaseProperty(ctx, "Boardwalk", 1)
	require.NoError(t, err)

	newID := uint(9)
	team, err := s.EditTeam(ctx, 1, TeamEdit{NewTeamID: &newID})
	require.NoError(t, err)
	assert.Equal(t, uint(9), team.TeamID)

	// Ownership followed the renumber.
	summary, err := s.TeamSummary(ctx, 9)
	require.NoError(t, err)
	require.Len(t, summary.OwnedProperties, 1)
	assertInvariant(t, s, 9)
}

func TestEditTeamRenumberConflict(t *testing.T) {
	s := newTestService(t, nil)

	newID := uint(2)
	_, err := s.EditTeam(context.Background(), 1, TeamEdit{NewTeamID: &newID})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRemoveTeamReleasesProperties(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	_, err = s.PurchaseProperty(ctx, "Boardwalk", 2)
	require.NoError(t, err)

	require.NoError(t, s.RemoveTeam(ctx, 2))

	_, err = s.TeamSummary(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	available, err := s.AvailableProperties(ctx)
	require.NoError(t, err)
	found := false
	for _, p := range available {
		if p.PropertyName == "Boardwalk" {
			found = true
		}
	}
	assert.True(t, found, "released property should be available again")
}

func TestResetAllTables(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddPropertiesBulk(ctx)
	require.NoError(t, err)
	_, err = s.AddCash(ctx, 1, decimal.NewFromInt(999))
	require.NoError(t, err)

	require.NoError(t, s.ResetAllTables(ctx))

	summary, err := s.TeamSummary(ctx, 1)
	require.NoError(t, err)
	assertDecimal(t, 1500, summary.Cash)
	assert.Empty(t, summary.OwnedProperties)

	available, err := s.AvailableProperties(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	history, err := s.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryRecordsMutations(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.AddCash(ctx, 1, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = s.TransferCash(ctx, 1, 2, decimal.NewFromInt(50))
	require.NoError(t, err)

	history, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)

	operations := []string{history[0].Operation, history[1].Operation}
	assert.Contains(t, operations, models.OpAddCash)
	assert.Contains(t, operations, models.OpTransferCash)
	for _, entry := range history {
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", entry.ID.String())
	}
}
