package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 8, cfg.TeamCount)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(1500)))
	assert.True(t, cfg.AllowNegativeCash)
	assert.False(t, cfg.PurchaseDebitsCash)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TEAM_COUNT", "4")
	t.Setenv("STARTING_CASH", "2000")
	t.Setenv("ALLOW_NEGATIVE_CASH", "false")
	t.Setenv("PURCHASE_DEBITS_CASH", "true")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 4, cfg.TeamCount)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(2000)))
	assert.False(t, cfg.AllowNegativeCash)
	assert.True(t, cfg.PurchaseDebitsCash)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TEAM_COUNT", "many")
	t.Setenv("STARTING_CASH", "lots")
	t.Setenv("ALLOW_NEGATIVE_CASH", "maybe")

	cfg := Load()

	assert.Equal(t, 8, cfg.TeamCount)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(1500)))
	assert.True(t, cfg.AllowNegativeCash)
}
