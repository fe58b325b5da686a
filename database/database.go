package database

import (
	"fmt"

	"gamebank/config"
	"gamebank/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	return Seed(DB, cfg)
}

func GetDB() *gorm.DB {
	return DB
}

// Migrate creates or updates the schema for all ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Team{},
		&models.Property{},
		&models.LedgerEntry{},
		&models.Banker{},
	)
}

// Seed provisions the default banker account and, when the team table is
// empty, the fixed set of teams at starting cash. Safe to call repeatedly.
func Seed(db *gorm.DB, cfg *config.Config) error {
	if err := seedBanker(db, cfg.BankerUsername, cfg.BankerPassword); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.Team{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return SeedTeams(db, cfg.TeamCount, cfg.StartingCash)
}

// SeedTeams creates teams 1..count with the given starting cash. Net worth
// starts equal to cash since no properties are owned yet.
func SeedTeams(db *gorm.DB, count int, startingCash decimal.Decimal) error {
	for i := 1; i <= count; i++ {
		team := models.Team{
			TeamID:    uint(i),
			TeamName:  fmt.Sprintf("Team %d", i),
			Cash:      startingCash,
			TotalCash: startingCash,
		}
		if err := db.Create(&team).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedBanker(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&models.Banker{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	banker := models.Banker{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&banker).Error; err != nil {
		return err
	}

	log.Infof("Default banker account created (username: %s)", username)
	return nil
}
