package database

import (
	"log"

	"snapbooth/config"
	"snapbooth/internal/domain"
	"snapbooth/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models. Wallet tables are
// legacy (settlement is manual-payout only) but stay migrated so historical
// balances remain readable.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Frame{},
		&models.BoothSession{},
		&models.SessionPhoto{},
		&models.Transaction{},
		&models.MonthlyEarning{},
		&models.Voucher{},
		&models.Subscription{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Notification{},
		&models.SystemSetting{},
	)
}

// SeedAdmin creates the platform admin account on first boot. Skipped when
// ADMIN_PASSWORD is unset or an admin already exists.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	if cfg.Password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] admin password hash failed: %v", err)
		return
	}
	admin := models.User{
		Name:         "Admin",
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[Seed] admin create failed: %v", err)
		return
	}
	log.Printf("[Seed] admin account created: %s", cfg.Email)
}
