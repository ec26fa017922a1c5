package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aguilarm/scrumd/internal/models"
)

var DB *gorm.DB

// Initialize sets up the database connection at the default location and
// runs migrations.
func Initialize() error {
	dbPath, err := getDatabasePath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	return InitializeAt(dbPath)
}

// InitializeAt opens the database at an explicit path. Tests point this at
// a temp directory.
func InitializeAt(dbPath string) error {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db

	if err := runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// getDatabasePath returns the path to the SQLite database file
func getDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".scrumd", "scrumd.db"), nil
}

// runMigrations creates/updates the database schema and seeds the default
// roles.
func runMigrations() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Role{},
		&models.ProjectMember{},
		&models.Holiday{},
		&models.UserStoryType{},
		&models.Sprint{},
		&models.SprintMember{},
		&models.UserStory{},
		&models.UserStoryTask{},
		&models.UserStoryHistory{},
	)
	if err != nil {
		return err
	}
	return seedDefaultRoles()
}

// seedDefaultRoles creates the global roles every project relies on.
func seedDefaultRoles() error {
	for _, name := range []string{models.RoleScrumMaster, models.RoleProductOwner, models.RoleDeveloper} {
		var role models.Role
		err := DB.Where("name = ? AND project_id IS NULL", name).First(&role).Error
		if err == nil {
			continue
		}
		role = models.Role{Name: name, Description: name}
		if err := DB.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
