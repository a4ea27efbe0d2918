package db

import (
	"errors"

	"github.com/commodore-dev/commodore/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Migrate creates any missing tables. Shared with the test database setup.
func Migrate(database *gorm.DB) error {
	tables := []interface{}{
		&models.Role{},
		&models.MemberType{},
		&models.MemberTypeRelationship{},
		&models.ClubUser{},
		&models.EventCategory{},
		&models.Event{},
		&models.EventContact{},
		&models.EventRegistration{},
		&models.EventRegistrationFee{},
		&models.EventGuest{},
		&models.EventActionLog{},
		&models.DocumentFolder{},
		&models.DocumentFile{},
		&models.FolderPermission{},
	}

	migrator := database.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := database.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedRoles creates or completes the four default roles.
func SeedRoles(database *gorm.DB) error {
	defaults := []models.Role{
		{
			Name:          "viewer",
			Description:   "Can view events and calendar only",
			CanViewEvents: true,
		},
		{
			Name:          "member",
			Description:   "Can view events and manage own profile",
			CanViewEvents: true,
		},
		{
			Name:                "editor",
			Description:         "Can view and create/edit/delete events",
			CanViewEvents:       true,
			CanCreateEvents:     true,
			CanEditEvents:       true,
			CanDeleteEvents:     true,
			CanManageCategories: true,
		},
		{
			Name:                "admin",
			Description:         "Full access to all features",
			CanViewEvents:       true,
			CanCreateEvents:     true,
			CanEditEvents:       true,
			CanDeleteEvents:     true,
			CanManageCategories: true,
			CanManageUsers:      true,
			CanAccessAdmin:      true,
		},
	}

	for _, role := range defaults {
		var existing models.Role
		err := database.Where("name = ?", role.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := database.Create(&role).Error; err != nil {
			return err
		}
	}

	return nil
}
