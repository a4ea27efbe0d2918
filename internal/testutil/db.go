package testutil

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory database with the default roles seeded.
// The global db.DB is pointed at it for the duration of the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// An in-memory sqlite database exists per connection.
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := db.SeedRoles(database); err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	previous := db.DB
	db.DB = database
	t.Cleanup(func() {
		db.DB = previous
		sqlDB.Close()
	})

	return database
}

// RoleByName fetches one of the seeded roles.
func RoleByName(t *testing.T, database *gorm.DB, name string) *models.Role {
	t.Helper()

	var role models.Role
	if err := database.Where("name = ?", name).First(&role).Error; err != nil {
		t.Fatalf("load role %q: %v", name, err)
	}
	return &role
}

// CreateUser creates an active user with the named role and the password
// "password123".
func CreateUser(t *testing.T, database *gorm.DB, roleName string) *models.ClubUser {
	t.Helper()

	role := RoleByName(t, database, roleName)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.ClubUser{
		Email:        gofakeit.Email(),
		PasswordHash: string(hash),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		RoleID:       &role.ID,
		IsActive:     true,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	user.Role = role
	return &user
}

// CreateMemberType creates an active member type.
func CreateMemberType(t *testing.T, database *gorm.DB, name string, canBeParent, canBeChild bool) *models.MemberType {
	t.Helper()

	memberType := models.MemberType{
		Name:        name,
		IsActive:    true,
		CanBeParent: canBeParent,
		CanBeChild:  canBeChild,
	}
	if err := database.Create(&memberType).Error; err != nil {
		t.Fatalf("create member type %q: %v", name, err)
	}
	return &memberType
}

// AssignMemberTypes replaces the user's member types.
func AssignMemberTypes(t *testing.T, database *gorm.DB, user *models.ClubUser, memberTypes ...*models.MemberType) {
	t.Helper()

	assigned := make([]models.MemberType, 0, len(memberTypes))
	for _, mt := range memberTypes {
		assigned = append(assigned, *mt)
	}
	if err := database.Model(user).Association("MemberTypes").Replace(assigned); err != nil {
		t.Fatalf("assign member types: %v", err)
	}
	user.MemberTypes = assigned
}

// CreateFolder creates a document folder.
func CreateFolder(t *testing.T, database *gorm.DB, name string, parentID *uint) *models.DocumentFolder {
	t.Helper()

	folder := models.DocumentFolder{Name: name, ParentID: parentID}
	if err := database.Create(&folder).Error; err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return &folder
}
