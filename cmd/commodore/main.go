package main

import (
	"fmt"
	"log"
	"os"

	"github.com/commodore-dev/commodore/db"
	"github.com/commodore-dev/commodore/internal/auth"
	"github.com/commodore-dev/commodore/internal/config"
	"github.com/commodore-dev/commodore/internal/handlers"
	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/router"
	"github.com/commodore-dev/commodore/internal/storage"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	app := &cli.App{
		Name:  "commodore",
		Usage: "Club membership, event and document management server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the API server",
				Action: serve,
			},
			{
				Name:   "init-roles",
				Usage:  "Create the default roles if they are missing",
				Action: initRoles,
			},
			{
				Name:  "create-user",
				Usage: "Create a club user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "first-name", Required: true},
					&cli.StringFlag{Name: "last-name", Required: true},
					&cli.StringFlag{Name: "role", Value: "member"},
					&cli.BoolFlag{Name: "superuser"},
				},
				Action: createUser,
			},
			{
				Name:   "list-users",
				Usage:  "List club users",
				Action: listUsers,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads the environment and connects to the database. A missing .env
// file is fine in production where the environment is set directly.
func setup() (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if err := auth.SetJWTSecret(cfg.JWTSecret); err != nil {
		return cfg, err
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return cfg, fmt.Errorf("connect database: %w", err)
	}

	return cfg, nil
}

func serve(ctx *cli.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	if err := db.MigrateDatabase(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := db.SeedRoles(db.DB); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageDir)
	if err != nil {
		return err
	}
	handlers.DocumentStore = store

	r := router.NewRouter()
	return r.Run(":" + cfg.Port)
}

func initRoles(ctx *cli.Context) error {
	if _, err := setup(); err != nil {
		return err
	}
	if err := db.MigrateDatabase(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := db.SeedRoles(db.DB); err != nil {
		return err
	}
	log.Println("Default roles are in place")
	return nil
}

func createUser(ctx *cli.Context) error {
	if _, err := setup(); err != nil {
		return err
	}

	roleName := ctx.String("role")
	var role models.Role
	if err := db.DB.Where("name = ?", roleName).First(&role).Error; err != nil {
		return fmt.Errorf("role %q not found: %w", roleName, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(ctx.String("password")), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.ClubUser{
		Email:        ctx.String("email"),
		PasswordHash: string(hash),
		FirstName:    ctx.String("first-name"),
		LastName:     ctx.String("last-name"),
		RoleID:       &role.ID,
		IsActive:     true,
		IsSuperuser:  ctx.Bool("superuser"),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	log.Printf("Created user %s (id %d, role %s)", user.Email, user.ID, role.Name)
	return nil
}

func listUsers(ctx *cli.Context) error {
	if _, err := setup(); err != nil {
		return err
	}

	var users []models.ClubUser
	if err := db.DB.Preload("Role").Order("last_name, first_name").Find(&users).Error; err != nil {
		return err
	}

	for i := range users {
		user := &users[i]
		roleName := "none"
		if user.Role != nil {
			roleName = user.Role.Name
		}
		status := "active"
		if !user.IsActive {
			status = "inactive"
		}
		fmt.Printf("%d\t%s\t%s\t%s\t%s\n", user.ID, user.Email, user.FullName(), roleName, status)
	}

	return nil
}
