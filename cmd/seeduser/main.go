// Command seeduser creates an operator account, or resets its password when it already exists.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"gameclub_backend/internal/config"
	"gameclub_backend/internal/database"
	"gameclub_backend/internal/models"
	"gameclub_backend/internal/repositories"
	"gameclub_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "account username")
	password := flag.String("password", "", "account password (min 8 characters)")
	role := flag.String("role", models.RoleAdmin, "role name: admin or staff")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal("-password is required and must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DSN(), database.Options{MaxOpenConns: 2})
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := database.ApplySchema(ctx, db, cfg.DBSchemaPath); err != nil {
		utils.LogError(err, "Failed to apply database schema")
		os.Exit(1)
	}

	repo := repositories.NewAuthRepository(db)
	r, err := repo.FindRoleByName(ctx, *role)
	if err != nil {
		utils.LogError(err, "Unknown role", map[string]interface{}{"role": *role})
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		utils.LogError(err, "Failed to hash password")
		os.Exit(1)
	}

	user := &models.User{Username: *username, RoleID: &r.ID}
	if _, err := repo.CreateUser(ctx, db, user, string(hash)); err != nil {
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			utils.LogError(err, "Failed to create user")
			os.Exit(1)
		}
		if err := repo.SetPassword(ctx, db, *username, string(hash)); err != nil {
			utils.LogError(err, "Failed to reset password")
			os.Exit(1)
		}
		utils.LogInfo("Password reset for existing user", map[string]interface{}{"username": *username})
		return
	}
	utils.LogInfo("User created", map[string]interface{}{"username": *username, "role": r.Name})
}
