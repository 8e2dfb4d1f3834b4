package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/config"
	"github.com/krib/krib-api/internal/domain/user"
	"github.com/krib/krib-api/internal/pkg/database"
	"github.com/krib/krib-api/internal/pkg/password"
)

// Bootstraps an admin account. Intended for initial setup and staging
// environments; refuses to overwrite an existing user.
func main() {
	email := flag.String("email", "", "admin email")
	pwd := flag.String("password", "", "admin password")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	if *email == "" || *pwd == "" {
		log.Fatal("both -email and -password are required")
	}
	if len(*pwd) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := user.NewRepository(db)

	existing, err := repo.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}
	if existing != nil {
		log.Fatalf("User %s already exists (role %s)", *email, existing.Role)
	}

	hash, err := password.Hash(*pwd)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        *email,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         user.RoleAdmin,
		Status:       user.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.Create(ctx, u); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Created admin %s (%s)\n", u.Email, u.ID)
}
