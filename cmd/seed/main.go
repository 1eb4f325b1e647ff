package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/application"
	pginfra "github.com/oksasatya/agency-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/agency-identity/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	name := flag.String("name", "Administrator", "admin full name")
	phone := flag.String("phone", "0900000000", "admin phone")
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()
	if len(*password) < 8 {
		log.Fatal("-password must be at least 8 characters")
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	id, err := pginfra.UpsertAdmin(context.Background(), db, pginfra.AdminSeed{
		FullName:     *name,
		Phone:        application.NormalizePhone(*phone, cfg.PhoneCountryCode),
		Email:        application.NormalizeEmail(*email),
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	log.Printf("seeded admin: public_id=%s email=%s", id, *email)
}
