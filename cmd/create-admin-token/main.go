package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
)

// Mints an admin JWT for the back-office endpoints. The email's domain must
// be in ADMIN_ALLOWED_EMAIL_DOMAINS or the API will reject the token anyway.
func main() {
	email := flag.String("email", "", "admin email to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin-token -email admin@example.com [-ttl 24h]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Admin.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is not set")
		os.Exit(1)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": *email,
		"iat":   now.Unix(),
		"exp":   now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(cfg.Admin.JWTSecret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
