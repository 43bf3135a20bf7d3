// Package main provides a simple tool to generate admin bearer tokens.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/auth"
)

func main() {
	email := flag.String("email", "admin@localhost", "Admin email for the token")
	role := flag.String("role", "admin", "Role claim (admin or superadmin)")
	secret := flag.String("secret", "", "JWT secret (or set ADMIN_JWT_SECRET env var)")
	expiry := flag.Duration("expiry", 24*time.Hour, "Token expiry duration")
	flag.Parse()

	jwtSecret := *secret
	if jwtSecret == "" {
		jwtSecret = os.Getenv("ADMIN_JWT_SECRET")
	}
	if jwtSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT secret required. Use -secret flag or set ADMIN_JWT_SECRET env var")
		fmt.Fprintln(os.Stderr, "Example: go run ./cmd/gentoken -secret 'your-secret-at-least-32-chars-long'")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		fmt.Fprintln(os.Stderr, "Error: JWT secret must be at least 32 characters")
		os.Exit(1)
	}

	token, err := auth.GenerateAdminToken([]byte(jwtSecret), *email, *role, *expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
