// Command admin-token prints a signed token for the admin endpoints.
//
//	JWT_SECRET=... go run ./cmd/admin-token -subject ops -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"milty-server/internal/auth"
	"milty-server/internal/shared/config"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	role := flag.String("role", auth.RoleAdmin, "token role")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_EXPIRATION_HOURS)")
	flag.Parse()

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig.Auth

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.TokenExpiration
	}

	token, err := auth.GenerateJWT(cfg.JWTSecret, *subject, *role, lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Now().Add(lifetime).Format(time.RFC3339))
}
