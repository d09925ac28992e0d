// Command mint-token creates credentials for a deployment: a JWT access
// token for API calls, or a bcrypt hash of an admin key for the
// AUTH_ADMIN_KEY_HASH setting.
//
// Usage:
//
//	mint-token --user=<uuid>            # prints a JWT for that user
//	mint-token --hash-admin-key=<key>   # prints a bcrypt hash for config
//
// Requires the AUTH_JWT_SECRET environment variable when minting tokens.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/auth"
)

func main() {
	user := flag.String("user", "", "user UUID to mint a token for")
	adminKey := flag.String("hash-admin-key", "", "admin key to hash for config")
	ttl := flag.Duration("ttl", 15*time.Minute, "token lifetime")
	flag.Parse()

	if *adminKey != "" {
		hash, err := auth.HashAdminKey(*adminKey)
		if err != nil {
			log.Fatalf("hash admin key: %v", err)
		}
		fmt.Println(hash)
		return
	}

	if *user == "" {
		fmt.Fprintln(os.Stderr, "Usage: mint-token --user=<uuid> | --hash-admin-key=<key>")
		os.Exit(1)
	}

	userID, err := uuid.Parse(*user)
	if err != nil {
		log.Fatalf("parse user id: %v", err)
	}

	secret := os.Getenv("AUTH_JWT_SECRET")
	if len(secret) < 32 {
		log.Fatal("AUTH_JWT_SECRET must be set and at least 32 characters")
	}
	issuer := os.Getenv("AUTH_JWT_ISSUER")
	if issuer == "" {
		issuer = "mybooks"
	}

	mgr := auth.NewJWTManager(secret, issuer, *ttl)
	token, err := mgr.GenerateAccessToken(userID)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Println(token)
}
