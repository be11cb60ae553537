package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Generates a service-account key for the admin API and prints the bcrypt
// hash to store in ADMIN_API_KEY_HASH. Pass -key to hash an existing key
// instead of generating one.
func main() {
	key := flag.String("key", "", "hash this key instead of generating a new one")
	flag.Parse()

	apiKey := *key
	if apiKey == "" {
		raw := make([]byte, 24)
		if _, err := rand.Read(raw); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate key: %v\n", err)
			os.Exit(1)
		}
		apiKey = "gck_" + hex.EncodeToString(raw)
	}

	// Cost 10 keeps per-request verification cheap; these are long random
	// keys, not passwords
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash key: %v\n", err)
		os.Exit(1)
	}

	if *key == "" {
		fmt.Printf("API key (share with the caller, shown once):\n  %s\n\n", apiKey)
	}
	fmt.Printf("ADMIN_API_KEY_HASH=%s\n", string(hash))
}
