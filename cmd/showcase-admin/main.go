// Package main is the entry point for showcase-admin, the operator CLI that manages
// accounts and loads seed data directly against the platform's MongoDB and Redis.
package main

import (
	"log"
	"os"

	"showcase-platform/cmd/showcase-admin/internal/commands"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "showcase-admin",
		Short: "Administration tool for the Student Showcase Platform",
		Long: `showcase-admin manages platform accounts and seed data.

It reads the same environment as the API server:
- MONGODB_URI, DATABASE_NAME
- REDIS_URL or REDIS_HOST (required by "user unlock" when lockouts are kept in Redis)
- BCRYPT_COST`,
		SilenceUsage: true,
	}

	commands.InitUserCommands(rootCmd)
	commands.InitSeedCommand(rootCmd)

	return rootCmd.Execute()
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
