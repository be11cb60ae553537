package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository/postgres"
)

// Applies the SQL files in migrations/ in lexical order. Migrations are
// written idempotent (IF NOT EXISTS), so re-running is safe.
func main() {
	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	flag.Parse()

	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := postgres.NewAdminConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal("Failed to read migrations directory", zap.String("dir", *dir), zap.Error(err))
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.Fatal("No migration files found", zap.String("dir", *dir))
	}

	for _, name := range files {
		path := filepath.Join(*dir, name)
		sqlBytes, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("Failed to read migration", zap.String("file", name), zap.Error(err))
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			logger.Fatal("Migration failed", zap.String("file", name), zap.Error(err))
		}
		logger.Info("Migration applied", zap.String("file", name))
	}

	fmt.Printf("Applied %d migrations\n", len(files))
}
