package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository/postgres"
)

// Requeues failed dispatch jobs so the worker retries them. Use after fixing
// a provider outage or bad credentials.
func main() {
	limit := flag.Int("limit", 50, "max failed jobs to requeue")
	dryRun := flag.Bool("dry-run", false, "list failed jobs without requeuing")
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

	repos := postgres.NewRepositories(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	jobs, err := repos.DispatchJob.ListByStatus(ctx, domain.JobStatusFailed, *limit)
	if err != nil {
		logger.Fatal("Failed to list failed jobs", zap.Error(err))
	}
	if len(jobs) == 0 {
		fmt.Println("No failed dispatch jobs")
		return
	}

	requeued := 0
	for _, job := range jobs {
		lastError := "-"
		if job.LastError != nil {
			lastError = *job.LastError
		}
		fmt.Printf("%s  order=%s  attempts=%d  error=%s\n",
			job.ID, job.OrderID, job.Attempts, lastError)
		if *dryRun {
			continue
		}
		if err := repos.DispatchJob.Requeue(ctx, job.ID); err != nil {
			logger.Error("Failed to requeue job", zap.String("job_id", job.ID.String()), zap.Error(err))
			continue
		}
		requeued++
	}

	if *dryRun {
		fmt.Printf("\n%d failed jobs (dry run, nothing requeued)\n", len(jobs))
		return
	}
	fmt.Printf("\nRequeued %d of %d failed jobs\n", requeued, len(jobs))
}
