package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository/postgres"
)

// Prints recent orders with their payment and fulfillment state. Handy for
// checking what the dispatcher has and hasn't picked up.
func main() {
	statusFlag := flag.String("status", "", "filter by fulfillment status (pending, processing, shipped, delivered, failed)")
	limit := flag.Int("limit", 25, "max orders to list")
	flag.Parse()

	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	var status *domain.FulfillmentStatus
	if *statusFlag != "" {
		s := domain.FulfillmentStatus(*statusFlag)
		if !s.IsValid() {
			logger.Fatal("Invalid status filter", zap.String("status", *statusFlag))
		}
		status = &s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := repos.Order.List(ctx, status, *limit, 0)
	if err != nil {
		logger.Fatal("Failed to list orders", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tEXTERNAL\tTOTAL\tPAYMENT\tFULFILLMENT\tPROVIDER\tCREATED")
	for _, o := range orders {
		external := "-"
		if o.ExternalOrderID != nil {
			external = *o.ExternalOrderID
		}
		provider := "-"
		if o.FulfillmentProvider != nil {
			provider = *o.FulfillmentProvider
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\t%s\t%s\t%s\n",
			o.OrderNumber, external, o.Total, o.Currency,
			o.PaymentStatus, o.FulfillmentStatus, provider,
			o.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("\n%d orders\n", len(orders))
}
