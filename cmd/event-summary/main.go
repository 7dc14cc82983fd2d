package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ticketforge/ticketing/internal/domain"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/internal/service"
	"github.com/ticketforge/ticketing/pkg/config"
	"github.com/ticketforge/ticketing/pkg/database"
	"github.com/ticketforge/ticketing/pkg/logger"
)

// event-summary prints the booking and cancellation summary for one event.
//
//	event-summary -event <event-id>
func main() {
	eventID := flag.String("event", "", "event ID to summarize")
	envFile := flag.String("config", "", "optional path to an .env file")
	flag.Parse()

	if *eventID == "" {
		// Allow the ID as a bare positional argument too
		if flag.NArg() == 1 {
			*eventID = flag.Arg(0)
		} else {
			fmt.Fprintln(os.Stderr, "usage: event-summary -event <event-id>")
			os.Exit(2)
		}
	}

	var cfg *config.Config
	var err error
	if *envFile != "" {
		cfg, err = config.LoadWithPath(*envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{Level: "warn", ServiceName: "event-summary", Development: cfg.IsDevelopment()}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbCfg := &database.PostgresConfig{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.DBName,
		SSLMode:        cfg.Database.SSLMode,
		MaxConns:       2,
		MinConns:       1,
		ConnectTimeout: 5 * time.Second,
		MaxRetries:     1,
		RetryInterval:  time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	pool := db.Pool()
	svc := service.NewEventService(
		repository.NewPostgresEventRepository(pool),
		repository.NewPostgresTicketRepository(pool),
	)

	summary, err := svc.Summary(ctx, *eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			fmt.Fprintf(os.Stderr, "event %s not found\n", *eventID)
			os.Exit(1)
		}
		log.Fatalf("Failed to build summary: %v", err)
	}

	fmt.Printf("Event:                 %s\n", summary.EventID)
	fmt.Printf("Total orders:          %d\n", summary.TotalOrders)
	fmt.Printf("Booked tickets:        %d\n", summary.TotalBookedQuantity)
	fmt.Printf("Cancelled tickets:     %d\n", summary.TotalCancelledQuantity)
	fmt.Printf("Cancellation rate:     %.2f%%\n", summary.CancellationRate)
	if summary.DateWithMaxCancellations != nil {
		fmt.Printf("Peak cancellation day: %s\n", *summary.DateWithMaxCancellations)
	} else {
		fmt.Printf("Peak cancellation day: -\n")
	}
}
