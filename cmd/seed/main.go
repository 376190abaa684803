package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"job-insight-chat/internal/config"
	"job-insight-chat/internal/domain/model"
	pg "job-insight-chat/internal/infra/db/postgres"
	"job-insight-chat/internal/infra/logging"
)

// seed loads a few sample jobs and funds a demo user so the chat API can be
// exercised against a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	userID := flag.String("user", "demo-user", "user to own the jobs and receive credits")
	credits := flag.Int64("credits", 50, "credits to grant")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	jobs := pg.NewJobRepo(pool)
	ledger := pg.NewCreditLedger(pool, pg.NewTxManager(pool))

	seed := []model.Job{
		{ID: "job-backend", Title: "Backend Engineer (Go)", ProcessedDescription: "Build and run Go microservices on Postgres and Redis. gRPC, Kubernetes, on-call rotation."},
		{ID: "job-data", Title: "Data Engineer", ProcessedDescription: "Own batch and streaming pipelines. Python, SQL, Kafka, dbt."},
		{ID: "job-frontend", Title: "Frontend Engineer", ProcessedDescription: "Ship a React and TypeScript design system used by five product teams."},
	}
	for i := range seed {
		j := seed[i]
		j.UserID = *userID
		if err := jobs.Upsert(ctx, nil, &j); err != nil {
			logger.Fatal().Err(err).Str("job_id", j.ID).Msg("seed job")
		}
		fmt.Printf("seeded job: %s (%s)\n", j.ID, j.Title)
	}

	balance, err := ledger.Grant(ctx, nil, *userID, *credits)
	if err != nil {
		logger.Fatal().Err(err).Msg("grant credits")
	}
	fmt.Printf("user %s now has %d credits\n", *userID, balance)
	fmt.Println("✅ Seeding complete.")
}
