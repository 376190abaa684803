package main

import (
	"time"

	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/infra/db/memory"
)

const (
	devUserID = "dev-user"
	devJobID  = "dev-job"
)

// seedDev gives -dev runs one job and a funded user to chat with.
func seedDev(jobs *memory.JobRepo, ledger *memory.CreditLedger) {
	jobs.Put(&model.Job{
		ID:                   devJobID,
		UserID:               devUserID,
		Title:                "Senior Backend Engineer",
		ProcessedDescription: "Design and operate Go services on Postgres and Redis. Own streaming APIs and on-call.",
		CreatedAt:            time.Now(),
	})
	ledger.SetBalance(devUserID, 100)
}
