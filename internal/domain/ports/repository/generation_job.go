package repository

import (
	"context"
	"time"

	"job-insight-chat/internal/domain/model"
)

type GenerationJobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.GenerationJob) error
	// FetchAndMarkProcessing atomically fetches the oldest pending job, or a
	// 'processing' job last touched before staleBefore (its worker died), and
	// marks it as 'processing'. This prevents other workers from picking up the
	// same job.
	FetchAndMarkProcessing(ctx context.Context, staleBefore time.Time) (*model.GenerationJob, error)
}
