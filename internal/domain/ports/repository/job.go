package repository

import (
	"context"

	"job-insight-chat/internal/domain/model"
)

type JobRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)
}
