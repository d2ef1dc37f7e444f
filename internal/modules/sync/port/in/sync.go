package in

import (
	"context"

	"quotawin/internal/modules/sync/dto"
)

type Usecase interface {
	Push(ctx context.Context) (dto.PushOutput, error)
	Pull(ctx context.Context) (dto.PullOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
}
