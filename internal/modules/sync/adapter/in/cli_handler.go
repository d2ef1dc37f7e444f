package in

import (
	"context"

	"quotawin/internal/modules/sync/dto"
	syncin "quotawin/internal/modules/sync/port/in"
)

type CLIHandler struct {
	usecase syncin.Usecase
}

func NewCLIHandler(usecase syncin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Push(ctx context.Context) (dto.PushOutput, error) {
	return h.usecase.Push(ctx)
}

func (h CLIHandler) Pull(ctx context.Context) (dto.PullOutput, error) {
	return h.usecase.Pull(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}
