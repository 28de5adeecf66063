package upsert_exception

import (
	"context"

	"github.com/avlko/HBP-SchedulingService/internal/service/availability/models"
)

type AvailabilityService interface {
	UpsertException(ctx context.Context, req *models.UpsertExceptionRequest) (*models.ExceptionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
