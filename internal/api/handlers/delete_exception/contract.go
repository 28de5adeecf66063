package delete_exception

import "context"

type AvailabilityService interface {
	DeleteException(ctx context.Context, hostID, userID int64, date string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
