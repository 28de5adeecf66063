package get_host_bookings

import (
	"context"

	"github.com/avlko/HBP-SchedulingService/internal/service/bookings/models"
)

type BookingService interface {
	GetHostBookings(ctx context.Context, req *models.GetHostBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
