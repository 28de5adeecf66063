package get_host_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/internal/service/bookings/models"
)

// ParseQuery собирает запрос сервиса из query-параметров.
// Период задается датами YYYY-MM-DD и трактуется как [from, to+1день) в UTC.
func ParseQuery(hostID, userID int64, query url.Values) (*models.GetHostBookingsRequest, error) {
	req := &models.GetHostBookingsRequest{
		UserID: userID,
		HostID: hostID,
	}

	if serviceIDStr := query.Get("serviceId"); serviceIDStr != "" {
		serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid serviceId %q", serviceIDStr)
		}
		req.ServiceID = &serviceID
	}

	if dateFromStr := query.Get("dateFrom"); dateFromStr != "" {
		dateFrom, err := time.Parse(domain.DateFormat, dateFromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid dateFrom %q", dateFromStr)
		}
		rangeStart := dateFrom.UTC()
		req.RangeStart = &rangeStart
	}

	if dateToStr := query.Get("dateTo"); dateToStr != "" {
		dateTo, err := time.Parse(domain.DateFormat, dateToStr)
		if err != nil {
			return nil, fmt.Errorf("invalid dateTo %q", dateToStr)
		}
		rangeEnd := dateTo.AddDate(0, 0, 1).UTC()
		req.RangeEnd = &rangeEnd
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if includeCancelled := query.Get("includeCancelled"); includeCancelled == "true" {
		req.IncludeCancelled = true
	}

	return req, nil
}
