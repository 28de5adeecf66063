package googlecalendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент внешнего календаря хоста. Отдаёт занятые интервалы через
// FreeBusy API. Все вызовы ограничены таймаутом - недоступный календарь
// никогда не подвешивает вычисление слотов.
type Client struct {
	service *calendar.Service
	timeout time.Duration
	logger  Logger
}

// NewClient создает клиент по файлу сервисного аккаунта.
// Пустой credentialsFile означает выключенную интеграцию - возвращается
// nil-клиент, безопасный для вызовов.
func NewClient(credentialsFile string, timeout time.Duration, logger Logger) (*Client, error) {
	if credentialsFile == "" {
		return nil, nil
	}

	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: parse credentials: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: create calendar service: %w", err)
	}

	return &Client{
		service: srv,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// FetchBusyIntervals запрашивает занятые интервалы календаря за период.
// Любая ошибка верхнего уровня сворачивается в ErrUnavailable - вызывающий
// слой решает, деградировать или падать.
func (c *Client) FetchBusyIntervals(ctx context.Context, calendarID string, rangeStart, rangeEnd time.Time) ([]domain.BusyInterval, error) {
	if c == nil || c.service == nil {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request := &calendar.FreeBusyRequest{
		TimeMin: rangeStart.UTC().Format(time.RFC3339),
		TimeMax: rangeEnd.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}

	response, err := c.service.Freebusy.Query(request).Context(ctx).Do()
	if err != nil {
		c.logger.Warn("googlecalendar: freebusy query failed for calendar=%s: %v", calendarID, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	calendarBusy, ok := response.Calendars[calendarID]
	if !ok {
		c.logger.Warn("googlecalendar: calendar=%s missing from freebusy response", calendarID)
		return nil, fmt.Errorf("%w: calendar not present in response", ErrUnavailable)
	}
	if len(calendarBusy.Errors) > 0 {
		c.logger.Warn("googlecalendar: freebusy reported %d errors for calendar=%s", len(calendarBusy.Errors), calendarID)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, calendarBusy.Errors[0].Reason)
	}

	intervals := make([]domain.BusyInterval, 0, len(calendarBusy.Busy))
	for _, period := range calendarBusy.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		intervals = append(intervals, domain.BusyInterval{
			Start:  start.UTC(),
			End:    end.UTC(),
			Source: domain.BusySourceExternalCalendar,
		})
	}

	return intervals, nil
}
