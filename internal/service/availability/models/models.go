package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/pkg/types"
)

var (
	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format")

	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("invalid date format")
)

// Request модели

// WeeklyRuleRequest одно еженедельное правило в запросе на обновление.
// Время задается строками HH:MM в таймзоне хоста.
type WeeklyRuleRequest struct {
	Weekday   int    `json:"weekday"` // 0 = воскресенье ... 6 = суббота
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// UpdateRulesRequest запрос на полную замену набора еженедельных правил
type UpdateRulesRequest struct {
	UserID int64               `json:"userId"`
	HostID int64               `json:"hostId"`
	Rules  []WeeklyRuleRequest `json:"rules"`
}

// UpsertExceptionRequest запрос на создание или обновление исключения.
// Либо Unavailable = true, либо замещающее окно StartTime-EndTime.
type UpsertExceptionRequest struct {
	UserID      int64   `json:"userId"`
	HostID      int64   `json:"hostId"`
	Date        string  `json:"date"` // "2006-01-02"
	Unavailable bool    `json:"unavailable"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
}

// GetAvailabilityRequest запрос на получение настроек доступности хоста
type GetAvailabilityRequest struct {
	UserID   int64  `json:"userId"`
	HostID   int64  `json:"hostId"`
	DateFrom string `json:"dateFrom,omitempty"` // период для исключений, "2006-01-02"
	DateTo   string `json:"dateTo,omitempty"`
}

// Response модели

// WeeklyRuleResponse еженедельное правило доступности
type WeeklyRuleResponse struct {
	ID        int64  `json:"id"`
	Weekday   int    `json:"weekday"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ExceptionResponse исключение на конкретную дату
type ExceptionResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Unavailable bool    `json:"unavailable"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
}

// AvailabilityResponse настройки доступности хоста
type AvailabilityResponse struct {
	HostID     int64                `json:"hostId"`
	Timezone   string               `json:"timezone"`
	Rules      []WeeklyRuleResponse `json:"rules"`
	Exceptions []ExceptionResponse  `json:"exceptions"`
}

// Методы конвертации

// ToDomainRule конвертирует правило запроса в domain модель
func (r *WeeklyRuleRequest) ToDomainRule(hostID int64) (*domain.WeeklyAvailabilityRule, error) {
	startMinute, err := parseMinutes(r.StartTime)
	if err != nil {
		return nil, err
	}
	endMinute, err := parseMinutes(r.EndTime)
	if err != nil {
		return nil, err
	}

	return &domain.WeeklyAvailabilityRule{
		HostID:      hostID,
		Weekday:     time.Weekday(r.Weekday),
		StartMinute: startMinute,
		EndMinute:   endMinute,
	}, nil
}

// ToDomainException конвертирует запрос исключения в domain модель
func (r *UpsertExceptionRequest) ToDomainException() (*domain.DateException, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
	}

	exc := &domain.DateException{
		HostID:      r.HostID,
		Date:        date,
		Unavailable: r.Unavailable,
	}

	if r.StartTime != nil {
		startMinute, err := parseMinutes(*r.StartTime)
		if err != nil {
			return nil, err
		}
		exc.StartMinute = &startMinute
	}
	if r.EndTime != nil {
		endMinute, err := parseMinutes(*r.EndTime)
		if err != nil {
			return nil, err
		}
		exc.EndMinute = &endMinute
	}

	return exc, nil
}

// FromDomainRules конвертирует правила в DTO
func FromDomainRules(rules []*domain.WeeklyAvailabilityRule) []WeeklyRuleResponse {
	result := make([]WeeklyRuleResponse, 0, len(rules))
	for _, rule := range rules {
		result = append(result, WeeklyRuleResponse{
			ID:        rule.ID,
			Weekday:   int(rule.Weekday),
			StartTime: formatMinutes(rule.StartMinute),
			EndTime:   formatMinutes(rule.EndMinute),
		})
	}
	return result
}

// FromDomainExceptions конвертирует исключения в DTO
func FromDomainExceptions(exceptions []*domain.DateException) []ExceptionResponse {
	result := make([]ExceptionResponse, 0, len(exceptions))
	for _, exc := range exceptions {
		resp := ExceptionResponse{
			ID:          exc.ID,
			Date:        exc.Date.Format(domain.DateFormat),
			Unavailable: exc.Unavailable,
		}
		if exc.StartMinute != nil {
			s := formatMinutes(*exc.StartMinute)
			resp.StartTime = &s
		}
		if exc.EndMinute != nil {
			s := formatMinutes(*exc.EndMinute)
			resp.EndTime = &s
		}
		result = append(result, resp)
	}
	return result
}

// parseMinutes парсит строку HH:MM в минуты с начала суток.
// "24:00" допускается как конец окна, открытого до полуночи.
func parseMinutes(s string) (int, error) {
	if s == endOfDay {
		return domain.MinutesPerDay, nil
	}
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minutes, err := ts.Minutes()
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return minutes, nil
}

// formatMinutes форматирует минуты с начала суток обратно в HH:MM
func formatMinutes(minutes int) string {
	if minutes == domain.MinutesPerDay {
		return endOfDay
	}
	ts, err := types.NewTimeStringFromMinutes(minutes)
	if err != nil {
		return ""
	}
	return ts.String()
}

const endOfDay = "24:00"
