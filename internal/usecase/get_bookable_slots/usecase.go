package get_bookable_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/host"
	serviceRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/service"
	"github.com/avlko/HBP-SchedulingService/internal/scheduling"
)

// UseCase use case для получения бронируемых слотов услуги на день.
// Путь только читающий: никаких блокировок, результат консультативный -
// коммит бронирования перепроверяет актуальное состояние.
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	hostRepo     HostRepository
	availRepo    AvailabilityRepository
	busySource   BusySource
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case.
// busySource может быть nil - тогда внешняя занятость не учитывается.
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	hostRepo HostRepository,
	availRepo AvailabilityRepository,
	busySource BusySource,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		hostRepo:     hostRepo,
		availRepo:    availRepo,
		busySource:   busySource,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения бронируемых слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetBookableSlots: service=%d, date=%s",
		req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetBookableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем услугу
	svc, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetBookableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetBookableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Получаем настройки хоста - услуга наследует его таймзону
	settings, err := uc.hostRepo.GetByID(ctx, svc.HostID)
	if err != nil {
		if errors.Is(err, host.ErrHostNotFound) {
			uc.logger.Warn("GetBookableSlots: host id=%d not found", svc.HostID)
			return nil, ErrHostNotFound
		}
		uc.logger.Error("GetBookableSlots: failed to get host id=%d: %v", svc.HostID, err)
		return nil, fmt.Errorf("%w: failed to get host settings: %v", ErrInternal, err)
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		uc.logger.Error("GetBookableSlots: host id=%d has invalid timezone %q: %v", svc.HostID, settings.Timezone, err)
		return nil, fmt.Errorf("%w: invalid host timezone: %v", ErrInternal, err)
	}

	// 4. Границы календарного дня в таймзоне хоста
	localDay := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)
	dayStart := localDay.UTC()
	dayEnd := localDay.AddDate(0, 0, 1).UTC()

	// 5. Валидация даты: не в прошлом и в пределах advanceBookingDays
	if err := validateDate(localDay, now.In(loc), svc.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetBookableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 6. Резолвим открытые окна дня: исключение на дату полностью
	// замещает еженедельные правила
	rules, err := uc.availRepo.GetRulesByHost(ctx, svc.HostID)
	if err != nil {
		uc.logger.Error("GetBookableSlots: failed to get availability rules: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability rules: %v", ErrInternal, err)
	}

	exceptions, err := uc.availRepo.GetExceptionsByHost(ctx, svc.HostID, localDay, localDay)
	if err != nil {
		uc.logger.Error("GetBookableSlots: failed to get exceptions: %v", err)
		return nil, fmt.Errorf("%w: failed to get exceptions: %v", ErrInternal, err)
	}

	windows := scheduling.ResolveDayWindows(localDay, rules, exceptions)
	if len(windows) == 0 {
		uc.logger.Info("GetBookableSlots: host id=%d closed on %s", svc.HostID, req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req, svc, settings), nil
	}

	// 7. Собираем занятость: подтвержденные бронирования хоста + внешний
	// календарь. Недоступный календарь деградирует до partial-результата,
	// а не валит запрос.
	bookings, err := uc.bookingRepo.GetByHostWithFilter(ctx, domain.HostBookingsFilter{
		HostID:     svc.HostID,
		RangeStart: &dayStart,
		RangeEnd:   &dayEnd,
	})
	if err != nil {
		uc.logger.Error("GetBookableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	external, partial := uc.collectExternalBusy(ctx, settings, dayStart, dayEnd)

	busySet := &scheduling.BusySet{
		Intervals: scheduling.CollectBusy(bookings, external, dayStart, dayEnd, svc.ID),
		Partial:   partial,
	}

	// 8. Генерируем кандидатов и фильтруем по конфликтам и вместимости
	candidates := scheduling.GenerateSlots(svc, localDay, windows, now)
	bookable := scheduling.ResolveBookable(svc, candidates, busySet, filterServiceBookings(bookings, svc.ID))

	uc.logger.Info("GetBookableSlots: service=%d date=%s slots=%d partial=%t",
		req.ServiceID, req.Date.Format(domain.DateFormat), len(bookable), partial)

	return &Response{
		ServiceID: svc.ID,
		HostID:    svc.HostID,
		Date:      req.Date,
		Timezone:  settings.Timezone,
		Slots:     toSlots(bookable),
		Partial:   partial,
	}, nil
}

// collectExternalBusy запрашивает занятость внешнего календаря.
// Возвращает partial=true, когда календарь настроен, но недоступен.
func (uc *UseCase) collectExternalBusy(ctx context.Context, settings *domain.HostSettings, rangeStart, rangeEnd time.Time) ([]domain.BusyInterval, bool) {
	if uc.busySource == nil || !settings.HasExternalCalendar() {
		return nil, false
	}

	intervals, err := uc.busySource.FetchBusyIntervals(ctx, *settings.CalendarID, rangeStart, rangeEnd)
	if err != nil {
		uc.logger.Warn("GetBookableSlots: external busy source degraded for host=%d: %v", settings.HostID, err)
		uc.metrics.SlotQueryPartial(string(domain.BusySourceExternalCalendar))
		return nil, true
	}
	return intervals, false
}

func (uc *UseCase) emptyResponse(req *Request, svc *domain.Service, settings *domain.HostSettings) *Response {
	return &Response{
		ServiceID: svc.ID,
		HostID:    svc.HostID,
		Date:      req.Date,
		Timezone:  settings.Timezone,
		Slots:     []Slot{},
	}
}

func filterServiceBookings(bookings []*domain.Booking, serviceID int64) []*domain.Booking {
	result := make([]*domain.Booking, 0)
	for _, b := range bookings {
		if b.ServiceID == serviceID {
			result = append(result, b)
		}
	}
	return result
}

func toSlots(slots []domain.Slot) []Slot {
	result := make([]Slot, len(slots))
	for i, s := range slots {
		result[i] = Slot{
			StartTime:         s.StartTime,
			EndTime:           s.EndTime,
			RemainingCapacity: s.RemainingCapacity,
			TotalCapacity:     s.TotalCapacity,
		}
	}
	return result
}
