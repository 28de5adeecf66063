package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/booking"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/host"
	serviceRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/service"
	"github.com/avlko/HBP-SchedulingService/internal/scheduling"
	"github.com/avlko/HBP-SchedulingService/pkg/txmanager"
)

const (
	rejectReasonSlotUnavailable    = "slot_unavailable"
	rejectReasonRecurrenceConflict = "recurrence_conflict"
)

// occurrence одно вхождение серии: календарный день хоста и границы слота
type occurrence struct {
	localDay time.Time // полночь дня в таймзоне хоста
	start    time.Time // начало слота (UTC)
	end      time.Time // конец слота (UTC)
}

// UseCase use case для создания бронирования.
// Выданный ранее список слотов - консультативный и может устареть к моменту
// отправки: проверка доступности повторяется здесь, внутри сериализуемой
// транзакции, по актуальному состоянию хранилища. Внешний календарь на пути
// коммита не опрашивается.
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	hostRepo     HostRepository
	availRepo    AvailabilityRepository
	txManager    TxManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	hostRepo HostRepository,
	availRepo AvailabilityRepository,
	txManager TxManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		hostRepo:     hostRepo,
		availRepo:    availRepo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: service=%d, client=%d, start=%s, recurrence=%d",
		req.ServiceID, req.ClientID, req.StartTime.Format(time.RFC3339), req.RecurrenceCount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем услугу
	svc, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Проверяем и обрезаем запрошенное повторение по настройкам услуги
	count := req.RecurrenceCount
	if count <= 1 {
		count = 1
	}
	if count > 1 {
		if !svc.RecurrenceEnabled {
			uc.logger.Warn("CreateBooking: recurrence requested for service id=%d with recurrence disabled", svc.ID)
			return nil, ErrRecurrenceNotAllowed
		}
		if count > svc.MaxRecurrenceCount {
			count = svc.MaxRecurrenceCount
		}
	}
	recurring := count > 1

	// 4. Получаем настройки хоста и раскрываем серию в таймзоне хоста
	settings, err := uc.hostRepo.GetByID(ctx, svc.HostID)
	if err != nil {
		if errors.Is(err, host.ErrHostNotFound) {
			uc.logger.Warn("CreateBooking: host id=%d not found", svc.HostID)
			return nil, ErrHostNotFound
		}
		uc.logger.Error("CreateBooking: failed to get host id=%d: %v", svc.HostID, err)
		return nil, fmt.Errorf("%w: failed to get host settings: %v", ErrInternal, err)
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		uc.logger.Error("CreateBooking: host id=%d has invalid timezone %q: %v", svc.HostID, settings.Timezone, err)
		return nil, fmt.Errorf("%w: invalid host timezone: %v", ErrInternal, err)
	}

	occurrences := expandOccurrences(svc, req.StartTime, loc, count)

	// 5. Предварительные проверки вне транзакции: минимальный notice и
	// горизонт бронирования. Конфликты слотов проверяются только внутри
	// транзакции - здесь отсекаются заведомо невалидные запросы.
	if err := uc.validateOccurrenceTimes(svc, occurrences, now, loc, recurring); err != nil {
		return nil, err
	}

	// 6. Готовим бронирования; серия связывается общим recurrence_group_id
	var groupID *uuid.UUID
	if recurring {
		id := uuid.New()
		groupID = &id
	}

	bookings := make([]*domain.Booking, 0, len(occurrences))
	for _, occ := range occurrences {
		bookings = append(bookings, &domain.Booking{
			ServiceID:         svc.ID,
			HostID:            svc.HostID,
			ClientID:          req.ClientID,
			StartTime:         occ.start,
			EndTime:           occ.end,
			Status:            domain.StatusConfirmed,
			RecurrenceGroupID: groupID,
			ClientName:        req.ClientName,
			ServiceName:       svc.Name,
			Answers:           req.Answers,
		})
	}

	// 7. Атомарный коммит: каждое вхождение перепроверяется по текущему
	// состоянию хранилища, вставка выполняется только после того, как вся
	// серия прошла проверку. Частичные серии не создаются.
	var created []*domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		rules, err := uc.availRepo.GetRulesByHost(txCtx, svc.HostID)
		if err != nil {
			return fmt.Errorf("%w: failed to get availability rules: %w", ErrInternal, err)
		}

		first := occurrences[0].localDay
		last := occurrences[len(occurrences)-1].localDay
		exceptions, err := uc.availRepo.GetExceptionsByHost(txCtx, svc.HostID, first, last)
		if err != nil {
			return fmt.Errorf("%w: failed to get exceptions: %w", ErrInternal, err)
		}

		for _, occ := range occurrences {
			if err := uc.validateOccurrence(txCtx, svc, occ, rules, exceptions, recurring); err != nil {
				return err
			}
		}

		if recurring {
			created, err = uc.bookingRepo.CreateSeries(txCtx, bookings)
		} else {
			var result *domain.Booking
			result, err = uc.bookingRepo.Create(txCtx, bookings[0])
			if err == nil {
				created = []*domain.Booking{result}
			}
		}
		if err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return nil, uc.mapCommitError(err, recurring)
	}

	uc.metrics.BookingCreated(recurring)
	uc.logger.Info("CreateBooking: created %d booking(s) for service=%d, client=%d",
		len(created), svc.ID, req.ClientID)

	return &Response{Bookings: created}, nil
}

// validateOccurrence перепроверяет одно вхождение внутри транзакции:
// слот лежит на сетке генератора, и вместимость не исчерпана.
// Бронирования дня читаются с FOR UPDATE - гонка проверка-вставка закрыта.
func (uc *UseCase) validateOccurrence(
	ctx context.Context,
	svc *domain.Service,
	occ occurrence,
	rules []*domain.WeeklyAvailabilityRule,
	exceptions []*domain.DateException,
	recurring bool,
) error {
	windows := scheduling.ResolveDayWindows(occ.localDay, rules, exceptions)
	if !scheduling.AlignedSlot(svc, occ.localDay, windows, occ.start, occ.end) {
		uc.logger.Warn("CreateBooking: requested slot %s is off the service grid", occ.start.Format(time.RFC3339))
		return uc.conflictError(recurring)
	}

	dayStart := occ.localDay.UTC()
	dayEnd := occ.localDay.AddDate(0, 0, 1).UTC()

	dayBookings, err := uc.bookingRepo.GetByHostWithFilter(ctx, domain.HostBookingsFilter{
		HostID:     svc.HostID,
		RangeStart: &dayStart,
		RangeEnd:   &dayEnd,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
	}

	busySet := &scheduling.BusySet{
		Intervals: scheduling.CollectBusy(dayBookings, nil, dayStart, dayEnd, svc.ID),
	}

	// Вместимость слота считается по точечному чтению своей услуги -
	// блокируются ровно те строки, что пересекают запрошенный интервал
	sameService, err := uc.bookingRepo.GetConfirmedByServiceAndRange(ctx, svc.ID, occ.start, occ.end)
	if err != nil {
		return fmt.Errorf("%w: failed to get service bookings: %w", ErrInternal, err)
	}

	if err := scheduling.ValidateSlot(svc, occ.start, occ.end, busySet, sameService); err != nil {
		uc.logger.Warn("CreateBooking: slot %s failed validation: %v", occ.start.Format(time.RFC3339), err)
		return uc.conflictError(recurring)
	}

	return nil
}

// validateOccurrenceTimes проверяет временные ограничения серии до входа
// в транзакцию: минимальный notice и горизонт advanceBookingDays.
func (uc *UseCase) validateOccurrenceTimes(svc *domain.Service, occurrences []occurrence, now time.Time, loc *time.Location, recurring bool) error {
	notBefore := now.Add(time.Duration(svc.MinNoticeMinutes) * time.Minute)

	nowLocal := now.In(loc)
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	var horizon time.Time
	if svc.HasAdvanceBookingLimit() {
		horizon = today.AddDate(0, 0, svc.AdvanceBookingDays)
	}

	for _, occ := range occurrences {
		if occ.start.Before(notBefore) {
			uc.logger.Warn("CreateBooking: slot %s violates minimum notice", occ.start.Format(time.RFC3339))
			return uc.conflictError(recurring)
		}
		if svc.HasAdvanceBookingLimit() && occ.localDay.After(horizon) {
			uc.logger.Warn("CreateBooking: slot %s exceeds booking horizon of %d days",
				occ.start.Format(time.RFC3339), svc.AdvanceBookingDays)
			return uc.conflictError(recurring)
		}
	}
	return nil
}

// conflictError возвращает ошибку отклонения: для серии - конфликт серии,
// для одиночного бронирования - недоступность слота
func (uc *UseCase) conflictError(recurring bool) error {
	if recurring {
		return ErrRecurrenceConflict
	}
	return ErrSlotNotAvailable
}

// mapCommitError переводит ошибки транзакции в ошибки usecase.
// Конфликт сериализации после повтора и гонка на уникальном ограничении
// означают одно и то же для клиента: слот перехвачен, выберите другой.
func (uc *UseCase) mapCommitError(err error, recurring bool) error {
	switch {
	case errors.Is(err, ErrRecurrenceConflict):
		uc.metrics.BookingRejected(rejectReasonRecurrenceConflict)
		return err
	case errors.Is(err, ErrSlotNotAvailable):
		uc.metrics.BookingRejected(rejectReasonSlotUnavailable)
		return err
	case errors.Is(err, txmanager.ErrSerializationConflict), errors.Is(err, booking.ErrSlotTaken):
		if recurring {
			uc.metrics.BookingRejected(rejectReasonRecurrenceConflict)
			return fmt.Errorf("%w: %v", ErrRecurrenceConflict, err)
		}
		uc.metrics.BookingRejected(rejectReasonSlotUnavailable)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: commit failed: %v", err)
		return err
	default:
		uc.logger.Error("CreateBooking: commit failed: %v", err)
		return fmt.Errorf("%w: commit failed: %v", ErrInternal, err)
	}
}

// expandOccurrences раскрывает запрошенный слот в серию вхождений:
// тот же день недели и то же локальное время хоста, с шагом 7 дней.
// Конец слота вычисляется так же, как в генераторе - нормализацией минут
// относительно локального дня, что сохраняет wall-clock семантику на днях
// перевода часов.
func expandOccurrences(svc *domain.Service, start time.Time, loc *time.Location, count int) []occurrence {
	local := start.In(loc)
	year, month, day := local.Date()
	startMinute := local.Hour()*60 + local.Minute()

	occurrences := make([]occurrence, 0, count)
	for i := 0; i < count; i++ {
		d := day + 7*i
		occurrences = append(occurrences, occurrence{
			localDay: time.Date(year, month, d, 0, 0, 0, 0, loc),
			start:    time.Date(year, month, d, 0, startMinute, 0, 0, loc).UTC(),
			end:      time.Date(year, month, d, 0, startMinute+svc.DurationMinutes, 0, 0, loc).UTC(),
		})
	}
	return occurrences
}
