package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/booking"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/host"
	serviceRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/service"
	"github.com/avlko/HBP-SchedulingService/pkg/txmanager"
)

// --- Фейки зависимостей ---

// memBookingRepo хранит бронирования в памяти. Сам по себе ничего не
// проверяет: атомарность "проверка + вставка" обеспечивает serialTxManager,
// как в проде её обеспечивает сериализуемая транзакция.
type memBookingRepo struct {
	mu        sync.Mutex
	nextID    int64
	bookings  []*domain.Booking
	createErr error
}

func (r *memBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	created, err := r.CreateSeries(nil, []*domain.Booking{b})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (r *memBookingRepo) CreateSeries(_ context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}

	created := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		r.nextID++
		stored := *b
		stored.ID = r.nextID
		r.bookings = append(r.bookings, &stored)
		created = append(created, &stored)
	}
	return created, nil
}

func (r *memBookingRepo) GetByHostWithFilter(_ context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.HostID != filter.HostID {
			continue
		}
		if !filter.IncludeCancelled && b.Status == domain.StatusCancelled {
			continue
		}
		if filter.RangeStart != nil && filter.RangeEnd != nil && !b.Overlaps(*filter.RangeStart, *filter.RangeEnd) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (r *memBookingRepo) GetConfirmedByServiceAndRange(_ context.Context, serviceID int64, rangeStart, rangeEnd time.Time) ([]*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.ServiceID != serviceID || !b.IsConfirmed() || !b.Overlaps(rangeStart, rangeEnd) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (r *memBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

type fakeServiceRepo struct {
	svc *domain.Service
}

func (f *fakeServiceRepo) GetByID(_ context.Context, _ int64) (*domain.Service, error) {
	if f.svc == nil {
		return nil, serviceRepo.ErrServiceNotFound
	}
	return f.svc, nil
}

type fakeHostRepo struct {
	settings *domain.HostSettings
}

func (f *fakeHostRepo) GetByID(_ context.Context, _ int64) (*domain.HostSettings, error) {
	if f.settings == nil {
		return nil, host.ErrHostNotFound
	}
	return f.settings, nil
}

type fakeAvailRepo struct {
	rules      []*domain.WeeklyAvailabilityRule
	exceptions []*domain.DateException
}

func (f *fakeAvailRepo) GetRulesByHost(_ context.Context, _ int64) ([]*domain.WeeklyAvailabilityRule, error) {
	return f.rules, nil
}

// GetExceptionsByHost отбирает исключения по календарной дате границ -
// как колонка DATE в проде. Неверные границы от вызывающего кода
// оставят исключение за пределами выборки.
func (f *fakeAvailRepo) GetExceptionsByHost(_ context.Context, _ int64, dateFrom, dateTo time.Time) ([]*domain.DateException, error) {
	from := dateFrom.Format(domain.DateFormat)
	to := dateTo.Format(domain.DateFormat)

	result := make([]*domain.DateException, 0)
	for _, exc := range f.exceptions {
		date := exc.Date.Format(domain.DateFormat)
		if date < from || date > to {
			continue
		}
		result = append(result, exc)
	}
	return result, nil
}

// serialTxManager выполняет транзакции строго по одной - модель
// сериализуемой изоляции для тестов
type serialTxManager struct {
	mu  sync.Mutex
	err error
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

type fakeMetrics struct {
	mu       sync.Mutex
	created  []bool
	rejected []string
}

func (f *fakeMetrics) BookingCreated(recurring bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, recurring)
}

func (f *fakeMetrics) BookingRejected(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, reason)
}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- Общая фикстура: понедельник 2026-03-02, окно 09:00-17:00,
// услуга 30 минут без буферов (сетка :00/:30) ---

type fixture struct {
	uc          *UseCase
	bookingRepo *memBookingRepo
	serviceRepo *fakeServiceRepo
	hostRepo    *fakeHostRepo
	availRepo   *fakeAvailRepo
	txManager   *serialTxManager
	metrics     *fakeMetrics
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookingRepo: &memBookingRepo{},
		serviceRepo: &fakeServiceRepo{svc: &domain.Service{
			ID:                 1,
			HostID:             10,
			Name:               "Consultation",
			DurationMinutes:    30,
			MinNoticeMinutes:   60,
			Capacity:           1,
			MaxConcurrency:     1,
			RecurrenceEnabled:  true,
			MaxRecurrenceCount: 4,
			AdvanceBookingDays: 60,
		}},
		hostRepo:  &fakeHostRepo{settings: &domain.HostSettings{HostID: 10, Timezone: "UTC"}},
		availRepo: &fakeAvailRepo{rules: []*domain.WeeklyAvailabilityRule{{HostID: 10, Weekday: time.Monday, StartMinute: 540, EndMinute: 1020}}},
		txManager: &serialTxManager{},
		metrics:   &fakeMetrics{},
	}
	f.uc = NewUseCase(f.bookingRepo, f.serviceRepo, f.hostRepo, f.availRepo, f.txManager, f.metrics, nopLogger{})
	f.uc.timeProvider = &fixedTime{now: now}
	return f
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tenOClock := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	request := func(start time.Time, recurrence int) *Request {
		return &Request{
			ServiceID:       1,
			ClientID:        100,
			StartTime:       start,
			ClientName:      "Ivan",
			RecurrenceCount: recurrence,
		}
	}

	t.Run("single booking on free slot", func(t *testing.T) {
		f := newFixture(now)

		resp, err := f.uc.Execute(ctx, request(tenOClock, 0))
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 1)

		b := resp.Bookings[0]
		assert.Equal(t, domain.StatusConfirmed, b.Status)
		assert.Equal(t, tenOClock, b.StartTime)
		assert.Equal(t, tenOClock.Add(30*time.Minute), b.EndTime)
		assert.Nil(t, b.RecurrenceGroupID)
		assert.Equal(t, "Consultation", b.ServiceName)
		assert.Equal(t, []bool{false}, f.metrics.created)
	})

	t.Run("off grid start rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, request(tenOClock.Add(10*time.Minute), 0))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Zero(t, f.bookingRepo.count())
		assert.Equal(t, []string{"slot_unavailable"}, f.metrics.rejected)
	})

	t.Run("taken slot rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, request(tenOClock, 0))
		require.NoError(t, err)

		_, err = f.uc.Execute(ctx, &Request{ServiceID: 1, ClientID: 200, StartTime: tenOClock})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Equal(t, 1, f.bookingRepo.count())
	})

	t.Run("concurrency admits distinct clients up to capacity", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc.ConcurrencyEnabled = true
		f.serviceRepo.svc.Capacity = 2
		f.serviceRepo.svc.MaxConcurrency = 2

		_, err := f.uc.Execute(ctx, request(tenOClock, 0))
		require.NoError(t, err)

		_, err = f.uc.Execute(ctx, &Request{ServiceID: 1, ClientID: 200, StartTime: tenOClock})
		require.NoError(t, err)

		_, err = f.uc.Execute(ctx, &Request{ServiceID: 1, ClientID: 300, StartTime: tenOClock})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Equal(t, 2, f.bookingRepo.count())
	})

	t.Run("minimum notice enforced at commit", func(t *testing.T) {
		f := newFixture(now)

		// 09:00 начинается через 60 минут ровно на границе notice;
		// 08:30 - уже внутри запретной зоны. Окно открыто с 09:00.
		_, err := f.uc.Execute(ctx, request(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 0))
		require.NoError(t, err)

		f2 := newFixture(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC))
		_, err = f2.uc.Execute(ctx, request(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 0))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("weekly series shares one recurrence group", func(t *testing.T) {
		f := newFixture(now)

		resp, err := f.uc.Execute(ctx, request(tenOClock, 3))
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 3)

		groupID := resp.Bookings[0].RecurrenceGroupID
		require.NotNil(t, groupID)
		for i, b := range resp.Bookings {
			assert.Equal(t, tenOClock.AddDate(0, 0, 7*i), b.StartTime)
			require.NotNil(t, b.RecurrenceGroupID)
			assert.Equal(t, *groupID, *b.RecurrenceGroupID)
		}
		assert.Equal(t, []bool{true}, f.metrics.created)
	})

	t.Run("series with one conflicting occurrence creates nothing", func(t *testing.T) {
		f := newFixture(now)

		// Третье вхождение серии уже занято другим клиентом
		thirdMonday := tenOClock.AddDate(0, 0, 14)
		_, err := f.uc.Execute(ctx, &Request{ServiceID: 1, ClientID: 200, StartTime: thirdMonday})
		require.NoError(t, err)
		require.Equal(t, 1, f.bookingRepo.count())

		_, err = f.uc.Execute(ctx, request(tenOClock, 4))
		assert.ErrorIs(t, err, ErrRecurrenceConflict)
		assert.Equal(t, 1, f.bookingRepo.count(), "no partial series may be created")
		assert.Equal(t, []string{"recurrence_conflict"}, f.metrics.rejected)
	})

	t.Run("series blocked by unavailable exception", func(t *testing.T) {
		f := newFixture(now)
		f.availRepo.exceptions = []*domain.DateException{{
			HostID:      10,
			Date:        time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			Unavailable: true,
		}}

		_, err := f.uc.Execute(ctx, request(tenOClock, 2))
		assert.ErrorIs(t, err, ErrRecurrenceConflict)
		assert.Zero(t, f.bookingRepo.count())
	})

	t.Run("series blocked by exception in host timezone", func(t *testing.T) {
		f := newFixture(now)
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		f.hostRepo.settings.Timezone = "Europe/Berlin"
		f.availRepo.exceptions = []*domain.DateException{{
			HostID:      10,
			Date:        time.Date(2026, 3, 9, 0, 0, 0, 0, loc),
			Unavailable: true,
		}}

		// 10:00 по Берлину = 09:00 UTC (CET), минута 600 сетки
		start := time.Date(2026, 3, 2, 10, 0, 0, 0, loc).UTC()
		_, err = f.uc.Execute(ctx, request(start, 2))
		assert.ErrorIs(t, err, ErrRecurrenceConflict)
		assert.Zero(t, f.bookingRepo.count())
	})

	t.Run("recurrence disabled for service", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc.RecurrenceEnabled = false

		_, err := f.uc.Execute(ctx, request(tenOClock, 2))
		assert.ErrorIs(t, err, ErrRecurrenceNotAllowed)
	})

	t.Run("recurrence capped at service limit", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc.MaxRecurrenceCount = 2

		resp, err := f.uc.Execute(ctx, request(tenOClock, 4))
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 2)
	})

	t.Run("series occurrence beyond booking horizon", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc.AdvanceBookingDays = 7

		// Третье вхождение выпадает на day+14 - за горизонтом
		_, err := f.uc.Execute(ctx, request(tenOClock, 3))
		assert.ErrorIs(t, err, ErrRecurrenceConflict)
		assert.Zero(t, f.bookingRepo.count())
	})

	t.Run("serialization conflict maps to slot not available", func(t *testing.T) {
		f := newFixture(now)
		f.txManager.err = txmanager.ErrSerializationConflict

		_, err := f.uc.Execute(ctx, request(tenOClock, 0))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Equal(t, []string{"slot_unavailable"}, f.metrics.rejected)
	})

	t.Run("serialization conflict on series maps to recurrence conflict", func(t *testing.T) {
		f := newFixture(now)
		f.txManager.err = txmanager.ErrSerializationConflict

		_, err := f.uc.Execute(ctx, request(tenOClock, 2))
		assert.ErrorIs(t, err, ErrRecurrenceConflict)
	})

	t.Run("unique violation maps to slot not available", func(t *testing.T) {
		f := newFixture(now)
		f.bookingRepo.createErr = booking.ErrSlotTaken

		_, err := f.uc.Execute(ctx, request(tenOClock, 0))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("service not found", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc = nil

		_, err := f.uc.Execute(ctx, request(tenOClock, 0))
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("host not found", func(t *testing.T) {
		f := newFixture(now)
		f.hostRepo.settings = nil

		_, err := f.uc.Execute(ctx, request(tenOClock, 0))
		assert.ErrorIs(t, err, ErrHostNotFound)
	})

	t.Run("start with seconds rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, request(tenOClock.Add(15*time.Second), 0))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("recurrence count above hard limit rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, request(tenOClock, domain.MaxRecurrenceLimit+1))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestExecute_ConcurrentCommits(t *testing.T) {
	const numGoroutines = 10

	ctx := context.Background()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tenOClock := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	f := newFixture(now)

	var wg sync.WaitGroup
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(clientID int64) {
			defer wg.Done()
			_, err := f.uc.Execute(ctx, &Request{
				ServiceID: 1,
				ClientID:  clientID,
				StartTime: tenOClock,
			})
			results <- err
		}(int64(100 + i))
	}

	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrSlotNotAvailable)
		rejected++
	}

	assert.Equal(t, 1, succeeded, "exactly one commit may win the slot")
	assert.Equal(t, numGoroutines-1, rejected)
	assert.Equal(t, 1, f.bookingRepo.count())
}

func TestExpandOccurrences(t *testing.T) {
	svc := &domain.Service{DurationMinutes: 60}

	t.Run("weekly step preserves host wall clock across dst", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		// 2026-03-23 10:00 Berlin (CET, +1); следующая неделя уже CEST (+2)
		start := time.Date(2026, 3, 23, 10, 0, 0, 0, loc).UTC()
		occurrences := expandOccurrences(svc, start, loc, 2)
		require.Len(t, occurrences, 2)

		assert.Equal(t, time.Date(2026, 3, 23, 9, 0, 0, 0, time.UTC), occurrences[0].start)
		assert.Equal(t, time.Date(2026, 3, 30, 8, 0, 0, 0, time.UTC), occurrences[1].start)

		for _, occ := range occurrences {
			local := occ.start.In(loc)
			assert.Equal(t, 10, local.Hour())
			assert.Equal(t, time.Monday, local.Weekday())
		}
	})

	t.Run("end follows service duration", func(t *testing.T) {
		start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
		occurrences := expandOccurrences(svc, start, time.UTC, 1)
		require.Len(t, occurrences, 1)
		assert.Equal(t, start.Add(time.Hour), occurrences[0].end)
	})
}
