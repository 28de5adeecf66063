package get_bookable_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/host"
	serviceRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/service"
	"github.com/avlko/HBP-SchedulingService/pkg/ptr"
)

// --- Фейки зависимостей ---

type fakeBookingRepo struct {
	bookings []*domain.Booking
	err      error
}

func (f *fakeBookingRepo) GetByHostWithFilter(_ context.Context, _ domain.HostBookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, f.err
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

type fakeBusySource struct {
	intervals []domain.BusyInterval
	err       error
	calls     int
}

func (f *fakeBusySource) FetchBusyIntervals(_ context.Context, _ string, _, _ time.Time) ([]domain.BusyInterval, error) {
	f.calls++
	return f.intervals, f.err
}

type fakeMetrics struct {
	partials []string
}

func (f *fakeMetrics) SlotQueryPartial(source string) {
	f.partials = append(f.partials, source)
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

// --- Общая фикстура: понедельник 2026-03-02, окно 09:00-17:00 ---

type fixture struct {
	uc          *UseCase
	bookingRepo *fakeBookingRepo
	serviceRepo *fakeServiceRepo
	hostRepo    *fakeHostRepo
	availRepo   *fakeAvailRepo
	busySource  *fakeBusySource
	metrics     *fakeMetrics
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookingRepo: &fakeBookingRepo{},
		serviceRepo: &fakeServiceRepo{svc: &domain.Service{
			ID:                  1,
			HostID:              10,
			Name:                "Consultation",
			DurationMinutes:     30,
			BufferBeforeMinutes: 5,
			BufferAfterMinutes:  5,
			MinNoticeMinutes:    60,
			Capacity:            1,
			MaxConcurrency:      1,
			AdvanceBookingDays:  30,
		}},
		hostRepo:   &fakeHostRepo{settings: &domain.HostSettings{HostID: 10, Timezone: "UTC"}},
		availRepo:  &fakeAvailRepo{rules: []*domain.WeeklyAvailabilityRule{{HostID: 10, Weekday: time.Monday, StartMinute: 540, EndMinute: 1020}}},
		busySource: &fakeBusySource{},
		metrics:    &fakeMetrics{},
	}
	f.uc = NewUseCase(f.bookingRepo, f.serviceRepo, f.hostRepo, f.availRepo, f.busySource, f.metrics, nopLogger{})
	f.uc.timeProvider = &fixedTime{now: now}
	return f
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

	t.Run("first slot honors minimum notice", func(t *testing.T) {
		f := newFixture(now)

		resp, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Slots)

		assert.Equal(t, time.Date(2026, 3, 2, 9, 35, 0, 0, time.UTC), resp.Slots[0].StartTime)
		assert.False(t, resp.Partial)
		assert.Equal(t, "UTC", resp.Timezone)
	})

	t.Run("confirmed same slot bookings reduce capacity", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc.BufferBeforeMinutes = 0
		f.serviceRepo.svc.BufferAfterMinutes = 0
		f.serviceRepo.svc.ConcurrencyEnabled = true
		f.serviceRepo.svc.Capacity = 3
		f.serviceRepo.svc.MaxConcurrency = 3

		tenOClock := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
		tenThirty := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
		f.bookingRepo.bookings = []*domain.Booking{
			{ServiceID: 1, HostID: 10, StartTime: tenOClock, EndTime: tenThirty, Status: domain.StatusConfirmed},
			{ServiceID: 1, HostID: 10, StartTime: tenOClock, EndTime: tenThirty, Status: domain.StatusConfirmed},
		}

		resp, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)

		var found *Slot
		for i := range resp.Slots {
			if resp.Slots[i].StartTime.Equal(tenOClock) {
				found = &resp.Slots[i]
				break
			}
		}
		require.NotNil(t, found, "slot 10:00-10:30 must remain bookable")
		assert.Equal(t, 1, found.RemainingCapacity)
		assert.Equal(t, 3, found.TotalCapacity)
	})

	t.Run("unavailable calendar degrades to partial result", func(t *testing.T) {
		f := newFixture(now)
		f.hostRepo.settings.CalendarID = ptr.Ptr("host-calendar")
		f.busySource.err = errors.New("freebusy: timeout")

		resp, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)

		assert.True(t, resp.Partial)
		assert.NotEmpty(t, resp.Slots)
		assert.Equal(t, []string{string(domain.BusySourceExternalCalendar)}, f.metrics.partials)
	})

	t.Run("external busy intervals filter slots", func(t *testing.T) {
		f := newFixture(now)
		f.hostRepo.settings.CalendarID = ptr.Ptr("host-calendar")
		f.busySource.intervals = []domain.BusyInterval{{
			Start: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		}}

		resp, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Slots)

		assert.False(t, resp.Partial)
		assert.False(t, resp.Slots[0].StartTime.Before(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("calendar not queried without calendar id", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)
		assert.Zero(t, f.busySource.calls)
	})

	t.Run("closed day returns empty slot list", func(t *testing.T) {
		f := newFixture(now)
		f.availRepo.exceptions = []*domain.DateException{{HostID: 10, Date: monday, Unavailable: true}}

		resp, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
		assert.False(t, resp.Partial)
	})

	t.Run("unavailable exception closes the day for non utc host", func(t *testing.T) {
		f := newFixture(now)
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		f.hostRepo.settings.Timezone = "Europe/Berlin"
		f.availRepo.exceptions = []*domain.DateException{{
			HostID:      10,
			Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
			Unavailable: true,
		}}

		resp, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("service not found", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc = nil

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 99, Date: monday})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("host not found", func(t *testing.T) {
		f := newFixture(now)
		f.hostRepo.settings = nil

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday})
		assert.ErrorIs(t, err, ErrHostNotFound)
	})

	t.Run("past date rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday.AddDate(0, 0, -1)})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("date beyond booking horizon rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday.AddDate(0, 0, 31)})
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("zero advance days means no horizon", func(t *testing.T) {
		f := newFixture(now)
		f.serviceRepo.svc.AdvanceBookingDays = 0

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 1, Date: monday.AddDate(0, 0, 364)})
		assert.NoError(t, err)
	})

	t.Run("invalid service id rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.uc.Execute(ctx, &Request{ServiceID: 0, Date: monday})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
