package create_booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlko/HBP-SchedulingService/internal/api/middleware"
	"github.com/avlko/HBP-SchedulingService/internal/domain"
	createBooking "github.com/avlko/HBP-SchedulingService/internal/usecase/create_booking"
)

type fakeUseCase struct {
	resp    *createBooking.Response
	err     error
	lastReq *createBooking.Request
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, uc *fakeUseCase, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := middleware.Auth(http.HandlerFunc(NewHandler(uc, nopLogger{}).Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	groupID := uuid.New()

	validBody := `{"serviceId":1,"startTime":"2026-03-02T10:00:00Z","clientName":"Ivan"}`

	t.Run("created booking returned with 201", func(t *testing.T) {
		uc := &fakeUseCase{resp: &createBooking.Response{Bookings: []*domain.Booking{{
			ID:        7,
			ServiceID: 1,
			HostID:    10,
			ClientID:  42,
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Status:    domain.StatusConfirmed,
		}}}}

		rec := doRequest(t, uc, "42", validBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp CreateBookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, int64(7), resp.Bookings[0].ID)
		assert.Equal(t, "2026-03-02T10:00:00Z", resp.Bookings[0].StartTime)
		assert.Equal(t, "confirmed", resp.Bookings[0].Status)
		assert.Nil(t, resp.Bookings[0].RecurrenceGroupID)

		// ClientID берется из аутентификации, не из тела
		require.NotNil(t, uc.lastReq)
		assert.Equal(t, int64(42), uc.lastReq.ClientID)
	})

	t.Run("series response carries recurrence group", func(t *testing.T) {
		uc := &fakeUseCase{resp: &createBooking.Response{Bookings: []*domain.Booking{
			{ID: 1, StartTime: start, EndTime: start.Add(30 * time.Minute), Status: domain.StatusConfirmed, RecurrenceGroupID: &groupID},
			{ID: 2, StartTime: start.AddDate(0, 0, 7), EndTime: start.AddDate(0, 0, 7).Add(30 * time.Minute), Status: domain.StatusConfirmed, RecurrenceGroupID: &groupID},
		}}}

		body := `{"serviceId":1,"startTime":"2026-03-02T10:00:00Z","recurrenceCount":2}`
		rec := doRequest(t, uc, "42", body)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp CreateBookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Bookings, 2)
		require.NotNil(t, resp.Bookings[0].RecurrenceGroupID)
		assert.Equal(t, groupID.String(), *resp.Bookings[0].RecurrenceGroupID)
	})

	t.Run("missing auth header", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, "", validBody)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, "42", `{"serviceId":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, "42", `{"serviceId":1,"startTime":"2026-03-02T10:00:00Z","clientId":99}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad start time format", func(t *testing.T) {
		rec := doRequest(t, &fakeUseCase{}, "42", `{"serviceId":1,"startTime":"02.03.2026 10:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			code int
		}{
			{"slot not available", createBooking.ErrSlotNotAvailable, http.StatusConflict},
			{"recurrence conflict", createBooking.ErrRecurrenceConflict, http.StatusConflict},
			{"recurrence not allowed", createBooking.ErrRecurrenceNotAllowed, http.StatusBadRequest},
			{"service not found", createBooking.ErrServiceNotFound, http.StatusNotFound},
			{"host not found", createBooking.ErrHostNotFound, http.StatusNotFound},
			{"invalid input", createBooking.ErrInvalidInput, http.StatusBadRequest},
			{"internal error", createBooking.ErrInternal, http.StatusInternalServerError},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := doRequest(t, &fakeUseCase{err: tc.err}, "42", validBody)
				assert.Equal(t, tc.code, rec.Code)
			})
		}
	})
}
