package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/create_booking"
	deleteExceptionHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/delete_exception"
	getAvailabilityHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/get_availability"
	getBookableSlotsHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/get_bookable_slots"
	getBookingHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/get_booking"
	getHostBookingsHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/get_host_bookings"
	getUserBookingsHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/get_user_bookings"
	updateAvailabilityHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/update_availability"
	upsertExceptionHandler "github.com/avlko/HBP-SchedulingService/internal/api/handlers/upsert_exception"
	"github.com/avlko/HBP-SchedulingService/internal/api/middleware"
	"github.com/avlko/HBP-SchedulingService/internal/config"
	availabilityRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/availability"
	bookingRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/booking"
	hostRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/host"
	serviceRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/service"
	"github.com/avlko/HBP-SchedulingService/internal/integrations/googlecalendar"
	availabilityService "github.com/avlko/HBP-SchedulingService/internal/service/availability"
	bookingsService "github.com/avlko/HBP-SchedulingService/internal/service/bookings"
	createBookingUC "github.com/avlko/HBP-SchedulingService/internal/usecase/create_booking"
	getBookableSlotsUC "github.com/avlko/HBP-SchedulingService/internal/usecase/get_bookable_slots"
	"github.com/avlko/HBP-SchedulingService/pkg/dbmetrics"
	"github.com/avlko/HBP-SchedulingService/pkg/logger"
	"github.com/avlko/HBP-SchedulingService/pkg/metrics"
	"github.com/avlko/HBP-SchedulingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level, cfg.Logs.Format)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting HBP-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка БД: с nil-коллектором прозрачна, репозитории и transaction
	// manager всегда работают через неё
	wrappedDB := dbmetrics.Wrap(db, metricsCollector, cfg.Metrics.ServiceName, stopCh)
	if cfg.Metrics.Enabled {
		log.Info("Database metrics collection started")
	}

	// Инициализируем клиента внешнего календаря (nil при выключенной интеграции)
	calendarClient, err := googlecalendar.NewClient(
		cfg.GoogleCalendar.CredentialsFile,
		time.Duration(cfg.GoogleCalendar.Timeout)*time.Second,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize calendar client: %v", err)
	}
	if calendarClient != nil {
		log.Info("Google Calendar busy-time sync enabled (timeout=%ds)", cfg.GoogleCalendar.Timeout)
	} else {
		log.Info("Google Calendar busy-time sync disabled")
	}

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	hostRepository := hostRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		hostRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	// Клиент календаря передаётся явно: при nil внешняя занятость не учитывается
	var busySource getBookableSlotsUC.BusySource
	if calendarClient != nil {
		busySource = calendarClient
	}

	getBookableSlotsUseCase := getBookableSlotsUC.NewUseCase(
		bookingRepository,
		serviceRepository,
		hostRepository,
		availabilityRepository,
		busySource,
		metricsCollector,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		serviceRepository,
		hostRepository,
		availabilityRepository,
		txMgr,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getBookableSlots := getBookableSlotsHandler.NewHandler(getBookableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getHostBookings := getHostBookingsHandler.NewHandler(bookingSvc, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateAvailability := updateAvailabilityHandler.NewHandler(availabilitySvc, log)
	upsertException := upsertExceptionHandler.NewHandler(availabilitySvc, log)
	deleteException := deleteExceptionHandler.NewHandler(availabilitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, stopCh)
		r.Use(rateLimiter.Middleware)
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Бронируемые слоты услуги на день
	api.HandleFunc("/services/{serviceId}/bookable-slots",
		getBookableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/hosts/{hostId}/bookings", getHostBookings.Handle).Methods(http.MethodGet)

	// --- Доступность хоста ---
	protected.HandleFunc("/hosts/{hostId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/hosts/{hostId}/availability/rules", updateAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/hosts/{hostId}/availability/exceptions", upsertException.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/hosts/{hostId}/availability/exceptions/{date}", deleteException.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
