package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	completeBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_booking"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	createSlotHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_slot"
	deleteSlotHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_slot"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getDoctorBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_doctor_bookings"
	getPatientBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_patient_bookings"
	getSlotHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_slot"
	updateSlotCapacityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_slot_capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	sequenceCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/sequence"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	sequenceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/sequence"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/jobs"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/idallocator"
	slotsService "github.com/m04kA/SMC-AppointmentService/internal/service/slots"
	cancelBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// rateLimitIdleTTL время простоя, после которого ключ ограничителя вытесняется
const rateLimitIdleTTL = 10 * time.Minute

// slotStore хранилище слотов, общее для всех use case и сервисов
type slotStore interface {
	createBookingUC.SlotRepository
	cancelBookingUC.SlotRepository
	getAvailableSlotsUC.SlotRepository
	slotsService.SlotRepository
}

// bookingStore хранилище бронирований
type bookingStore interface {
	createBookingUC.BookingRepository
	cancelBookingUC.BookingRepository
	bookingsService.BookingRepository
	slotsService.BookingCounter
	sequenceCache.Seeder
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
	Close() error
}

func main() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.toml"
	}
	configPath := flag.String("config", defaultConfig, "path to the TOML config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s (storage=%s, sequence=%s)", *configPath, cfg.Storage.Backend, cfg.Sequence.Backend)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилища и транзакции
	var (
		slots       slotStore
		bookings    bookingStore
		txMgr       txManager
		wrappedDB   *dbmetrics.DB
		seqCleaner  jobs.SequenceCleaner
		seqCounter  idallocator.Counter
		redisClient *redis.Client
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		slots = memory.NewSlotStore()
		bookings = memory.NewBookingStore()
		txMgr = memory.NewTxManager()
		log.Warn("In-memory storage: data is lost on restart")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Metrics.Enabled {
			wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
			log.Info("Database metrics collection started")
		} else {
			wrappedDB = dbmetrics.Wrap(db, nil)
		}

		slots = slotRepo.NewRepository(wrappedDB)
		bookings = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	}

	// Счётчик номеров бронирований
	switch cfg.Sequence.Backend {
	case config.BackendMemory:
		counter := memory.NewSequenceCounter()
		seqCounter, seqCleaner = counter, counter

	case config.BackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Sequence.RedisAddr,
			Password: cfg.Sequence.RedisPassword,
			DB:       cfg.Sequence.RedisDB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Sequence.RedisAddr, err)
		}

		// Ключи дней истекают сами, задача очистки не нужна
		seqCounter = sequenceCache.NewCounter(redisClient, bookings,
			sequenceCache.WithTTL(time.Duration(cfg.Sequence.RetentionDays)*24*time.Hour))
		log.Info("Booking sequence counter on redis %s db=%d", cfg.Sequence.RedisAddr, cfg.Sequence.RedisDB)

	default:
		counter := sequenceRepo.NewRepository(wrappedDB)
		seqCounter, seqCleaner = counter, counter
	}

	idAllocator := idallocator.NewService(seqCounter, cfg.Sequence.Backend, location, metricsCollector, log)

	// Интеграции
	var directoryClient createBookingUC.DirectoryClient
	if cfg.Directory.URL != "" {
		directoryClient = directory.NewClient(cfg.Directory.URL, time.Duration(cfg.Directory.Timeout)*time.Second, log)
		log.Info("Directory client initialized (url=%s timeout=%ds)", cfg.Directory.URL, cfg.Directory.Timeout)
	} else {
		log.Info("Directory URL is empty, bookings are stored without names")
	}

	var publisher eventPublisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = amqpPublisher
		log.Info("Booking events are published to exchange %s", cfg.Events.Exchange)
	}
	defer publisher.Close()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookings, publisher, txMgr, metricsCollector, log)
	slotSvc := slotsService.NewService(slots, bookings, txMgr, location, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		slots,
		bookings,
		idAllocator,
		directoryClient,
		publisher,
		txMgr,
		metricsCollector,
		location,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookings,
		slots,
		publisher,
		txMgr,
		metricsCollector,
		cfg.Booking.CancellationWindow(),
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(slots, txMgr, location, log)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getPatientBookings := getPatientBookingsHandler.NewHandler(bookingSvc, log)
	getDoctorBookings := getDoctorBookingsHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getSlot := getSlotHandler.NewHandler(slotSvc, log)
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	updateSlotCapacity := updateSlotCapacityHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, rateLimitIdleTTL)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты врача
	api.HandleFunc("/doctors/{doctorId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Слот по ID
	api.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.Handle("/bookings", limiter.Middleware(http.HandlerFunc(createBooking.Handle))).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/patients/{patientId}/bookings", getPatientBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/bookings", getDoctorBookings.Handle).Methods(http.MethodGet)

	// --- Расписание (для сотрудников клиники) ---
	protected.HandleFunc("/slots", createSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}/capacity", updateSlotCapacity.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// Служебные задачи
	scheduler := jobs.NewScheduler(location, log)
	if seqCleaner != nil {
		if err := scheduler.AddSequenceCleanup(cfg.Jobs.SequenceCleanupCron, seqCleaner, cfg.Sequence.RetentionDays); err != nil {
			log.Fatal("Failed to schedule jobs: %v", err)
		}
	}
	if err := scheduler.AddRateLimitCleanup(cfg.Jobs.RateLimitCleanupCron, limiter); err != nil {
		log.Fatal("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("Background jobs did not finish before shutdown timeout")
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
