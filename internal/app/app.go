package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/attendance"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/auth"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/config"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/course"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/db"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/health"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/httputil"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/instructor"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/logger"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/messaging"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/middleware"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/report"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/session"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/student"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/telemetry"
	"github.com/elle-sys/automated-attendance-tracking-system/internal/userlog"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
)

// Models lists every table the service owns, in creation order.
var Models = []any{
	(*student.Student)(nil),
	(*instructor.Instructor)(nil),
	(*course.Course)(nil),
	(*session.Session)(nil),
	(*attendance.Record)(nil),
	(*userlog.UserLog)(nil),
}

type App struct {
	config    *config.Config
	engine    *gin.Engine
	server    *http.Server
	db        *bun.DB
	telemetry *telemetry.Telemetry
	producer  *messaging.Producer
	logger    *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version, os.Getenv("ENV"))

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "git_commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, cfg.Env, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	meter := tel.MeterProvider.Meter(ServiceName)
	if err := tel.Metrics.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}
	dependencies := []string{"postgres"}
	if cfg.NATS.URL != "" {
		dependencies = append(dependencies, messaging.Dependency)
	}
	if err := tel.Metrics.Health.RegisterDependencies(meter, dependencies...); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, Models...); err != nil {
		db.Close(database)
		return nil, err
	}

	var producer *messaging.Producer
	if cfg.NATS.URL != "" {
		producer, err = messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger, tel.Metrics.Health)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer, user logs will not be published", "error", err)
			producer = nil
		} else {
			slogLogger.Info("NATS producer initialized successfully", "subject", producer.Subject())
		}
	}

	app, err := newApp(cfg, database, tel, producer, slogLogger)
	if err != nil {
		db.Close(database)
		return nil, err
	}

	slogLogger.Info("application initialized successfully")
	return app, nil
}

// newApp builds services and routes on top of already opened infrastructure.
// producer may be nil.
func newApp(cfg *config.Config, database *bun.DB, tel *telemetry.Telemetry, producer *messaging.Producer, log *slog.Logger) (*App, error) {
	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	adminVerifier, err := auth.NewAdminVerifier(cfg.Admin)
	if err != nil {
		return nil, fmt.Errorf("failed to configure admin credentials: %w", err)
	}
	tokens := auth.NewTokenIssuer(cfg.Admin.JWTSecret, cfg.Admin.Issuer, cfg.Admin.TokenTTL())

	m := tel.Metrics

	var publisher userlog.Publisher
	if producer != nil {
		publisher = producer
	}
	logService := userlog.NewService(userlog.NewRepository(database, m), publisher, log, m)

	studentService := student.NewService(student.NewRepository(database, m), logService)
	instructorService := instructor.NewService(instructor.NewRepository(database, m), logService)
	courseService := course.NewService(course.NewRepository(database, m), studentService, instructorService, log)
	attendanceService := attendance.NewService(attendance.NewRepository(database, m), courseService, studentService, m)
	sessionService := session.NewService(session.NewRepository(database, m), courseService, attendanceService)
	reportService := report.NewService(report.Sources{
		Courses:     courseService,
		Attendance:  attendanceService,
		Students:    studentService,
		Instructors: instructorService,
		Sessions:    sessionService,
	}, report.Clock{Location: loc}, m)

	mw := auth.NewMiddleware(adminVerifier, tokens, instructorService, log)
	requireAdmin := mw.RequireAdmin()
	requireInstructor := mw.RequireInstructor()

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestLogger(log, "/health", "/ready", "/metrics"),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Server.CORSOrigins),
	)

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, httputil.MessageResponse{Message: "Automated Attendance System API"})
	})
	engine.NoRoute(func(c *gin.Context) {
		httputil.RespondError(c, http.StatusNotFound, "Route not found")
	})

	health.NewHandler(database, m).RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(tel.Handler()))

	courseHandler := course.NewHandler(courseService, log)
	sessionHandler := session.NewHandler(sessionService, log)
	reportHandler := report.NewHandler(reportService, log)

	api := engine.Group("/api")

	students := api.Group("/students")
	student.NewHandler(studentService, log, m).RegisterRoutes(students, requireAdmin)
	courseHandler.RegisterStudentRoutes(students)

	instructors := api.Group("/instructors")
	instructor.NewHandler(instructorService, log, m).RegisterRoutes(instructors, requireAdmin)
	reportHandler.RegisterInstructorRoutes(instructors, requireInstructor)

	courseHandler.RegisterRoutes(api.Group("/courses"), mw.RequireStaff())
	attendance.NewHandler(attendanceService, log).RegisterRoutes(api.Group("/attendance"))
	sessionHandler.RegisterRoutes(api.Group("/sessions"), requireInstructor)
	sessionHandler.RegisterRecordRoutes(api.Group("/session-attendance"))

	admin := api.Group("/admin")
	auth.NewHandler(adminVerifier, tokens, log, m).RegisterRoutes(admin)
	adminOnly := admin.Group("", requireAdmin)
	userlog.NewHandler(logService, log).RegisterRoutes(adminOnly)
	reportHandler.RegisterAdminRoutes(adminOnly)

	return &App{
		config:    cfg,
		engine:    engine,
		db:        database,
		telemetry: tel,
		producer:  producer,
		logger:    log,
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.engine
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then closes NATS, the database and the
// meter provider. It keeps going after a failed step and returns every error.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("nats producer: %w", err))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
