package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"talleres-system/config"
	"talleres-system/handlers"
	"talleres-system/monitoring"
	"talleres-system/security"
	"talleres-system/services"
	"talleres-system/utils"

	_ "talleres-system/migrations"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	grid, err := cfg.GridConfig()
	if err != nil {
		log.Fatalf("Invalid grid configuration: %v", err)
	}

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (optional: only when keys are configured)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	monitor := monitoring.NewMonitor(ctx, redisClient)
	calendarService := services.NewCalendarService(redisClient, pn, monitor, cfg, grid)
	clasesService := services.NewClasesService(app, calendarService, monitor)
	asistenciaService := services.NewAsistenciaService(app, redisClient, monitor, cfg.CheckinCodeTTL)
	reportesService, err := services.NewReportesService(app, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize reports service: %v", err)
	}

	// Initialize handlers
	calendarioHandler := handlers.NewCalendarioHandler(app, calendarService)
	clasesHandler := handlers.NewClasesHandler(app, clasesService, cfg.GenerationHorizonDays)
	asistenciaHandler := handlers.NewAsistenciaHandler(app, asistenciaService)
	reportesHandler := handlers.NewReportesHandler(app, reportesService)
	adminHandler := handlers.NewAdminHandler(app)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Nightly clase generation
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.GenerationCronSpec, func() {
		if _, err := clasesService.GenerarTodas(ctx, cfg.GenerationHorizonDays); err != nil {
			log.Printf("Scheduled clase generation failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid generation cron spec %q: %v", cfg.GenerationCronSpec, err)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel, scheduler)

	// Keep the cached calendars in sync with schedule edits
	registerInvalidationHooks(app, calendarService, redisClient)

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Calendar endpoints
		e.Router.GET("/api/v1/calendario/horarios", calendarioHandler.GetHorarios)
		e.Router.GET("/api/v1/calendario/clases", calendarioHandler.GetClasesSemana)
		e.Router.GET("/api/v1/talleres/{tallerId}/calendario", calendarioHandler.GetCalendarioTaller)

		// Clase endpoints
		e.Router.POST("/api/v1/clases/generar", clasesHandler.GenerarClases)
		e.Router.GET("/api/v1/talleres/{tallerId}/clases", clasesHandler.GetClasesTaller)

		// Attendance endpoints
		e.Router.POST("/api/v1/clases/{claseId}/asistencia", asistenciaHandler.RegistrarAsistencia)
		e.Router.GET("/api/v1/talleres/{tallerId}/asistencia", asistenciaHandler.ResumenTaller)
		e.Router.GET("/api/v1/talleres/{tallerId}/alumnos/{alumnoId}/asistencia", asistenciaHandler.ResumenAlumno)
		e.Router.POST("/api/v1/clases/{claseId}/checkin/codigo", asistenciaHandler.GenerarCodigo)
		e.Router.POST("/api/v1/clases/{claseId}/checkin", asistenciaHandler.Checkin)

		// Report endpoints
		e.Router.GET("/api/v1/talleres/{tallerId}/exportar/ics", reportesHandler.ExportarICS)
		e.Router.GET("/api/v1/talleres/{tallerId}/reportes/asistencia", reportesHandler.ReporteAsistencia)

		// Admin endpoints
		e.Router.GET("/api/v1/admin/ocupacion", adminHandler.GetOcupacion)
		e.Router.GET("/api/v1/admin/indumentaria/stock-bajo", adminHandler.GetStockBajo)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		if err := reportesService.EnsureBucket(ctx); err != nil {
			log.Printf("Reports bucket not available: %v", err)
		}

		go syncTalleresActivos(ctx, app, redisClient)

		scheduler.Start()

		if cfg.EnableMetrics {
			monitoring.StartMetricsServer(cfg.MetricsPort, security.NewRateLimiter(redisClient))
		}

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// registerInvalidationHooks drops cached layouts whenever a horario, clase or
// taller changes, and keeps the talleres:activos set in Redis current.
func registerInvalidationHooks(app *pocketbase.PocketBase, calendarService *services.CalendarService, redisClient *redis.Client) {
	invalidate := func(e *core.RecordEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		tallerID := e.Record.GetString("taller_id")
		slog.Info("Invalidating calendars", "collection", e.Record.Collection().Name, "taller", tallerID)
		calendarService.InvalidateTaller(context.Background(), tallerID)
		return nil
	}

	for _, collection := range []string{"horarios", "clases"} {
		app.OnRecordAfterCreateSuccess(collection).BindFunc(invalidate)
		app.OnRecordAfterUpdateSuccess(collection).BindFunc(invalidate)
		app.OnRecordAfterDeleteSuccess(collection).BindFunc(invalidate)
	}

	syncActivo := func(e *core.RecordEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		ctx := context.Background()
		if e.Record.GetString("estado") == "activo" {
			redisClient.SAdd(ctx, "talleres:activos", e.Record.Id)
		} else {
			redisClient.SRem(ctx, "talleres:activos", e.Record.Id)
		}
		calendarService.InvalidateTaller(ctx, e.Record.Id)
		return nil
	}

	app.OnRecordAfterCreateSuccess("talleres").BindFunc(syncActivo)
	app.OnRecordAfterUpdateSuccess("talleres").BindFunc(syncActivo)
	app.OnRecordAfterDeleteSuccess("talleres").BindFunc(func(e *core.RecordEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		ctx := context.Background()
		redisClient.SRem(ctx, "talleres:activos", e.Record.Id)
		calendarService.InvalidateTaller(ctx, e.Record.Id)
		return nil
	})
}

// syncTalleresActivos rebuilds the talleres:activos set on startup so the
// gauges survive Redis restarts.
func syncTalleresActivos(ctx context.Context, app *pocketbase.PocketBase, redisClient *redis.Client) {
	talleres, err := app.FindRecordsByFilter("talleres", "estado = 'activo'", "", 0, 0)
	if err != nil {
		log.Printf("Error syncing active talleres: %v", err)
		return
	}

	redisClient.Del(ctx, "talleres:activos")
	for _, taller := range talleres {
		redisClient.SAdd(ctx, "talleres:activos", taller.Id)
	}
	log.Printf("Synced %d active talleres", len(talleres))
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc, scheduler *cron.Cron) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	scheduler.Stop()
	cancel()
}
