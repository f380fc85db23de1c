package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/fluentspeak/config"
	"github.com/yoockh/fluentspeak/internal/api/handlers"
	"github.com/yoockh/fluentspeak/internal/api/middleware"
	"github.com/yoockh/fluentspeak/internal/api/routes"
	"github.com/yoockh/fluentspeak/internal/cache"
	"github.com/yoockh/fluentspeak/internal/logger"
	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/providers/llm"
	"github.com/yoockh/fluentspeak/internal/providers/stt"
	"github.com/yoockh/fluentspeak/internal/realtime"
	mongorepo "github.com/yoockh/fluentspeak/internal/repositories/mongo"
	pgrepo "github.com/yoockh/fluentspeak/internal/repositories/postgres"
	"github.com/yoockh/fluentspeak/internal/services"
	"github.com/yoockh/fluentspeak/internal/storage"
	"github.com/yoockh/fluentspeak/internal/stutter"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	srvCfg, err := config.LoadServer()
	if err != nil {
		log.WithError(err).Fatal("server config")
	}
	rtCfg, err := config.LoadRealtime()
	if err != nil {
		log.WithError(err).Fatal("realtime config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	if err := config.InitPostgres(log); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	if err := config.MigratePostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL migrate error")
	}
	log.Info("PostgreSQL connected")

	// Init Redis (optional)
	var suggestionCache cache.Cache
	switch err := config.InitRedis(); {
	case errors.Is(err, config.ErrNotConfigured):
		log.Info("Redis not configured; using in-process suggestion cache")
	case err != nil:
		log.WithError(err).Warn("Redis unavailable; using in-process suggestion cache")
	default:
		suggestionCache = cache.NewRedisCache(config.RedisClient, cache.DefaultPrefix)
		defer config.RedisClient.Close()
		log.Info("Redis connected")
	}
	if suggestionCache == nil {
		suggestionCache = cache.NewMemoryCache(4096)
	}

	obs := realtime.Observers{Metrics: metrics.DefaultMetrics, Logger: log}

	// Init MongoDB (optional)
	var sessionSvc services.SessionService
	switch err := config.InitMongo(); {
	case errors.Is(err, config.ErrNotConfigured):
		log.Info("MongoDB not configured; session audit disabled")
	case err != nil:
		log.WithError(err).Warn("MongoDB unavailable; session audit disabled")
	default:
		if err := config.EnsureMongoIndexes(); err != nil {
			log.WithError(err).Warn("MongoDB index bootstrap failed")
		}
		db := config.MongoDatabase()
		sessionSvc = services.NewSessionService(mongorepo.NewSessionRepo(db))
		obs.Audit = sessionSvc
		obs.Turns = services.NewTurnLogService(mongorepo.NewTurnLogRepo(db), rtCfg.TurnLogTTL)
		defer disconnectMongo(log)
		log.Info("MongoDB connected")
	}

	speech, err := stt.NewGoogleSpeech(ctx, stt.GoogleSpeechConfig{
		SampleRateHz: int32(rtCfg.SampleRateHz),
		Channels:     int32(rtCfg.Channels),
		Model:        srvCfg.STTModel,
	})
	if err != nil {
		log.WithError(err).Fatal("speech client")
	}
	defer speech.Close()

	gemini, err := llm.NewVertexGemini(ctx, srvCfg.GCPProject, srvCfg.GCPLocation, srvCfg.GeminiModel)
	if err != nil {
		log.WithError(err).Fatal("vertex client")
	}
	defer gemini.Close()

	var archive realtime.Archiver
	if srvCfg.GCSBucket != "" {
		up, err := storage.NewGCSUploader(ctx, srvCfg.GCSBucket, srvCfg.GCSPrefix)
		if err != nil {
			log.WithError(err).Warn("GCS unavailable; transcript archive disabled")
		} else {
			defer up.Close()
			archive = services.NewTranscriptArchive(up)
		}
	}

	transcriber := services.NewTranscriptionService(speech, rtCfg.Language, rtCfg.ExternalCallTimeout, metrics.DefaultMetrics)
	suggester := services.NewSuggestionService(gemini, suggestionCache, rtCfg.ExternalCallTimeout, metrics.DefaultMetrics)
	coach := services.NewCoachService(gemini, rtCfg.ExternalCallTimeout, metrics.DefaultMetrics)

	scenarioRepo := pgrepo.NewScenarioRepo(config.PostgresDB)
	convSvc := services.NewConversationService(pgrepo.NewConversationRepo(config.PostgresDB), scenarioRepo)
	scenarioSvc := services.NewScenarioService(scenarioRepo)

	ws := handlers.NewWSHandler(handlers.WSOptions{
		Base:      ctx,
		Assistant: rtCfg.Suggestion(),
		AssistantDeps: realtime.SuggestionDeps{
			Transcriber: transcriber,
			Suggester:   suggester,
			Classifier:  stutter.Default,
		},
		Coach: rtCfg.Coach(),
		CoachDeps: realtime.CoachDeps{
			Transcriber:   transcriber,
			Replier:       coach,
			Conversations: convSvc,
			Archive:       archive,
		},
		Observers:      obs,
		AllowedOrigins: srvCfg.AllowedOrigins,
	})

	deps := routes.Deps{
		Conversation: handlers.NewConversationHandler(convSvc),
		Scenario:     handlers.NewScenarioHandler(scenarioSvc),
		WS:           ws,
	}
	if sessionSvc != nil {
		deps.Session = handlers.NewSessionHandler(sessionSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + srvCfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	// websocket sessions are hijacked and invisible to Shutdown
	if err := ws.Drain(shutdownCtx); err != nil {
		log.WithError(err).Warn("realtime sessions still open at exit")
	}
}

func disconnectMongo(log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := config.MongoClient.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("MongoDB disconnect")
	}
}
