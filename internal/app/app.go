package app

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/controller"
	"docdot_backend/internal/llm"
	"docdot_backend/internal/ranking"
	"docdot_backend/internal/repository"
	"docdot_backend/internal/service"
	"docdot_backend/internal/timer"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/configwatcher"
	"docdot_backend/pkg/database"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"docdot_backend/pkg/security"
	"docdot_backend/pkg/tracing"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	repos           *repositories
	configCallbacks []func(*config.Config)
	tracer          *sdktrace.TracerProvider

	// ctx lives as long as the process; background work stops when it is cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	user     *repository.UserRepository
	stats    *repository.StatsRepository
	badge    *repository.BadgeRepository
	tutor    *repository.TutorRepository
	lecture  *repository.LectureRepository
	question *repository.QuestionRepository
}

type services struct {
	user        *service.UserService
	badge       *service.BadgeService
	leaderboard *service.LeaderboardService
	stats       *service.StatsService
	timer       *service.TimerService
	tutor       *service.TutorService
	lecture     *service.LectureService
	question    *service.QuestionService
	hub         *service.EventHub
}

type controllers struct {
	quiz        *controller.QuizController
	stats       *controller.StatsController
	leaderboard *controller.LeaderboardController
	achievement *controller.AchievementController
	timer       *controller.TimerController
	tutor       *controller.TutorController
	lecture     *controller.LectureController
	question    *controller.QuestionController
	user        *controller.UserController
	event       *controller.EventController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		stats:    repository.NewStatsRepository(db),
		badge:    repository.NewBadgeRepository(db),
		tutor:    repository.NewTutorRepository(db),
		lecture:  repository.NewLectureRepository(db),
		question: repository.NewQuestionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.hub = service.NewEventHub(rdb)
	go s.hub.Run()

	s.user = service.NewUserService(repos.user)

	s.badge = service.NewBadgeService(repos.badge, repos.stats)
	s.badge.Events = s.hub

	// A typed nil must not reach the optional cache field.
	var cache service.LeaderboardCache
	var timerStore timer.Store = timer.NewMemoryStore()
	if rdb != nil {
		cache = repository.NewLeaderboardCache(rdb, cfg.Leaderboard.CacheTTL)
		timerStore = repository.NewTimerStore(rdb)
	}
	s.leaderboard = service.NewLeaderboardService(repos.stats, repos.user, cache, cfg.Leaderboard)
	s.badge.Leaderboard = s.leaderboard

	s.stats = service.NewStatsService(repos.stats, s.badge, s.leaderboard)

	s.timer = service.NewTimerService(a.ctx, timerStore, s.stats, service.TimerConfigFrom(cfg.Timer))
	s.timer.Events = s.hub

	provider, err := llm.NewProvider(a.ctx, cfg.AI)
	if err != nil {
		logger.Log.Warn("AI provider unavailable, tutor and lecture notes will degrade", zap.Error(err))
		provider = llm.NewMockProvider()
	}
	s.tutor = service.NewTutorService(repos.tutor, provider, cfg.AI)

	if version, err := util.GetFFmpegVersion(); err != nil {
		logger.Log.Warn("ffmpeg not found, lecture processing will fail", zap.Error(err))
	} else {
		logger.Log.Info("ffmpeg detected", zap.String("version", firstLine(version)))
	}
	storage := service.NewStorageProvider(a.ctx, &cfg.Storage)
	s.lecture = service.NewLectureService(repos.lecture, storage, provider, cfg.Lecture)
	s.lecture.Events = s.hub
	s.lecture.Start(a.ctx)

	s.question = service.NewQuestionService(repos.question, cfg.Questions)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		quiz:        controller.NewQuizController(s.stats),
		stats:       controller.NewStatsController(s.stats),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		achievement: controller.NewAchievementController(s.badge),
		timer:       controller.NewTimerController(s.timer),
		tutor:       controller.NewTutorController(s.tutor),
		lecture:     controller.NewLectureController(s.lecture),
		question:    controller.NewQuestionController(s.question),
		user:        controller.NewUserController(s.user),
		event:       controller.NewEventController(s.hub),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			a.resetWindows(s)
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				if n := s.timer.Evict(); n > 0 {
					logger.Log.Debug("Evicted idle timers", zap.Int("count", n))
				}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			n, err := s.lecture.Requeue(a.ctx)
			if err != nil {
				logger.Log.Error("Lecture requeue failed", zap.Error(err))
			} else if n > 0 {
				logger.Log.Info("Requeued unfinished lectures", zap.Int("count", n))
			}
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	if a.ConfigDir != "" {
		go func() {
			err := configwatcher.WatchConfig(a.ctx, config.ConfigFile(a.ConfigDir), func(cfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(cfg)
				}
			})
			if err != nil {
				logger.Log.Warn("Config hot reload disabled", zap.Error(err))
			}
		}()
	}
}

// resetWindows zeroes weekly and monthly XP whose window has passed.
func (a *App) resetWindows(s *services) {
	now := time.Now()
	n, err := a.repos.stats.ResetExpiredWindows(a.ctx, ranking.WeekStart(now), ranking.MonthStart(now))
	if err != nil {
		logger.Log.Error("XP window reset failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Log.Info("XP windows reset", zap.Int64("users", n))
		s.leaderboard.Invalidate(a.ctx)
	}
}

// NewApp connects to the database and redis, runs migrations when asked and wires
// every component.
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db, cfg.Questions.SeedFile); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, running without cache and pub/sub", zap.Error(err))
			rdb = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
		Redis:     rdb,
		ctx:       ctx,
		cancel:    cancel,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	monitoring.Init()

	app.repos = app.initRepositories(db)
	app.services = app.initServices(app.repos, cfg, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.leaderboard.UpdateConfig(newCfg.Leaderboard)
		app.services.timer.UpdateConfig(service.TimerConfigFrom(newCfg.Timer))
		app.services.question.UpdateConfig(newCfg.Questions)
	})

	app.startBackgroundTasks(app.services)

	return app, nil
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.cancel()
		return fmt.Errorf("listen: %w", err)
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
	return nil
}

// Close stops background work, persists running timers and flushes traces.
func (a *App) Close(ctx context.Context) {
	a.cancel()
	if a.services != nil {
		a.services.timer.Shutdown(ctx)
		a.services.lecture.Wait()
		a.services.hub.Stop()
	}
	if err := tracing.Shutdown(ctx, a.tracer); err != nil {
		logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Sync()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
