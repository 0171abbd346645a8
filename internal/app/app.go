package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suggestion_board_backend/internal/config"
	"suggestion_board_backend/internal/controller"
	"suggestion_board_backend/internal/repository"
	"suggestion_board_backend/internal/service"

	"suggestion_board_backend/pkg/liststore"
	"suggestion_board_backend/pkg/logger"
	"suggestion_board_backend/pkg/monitoring"
	"suggestion_board_backend/pkg/security"
	"suggestion_board_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	Store  *liststore.Client

	services *services
}

type repositories struct {
	schema     *repository.SchemaRepository
	suggestion *repository.SuggestionRepository
	vote       *repository.VoteRepository
	comment    *repository.CommentRepository
	taxonomy   *repository.TaxonomyRepository
}

type services struct {
	suggestion *service.SuggestionService
	vote       *service.VoteService
	comment    *service.CommentService
	taxonomy   *service.TaxonomyService
}

type controllers struct {
	suggestion *controller.SuggestionController
	vote       *controller.VoteController
	comment    *controller.CommentController
	taxonomy   *controller.TaxonomyController
	user       *controller.UserController
	health     *controller.HealthController
}

func (a *App) initRepositories(store *liststore.Client, cfg *config.Config) *repositories {
	schema := repository.NewSchemaRepository(store)
	return &repositories{
		schema:     schema,
		suggestion: repository.NewSuggestionRepository(store, schema, &cfg.Board),
		vote:       repository.NewVoteRepository(store, schema, &cfg.Board),
		comment:    repository.NewCommentRepository(store, schema, &cfg.Board),
		taxonomy:   repository.NewTaxonomyRepository(store, schema, &cfg.Board),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}
	s.taxonomy = service.NewTaxonomyService(repos.taxonomy)
	s.suggestion = service.NewSuggestionService(repos.suggestion, repos.vote, repos.comment, s.taxonomy)
	s.vote = service.NewVoteService(repos.vote, repos.suggestion, s.taxonomy, cfg.Board.VoteQuota, cfg.Board.QuotaPerCategory)
	s.comment = service.NewCommentService(repos.comment, repos.suggestion)
	return s
}

func (a *App) initControllers(s *services, store *liststore.Client) *controllers {
	return &controllers{
		suggestion: controller.NewSuggestionController(s.suggestion),
		vote:       controller.NewVoteController(s.vote),
		comment:    controller.NewCommentController(s.comment),
		taxonomy:   controller.NewTaxonomyController(s.taxonomy),
		user:       controller.NewUserController(),
		health:     controller.NewHealthController(store),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	store := liststore.New(&liststore.Config{
		BaseURL: cfg.ListStore.BaseURL,
		SiteID:  cfg.ListStore.SiteID,
		Token:   cfg.ListStore.Token,
		Timeout: cfg.ListStore.RequestTimeout,
	}, logger.Log)

	app := &App{
		Config: cfg,
		Store:  store,
	}

	repos := app.initRepositories(store, cfg)

	if cfg.ForceProvision || cfg.ProvisionOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := repos.schema.EnsureAll(ctx, repository.BoardSpecs(&cfg.Board)); err != nil {
			logger.Log.Fatal("Failed to provision lists", zap.Error(err))
		}
		logger.Log.Info("List provisioning completed")
	}

	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, store)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("suggestion-board", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// ApplyConfig picks up the hot-reloadable knobs from a freshly loaded
// config. Structural settings (port, list names, middleware) take effect
// on restart only.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.services.vote.SetQuota(cfg.Board.VoteQuota, cfg.Board.QuotaPerCategory)
	a.Config.Board.VoteQuota = cfg.Board.VoteQuota
	a.Config.Board.QuotaPerCategory = cfg.Board.QuotaPerCategory
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
