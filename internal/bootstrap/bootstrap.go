package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/campushub/internal/app/auth"
	appControllers "github.com/yigit/campushub/internal/app/controllers"
	appMigrations "github.com/yigit/campushub/internal/app/migrations"
	appRepos "github.com/yigit/campushub/internal/app/repositories"
	appRoutes "github.com/yigit/campushub/internal/app/routes"
	appServices "github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/config"
	"github.com/yigit/campushub/internal/db"
	appMiddleware "github.com/yigit/campushub/internal/middleware"
	pkgAuth "github.com/yigit/campushub/internal/pkg/auth"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/logger"
	"github.com/yigit/campushub/internal/pkg/websocket"
	"github.com/yigit/campushub/internal/seed"
)

// DefaultConfigPath is read when no path is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB             *db.PostgresDB
	Repos          *appRepos.Repositories
	FileStorage    *filestorage.LocalStorage
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	AuthService    *appServices.AuthService
	CatalogService *appServices.CatalogService
	AdminService   *appServices.AdminService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Metrics        *appMiddleware.Metrics
	NotifyHub      *websocket.Hub
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "campushub",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the pool and applies the embedded migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).Up(); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	return database, nil
}

// BuildDependencies initializes repositories, services, controllers and
// middleware, then seeds the configured admin account.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, strings.TrimRight(cfg.Server.PublicBaseURL, "/"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	repos := deps.Repos
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(
		repos.Colleges,
		repos.Companies,
		repos.Events,
		repos.Opportunities,
		repos.Registrations,
	)

	media := appServices.NewMediaService(deps.FileStorage, cfg.Server.MaxUploadBytes, lgr)
	deps.CatalogService = appServices.NewCatalogService(
		repos.Events,
		repos.Opportunities,
		cfg.CatalogCacheTTL(),
		cfg.Catalog.SampleFallback,
		lgr,
	)
	deps.AuthService = appServices.NewAuthService(repos.Accounts, repos.Sessions, deps.JWTService, lgr)
	userService := appServices.NewUserService(repos.Accounts, media, lgr)
	studentService := appServices.NewStudentService(
		repos.Events,
		repos.Opportunities,
		repos.Applications,
		repos.Registrations,
		deps.AuthzService,
		lgr,
	)
	collegeService := appServices.NewCollegeService(
		repos.Colleges,
		repos.Events,
		repos.Opportunities,
		repos.Registrations,
		deps.AuthzService,
		media,
		deps.CatalogService,
		lgr,
	)
	companyService := appServices.NewCompanyService(
		repos.Companies,
		repos.Opportunities,
		repos.Applications,
		deps.AuthzService,
		media,
		deps.CatalogService,
		lgr,
	)
	deps.AdminService = appServices.NewAdminService(appServices.AdminStores{
		Accounts:      repos.Accounts,
		Sessions:      repos.Sessions,
		Colleges:      repos.Colleges,
		Companies:     repos.Companies,
		Events:        repos.Events,
		Opportunities: repos.Opportunities,
		Applications:  repos.Applications,
		Registrations: repos.Registrations,
	}, deps.CatalogService, lgr)
	deps.NotifyHub = websocket.NewHub(cfg.Server.AllowedOrigins, lgr.With().Str("component", "notify").Logger())
	connectionService := appServices.NewConnectionService(repos.Connections, deps.NotifyHub, lgr)
	inquiryService := appServices.NewInquiryService(
		repos.Inquiries,
		repos.Events,
		repos.Opportunities,
		repos.Colleges,
		repos.Companies,
		deps.NotifyHub,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)
	deps.Metrics = appMiddleware.NewMetrics("campushub")

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, lgr),
		User:       appControllers.NewUserController(userService, lgr),
		Catalog:    appControllers.NewCatalogController(deps.CatalogService, lgr),
		Student:    appControllers.NewStudentController(studentService, lgr),
		College:    appControllers.NewCollegeController(collegeService, lgr),
		Company:    appControllers.NewCompanyController(companyService, lgr),
		Admin:      appControllers.NewAdminController(deps.AdminService, lgr),
		Connection: appControllers.NewConnectionController(connectionService, lgr),
		Inquiry:    appControllers.NewInquiryController(inquiryService, lgr),
		Notify:     appControllers.NewNotificationController(deps.NotifyHub, lgr),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := seed.EnsureAdmin(ctx, deps.AdminService, seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		FullName: cfg.Seed.AdminName,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to seed admin account, proceeding anyway...")
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
	appMiddleware.ConfigureValidator()

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes + 1<<20
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
		deps.Metrics.Middleware(),
	)

	router.Static(filestorage.URLPrefix, deps.FileStorage.BasePath())
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/api/health", healthHandler(deps.DB))

	if cfg.Server.EnableSwagger {
		appRoutes.SetupSwagger(router)
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}

// Pinger is satisfied by *db.PostgresDB
type Pinger interface {
	Ping(ctx context.Context) error
}

func healthHandler(database Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
