package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/uniconnect/api/internal/app/auth"
	appControllers "github.com/uniconnect/api/internal/app/controllers"
	appMigrations "github.com/uniconnect/api/internal/app/migrations"
	appRepos "github.com/uniconnect/api/internal/app/repositories"
	appRoutes "github.com/uniconnect/api/internal/app/routes"
	appServices "github.com/uniconnect/api/internal/app/services"
	"github.com/uniconnect/api/internal/config"
	"github.com/uniconnect/api/internal/db"
	appMiddleware "github.com/uniconnect/api/internal/middleware"
	pkgAuth "github.com/uniconnect/api/internal/pkg/auth"
	"github.com/uniconnect/api/internal/pkg/email"
	"github.com/uniconnect/api/internal/pkg/filestorage"
	"github.com/uniconnect/api/internal/pkg/helpers"
	"github.com/uniconnect/api/internal/pkg/logger"
	"github.com/uniconnect/api/internal/pkg/validation"
	"github.com/uniconnect/api/internal/pkg/websocket"
	"github.com/uniconnect/api/internal/seed"
)

// uploadsRoute is where the router serves the local asset store
const uploadsRoute = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	RegistrationService appServices.RegistrationService
	AccountService      appServices.AccountService
	FriendService       appServices.FriendService
	CommunityService    appServices.CommunityService
	PublicationService  appServices.PublicationService
	CommentService      appServices.CommentService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	FileStorage    *filestorage.LocalStorage
	Mailer         email.Mailer
	Hub            *websocket.Hub
	Realtime       *websocket.Handler
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		configPath = path
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// newMailer selects the delivery driver from configuration
func newMailer(cfg *config.Config) email.Mailer {
	if cfg.Mail.Driver == config.MailDriverSMTP {
		return email.NewSMTPMailer(email.SMTPConfig{
			Host:        cfg.Mail.Host,
			Port:        cfg.Mail.Port,
			Username:    cfg.Mail.Username,
			Password:    cfg.Mail.Password,
			FromName:    cfg.Mail.FromName,
			FromEmail:   cfg.Mail.FromEmail,
			UseTLS:      cfg.Mail.UseTLS,
			Timeout:     helpers.ParseDuration(cfg.Mail.Timeout, 15*time.Second),
			FrontendURL: cfg.Mail.FrontendURL,
		}, logger.Component("mailer"))
	}
	return email.NewLogMailer(cfg.Mail.FrontendURL, logger.Component("mailer"))
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(
		cfg.Server.StoragePath,
		helpers.PublicURL(cfg.Server.PublicBaseURL, uploadsRoute),
		logger.Component("storage"),
	)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	hasher := pkgAuth.NewBcryptHasher(0)
	deps.Mailer = newMailer(cfg)

	if err := seed.CreateDefaultData(ctx, deps.Repos.AccountRepository, deps.Repos.CommunityRepository, hasher, seed.Defaults{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
		Communities:   cfg.Seed.Communities,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	deps.Hub = websocket.NewHub(websocket.DefaultQueueSize, logger.Component("realtime"))
	go deps.Hub.Run()

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.CommunityRepository, deps.Repos.AccountRepository)
	deps.Realtime = websocket.NewHandler(
		deps.Hub,
		deps.AuthzService,
		websocket.NewOriginPolicy(cfg.Server.AllowedOrigins, logger.Component("realtime")),
		logger.Component("realtime"),
	)

	allowedDomains := cfg.Registration.AllowedEmailDomains
	deps.RegistrationService = appServices.NewRegistrationService(
		deps.Repos.AccountRepository,
		hasher,
		deps.Mailer,
		deps.FileStorage,
		allowedDomains,
		logger.Component("registration"),
	)
	deps.AccountService = appServices.NewAccountService(
		deps.Repos.AccountRepository,
		hasher,
		deps.JWTService,
		deps.FileStorage,
		allowedDomains,
		logger.Component("accounts"),
	)
	deps.FriendService = appServices.NewFriendService(deps.Repos.AccountRepository, deps.AuthzService, logger.Component("friends"))
	deps.CommunityService = appServices.NewCommunityService(deps.Repos.CommunityRepository, deps.Hub, logger.Component("communities"))
	deps.PublicationService = appServices.NewPublicationService(
		deps.Repos.PublicationRepository,
		deps.Repos.AccountRepository,
		deps.AuthzService,
		deps.FileStorage,
		deps.Hub,
		logger.Component("publications"),
	)
	deps.CommentService = appServices.NewCommentService(
		deps.Repos.CommentRepository,
		deps.Repos.PublicationRepository,
		deps.Repos.AccountRepository,
		deps.AuthzService,
		deps.Hub,
		logger.Component("comments"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Account:   appControllers.NewAccountController(deps.RegistrationService, deps.AccountService, lgr),
		Friend:    appControllers.NewFriendController(deps.FriendService),
		Community: appControllers.NewCommunityController(deps.CommunityService),
		Content:   appControllers.NewContentController(deps.PublicationService, deps.CommentService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = validation.MaxImageSize
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)

	appRoutes.SetupSwagger(router)
	router.Static(uploadsRoute, deps.FileStorage.BasePath())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Realtime.Subscribe)

	return router
}
