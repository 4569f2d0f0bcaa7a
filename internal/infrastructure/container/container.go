// Package container wires the application together with Uber FX.
package container

import (
	"context"

	"github.com/cookease/api/internal/application/auth"
	"github.com/cookease/api/internal/application/cart"
	"github.com/cookease/api/internal/application/ingredient"
	apprecipe "github.com/cookease/api/internal/application/recipe"
	"github.com/cookease/api/internal/application/recommend"
	"github.com/cookease/api/internal/infrastructure/ai/gemini"
	"github.com/cookease/api/internal/infrastructure/cache"
	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/infrastructure/http/handlers"
	"github.com/cookease/api/internal/infrastructure/http/server"
	"github.com/cookease/api/internal/infrastructure/oauth"
	gormrepo "github.com/cookease/api/internal/infrastructure/persistence/gorm"
	"github.com/cookease/api/internal/infrastructure/security"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/cookease/api/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the full dependency graph.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Development: cfg.App.Environment == "development",
		})
	},
)

// DatabaseModule provides the GORM connection.
var DatabaseModule = fx.Provide(
	gormrepo.Connect,
)

// CacheModule provides the cache, Redis when enabled and an in-process
// fallback otherwise.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if cfg.Redis.Enabled {
			return cache.NewRedisCache(cfg, log)
		}
		log.Info("redis disabled, using in-process cache")
		return cache.NewLocalCache(), nil
	},
)

// RepositoryModule provides repository implementations.
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormrepo.NewUserRepository,
		fx.As(new(outbound.UserRepository)),
	),
	fx.Annotate(
		gormrepo.NewRecipeRepository,
		fx.As(new(outbound.RecipeRepository)),
	),
	fx.Annotate(
		gormrepo.NewIngredientRepository,
		fx.As(new(outbound.IngredientRepository)),
	),
)

// ServiceModule provides application services and their adapters.
var ServiceModule = fx.Provide(
	security.NewTokenService,
	fx.Annotate(
		func(cfg *config.Config, log *zap.Logger) *oauth.GoogleProvider {
			return oauth.NewGoogleProvider(cfg, log)
		},
		fx.As(new(outbound.OAuthProvider)),
	),
	fx.Annotate(
		gemini.NewClient,
		fx.As(new(outbound.TextGenerator)),
	),
	auth.NewService,
	apprecipe.NewService,
	ingredient.NewService,
	cart.NewService,
	recommend.NewService,
)

// HTTPModule provides handlers and the server.
var HTTPModule = fx.Provide(
	handlers.NewAuthHandlers,
	handlers.NewRecipeHandlers,
	handlers.NewIngredientHandlers,
	handlers.NewCartHandlers,
	handlers.NewAIHandlers,
	func(
		authH *handlers.AuthHandlers,
		recipeH *handlers.RecipeHandlers,
		ingredientH *handlers.IngredientHandlers,
		cartH *handlers.CartHandlers,
		aiH *handlers.AIHandlers,
	) server.Handlers {
		return server.Handlers{
			Auth:       authH,
			Recipe:     recipeH,
			Ingredient: ingredientH,
			Cart:       cartH,
			AI:         aiH,
		}
	},
	server.New,
)

// LifecycleModule starts and stops the long-lived pieces.
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks ties the HTTP server and database to the fx
// lifecycle.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting application",
				zap.String("name", cfg.App.Name),
				zap.String("environment", cfg.App.Environment),
			)
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("http server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down application")

			if err := srv.Stop(ctx); err != nil {
				log.Error("http server shutdown failed", zap.Error(err))
			}

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("closing database failed", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
