package bootstrap

import (
	"context"
	"log"

	"github.com/klarkent2022/smart-irrigation/internal/breaker"
	"github.com/klarkent2022/smart-irrigation/internal/config"
	"github.com/klarkent2022/smart-irrigation/internal/database"
	"github.com/klarkent2022/smart-irrigation/internal/discovery"
	"github.com/klarkent2022/smart-irrigation/internal/events"
	"github.com/klarkent2022/smart-irrigation/internal/handlers"
	"github.com/klarkent2022/smart-irrigation/internal/metrics"
	"github.com/klarkent2022/smart-irrigation/internal/middleware"
	"github.com/klarkent2022/smart-irrigation/internal/repository"
	"github.com/klarkent2022/smart-irrigation/internal/routes"
	"github.com/klarkent2022/smart-irrigation/internal/services"
	"github.com/klarkent2022/smart-irrigation/internal/storage"
	"github.com/klarkent2022/smart-irrigation/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type AppContext struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger
	Mongo  *mongo.Client
	Redis  *redis.Client
	Kafka  *events.KafkaPublisher
	Consul *discovery.Registrar
	Deps   routes.Deps
}

type CleanupFn func(context.Context)

// Init connects every backing service and wires the handlers. Redis, Kafka
// and S3 are optional; Mongo is not.
func Init(ctx context.Context, configPath string) (*AppContext, CleanupFn, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLogger(cfg.Development())
	if err != nil {
		return nil, nil, err
	}
	sugar := logger.Sugar()

	app := &AppContext{Config: cfg, Logger: logger, Sugar: sugar}
	sugar.Infof("Starting %s in %s environment", cfg.App.Name, cfg.App.Env)

	tokens, err := utils.NewTokenService(cfg.JWT.Secret, cfg.AccessTTL)
	if err != nil {
		return nil, nil, err
	}
	sugar.Infof("Access tokens expire after %s", tokens.TTL())

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		return nil, nil, err
	}
	app.Mongo = mongoClient

	// from here on a failure must release what is already open
	cleanup := func(ctx context.Context) {
		if app.Consul != nil {
			if cerr := app.Consul.Deregister(); cerr != nil {
				sugar.Errorf("Consul deregister error: %v", cerr)
			}
		}
		if app.Kafka != nil {
			if cerr := app.Kafka.Close(); cerr != nil {
				sugar.Errorf("Kafka writer close error: %v", cerr)
			}
		}
		if app.Redis != nil {
			if cerr := app.Redis.Close(); cerr != nil {
				sugar.Errorf("Redis client close error: %v", cerr)
			}
		}
		if cerr := mongoClient.Disconnect(ctx); cerr != nil {
			sugar.Errorf("MongoDB disconnect error: %v", cerr)
		}
		if cerr := logger.Sync(); cerr != nil {
			log.Printf("Logger sync error: %v", cerr)
		}
	}
	fail := func(err error) (*AppContext, CleanupFn, error) {
		cleanup(context.Background())
		return nil, nil, err
	}

	retry := repository.DefaultRetryPolicy()
	userRepo, err := repository.NewMongoUserRepo(ctx, db, cfg.Mongo.UsersCollection, retry)
	if err != nil {
		return fail(err)
	}
	plantRepo, err := repository.NewMongoPlantRepo(ctx, db, cfg.Mongo.PlantsCollection, retry)
	if err != nil {
		return fail(err)
	}

	var limiter middleware.Limiter
	if cfg.Redis.Enabled {
		rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err != nil {
			return fail(err)
		}
		app.Redis = rdb
		limiter = middleware.NewRedisLimiter(rdb, "ratelimit:login", cfg.Security.LoginRateLimit, cfg.LoginRateWindow)
	} else {
		sugar.Info("Redis disabled, login rate limit is per instance")
		limiter = middleware.NewLocalLimiter(cfg.Security.LoginRateLimit, cfg.LoginRateWindow)
	}

	var opts []services.PlantOption
	if len(cfg.Kafka.Brokers) > 0 {
		app.Kafka = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, breaker.New("kafka", cfg.Breaker, logger))
		opts = append(opts, services.WithStatusPublisher(app.Kafka))
		sugar.Infof("Publishing status changes to %s", cfg.Kafka.Topic)
	} else {
		sugar.Warn("Kafka brokers not configured. Status change events will be skipped.")
	}

	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3Store(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Endpoint, cfg.S3.PublicBaseURL,
			breaker.New("s3", cfg.Breaker, logger))
		if err != nil {
			return fail(err)
		}
		opts = append(opts, services.WithImageStore(store, cfg.S3.MaxUploadBytes, cfg.S3.MaxImageSide))
	} else {
		sugar.Warn("S3 bucket not configured. Image uploads will be rejected.")
	}

	userSvc := services.NewUserService(userRepo, tokens, cfg.Security.PasswordHashCost, logger)
	plantSvc := services.NewPlantService(plantRepo, logger, opts...)
	health := func(ctx context.Context) bool {
		return database.CheckConnection(ctx, mongoClient, sugar)
	}

	if cfg.Consul.Addr != "" {
		reg, err := discovery.Register(cfg.Consul.Addr, discovery.Registration{
			ServiceName: cfg.Consul.ServiceName,
			Address:     cfg.Consul.ServiceAddress,
			Port:        cfg.App.Port,
			Tags:        cfg.Consul.Tags,
			HealthPath:  "/health",
		}, logger)
		if err != nil {
			// the service still works without discovery
			sugar.Warnf("Consul registration failed: %v", err)
		} else {
			app.Consul = reg
		}
	}

	app.Deps = routes.Deps{
		Handler:      handlers.NewHandler(userSvc, plantSvc, health, logger),
		Tokens:       tokens,
		LoginLimiter: limiter,
		Metrics:      metrics.New(),
		Logger:       logger,
	}
	return app, cleanup, nil
}
