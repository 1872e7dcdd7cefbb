package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownSeconds int           `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI              string `mapstructure:"uri"`
	Database         string `mapstructure:"database"`
	UsersCollection  string `mapstructure:"users_collection"`
	PlantsCollection string `mapstructure:"plants_collection"`
}

type RedisConf struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	Secret           string `mapstructure:"secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
}

type SecurityConf struct {
	PasswordHashCost       int `mapstructure:"password_hash_cost"`
	LoginRateLimit         int `mapstructure:"login_rate_limit"`
	LoginRateWindowSeconds int `mapstructure:"login_rate_window_seconds"`
}

type CORSConf struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type S3Conf struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	MaxImageSide   int    `mapstructure:"max_image_side"`
}

type BreakerConf struct {
	MaxFailures     uint32 `mapstructure:"max_failures"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

type ConsulConf struct {
	Addr           string   `mapstructure:"addr"`
	ServiceName    string   `mapstructure:"service_name"`
	ServiceAddress string   `mapstructure:"service_address"`
	Tags           []string `mapstructure:"tags"`
}

type Config struct {
	App      AppConf      `mapstructure:"app"`
	Mongo    MongoConf    `mapstructure:"mongo"`
	Redis    RedisConf    `mapstructure:"redis"`
	JWT      JWTConf      `mapstructure:"jwt"`
	Security SecurityConf `mapstructure:"security"`
	CORS     CORSConf     `mapstructure:"cors"`
	Kafka    KafkaConf    `mapstructure:"kafka"`
	S3       S3Conf       `mapstructure:"s3"`
	Breaker  BreakerConf  `mapstructure:"breaker"`
	Consul   ConsulConf   `mapstructure:"consul"`

	// derived
	AccessTTL       time.Duration `mapstructure:"-"`
	ShutdownTimeout time.Duration `mapstructure:"-"`
	LoginRateWindow time.Duration `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smart-irrigation")
	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", 8000)
	v.SetDefault("app.read_timeout", 15*time.Second)
	v.SetDefault("app.write_timeout", 15*time.Second)
	v.SetDefault("app.idle_timeout", 60*time.Second)
	v.SetDefault("app.request_timeout", 10*time.Second)
	v.SetDefault("app.shutdown_seconds", 10)

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "smart_irrigation")
	v.SetDefault("mongo.users_collection", "users")
	v.SetDefault("mongo.plants_collection", "plants")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl_minutes", 30)

	v.SetDefault("security.password_hash_cost", 12)
	v.SetDefault("security.login_rate_limit", 10)
	v.SetDefault("security.login_rate_window_seconds", 60)

	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization"})
	v.SetDefault("cors.allow_credentials", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "plant.events")

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.max_upload_bytes", 10<<20)
	v.SetDefault("s3.max_image_side", 1024)

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.interval_seconds", 60)
	v.SetDefault("breaker.timeout_seconds", 30)

	v.SetDefault("consul.addr", "")
	v.SetDefault("consul.service_name", "smart-irrigation")
	v.SetDefault("consul.service_address", "")
	v.SetDefault("consul.tags", []string{"api"})
}

// Load reads path (optional), then .env, then the environment. Env keys are the
// upper-cased config keys with dots replaced by underscores, e.g. JWT_SECRET.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.AccessTTL = time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.LoginRateWindow = time.Duration(cfg.Security.LoginRateWindowSeconds) * time.Second

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.App.Port <= 0 {
		return errors.New("app.port is missing or invalid")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		return errors.New("jwt.access_ttl_minutes must be positive")
	}
	if cfg.Mongo.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if cfg.Mongo.Database == "" {
		return errors.New("mongo.database is missing")
	}
	if cfg.App.RequestTimeout <= 0 {
		return errors.New("app.request_timeout must be positive")
	}
	if cfg.CORS.AllowCredentials {
		for _, o := range cfg.CORS.AllowOrigins {
			if o == "*" {
				return errors.New("cors.allow_credentials cannot be combined with a wildcard origin")
			}
		}
	}
	if cfg.S3.Bucket != "" && cfg.S3.Region == "" {
		return errors.New("s3.region is required when s3.bucket is set")
	}
	return nil
}

func (c *Config) Development() bool { return c.App.Env == "development" }
