package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	TMDB     TMDBConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Booking  BookingConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// AuthRateLimit is the number of login/register attempts allowed per IP per minute.
	AuthRateLimit int
	// WorkerPort serves the booking worker's /metrics and /health.
	WorkerPort string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type TMDBConfig struct {
	APIKey      string
	BaseURL     string
	ImageURL    string
	HTTPTimeout time.Duration
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	PublicURL       string
	PresignExpiry   time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Enabled reports whether seat holds should be kept in Redis.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

type RabbitMQConfig struct {
	URL      string
	Queue    string
	Prefetch int
}

type BookingConfig struct {
	HoldTTL            time.Duration
	SeatPriceCents     int64
	ServiceChargeCents int64
	DefaultRows        int
	DefaultSeatsPerRow int
	MaxSeatsPerOrder   int
	HoldStoreCapacity  int
	// CancellationCutoff is how long before the start an order can still be cancelled.
	CancellationCutoff time.Duration
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

func Load() *Config {
	return &Config{
		Env: getEnvOrDefault("GO_ENV", "dev"),
		Server: ServerConfig{
			Port:          getEnvOrDefault("SERVER_PORT", "5000"),
			ReadTimeout:   getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:  getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			AuthRateLimit: getIntOrDefault("AUTH_RATE_LIMIT", 20),
			WorkerPort:    getEnvOrDefault("WORKER_PORT", "5001"),
		},
		Database: DatabaseConfig{
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "5432"),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:          getEnvOrDefault("DB_NAME", "movie_booking"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:    getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
		},
		TMDB: TMDBConfig{
			APIKey:      os.Getenv("TMDB_API_KEY"),
			BaseURL:     getEnvOrDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageURL:    getEnvOrDefault("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p/w500"),
			HTTPTimeout: getDurationOrDefault("TMDB_HTTP_TIMEOUT", 30*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnvOrDefault("AWS_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnvOrDefault("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnvOrDefault("AWS_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnvOrDefault("AWS_BUCKET", "banners"),
			Region:          getEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
			UseSSL:          getBoolOrDefault("AWS_USE_SSL", false),
			PublicURL:       getEnvOrDefault("AWS_URL", "http://localhost:9000/banners"),
			PresignExpiry:   getDurationOrDefault("AWS_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
			TokenTTL:      getDurationOrDefault("JWT_TTL", 24*time.Hour),
			BcryptCost:    getIntOrDefault("BCRYPT_COST", 10),
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
			AdminName:     getEnvOrDefault("ADMIN_NAME", "Administrator"),
		},
		Redis: RedisConfig{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Queue:    getEnvOrDefault("RABBITMQ_QUEUE", "booking.confirmed"),
			Prefetch: getIntOrDefault("RABBITMQ_PREFETCH", 50),
		},
		Booking: BookingConfig{
			HoldTTL:            getDurationOrDefault("BOOKING_HOLD_TTL", 5*time.Minute),
			SeatPriceCents:     int64(getIntOrDefault("BOOKING_SEAT_PRICE_CENTS", 1299)),
			ServiceChargeCents: int64(getIntOrDefault("BOOKING_SERVICE_CHARGE_CENTS", 199)),
			DefaultRows:        getIntOrDefault("BOOKING_DEFAULT_ROWS", 8),
			DefaultSeatsPerRow: getIntOrDefault("BOOKING_DEFAULT_SEATS_PER_ROW", 8),
			MaxSeatsPerOrder:   getIntOrDefault("BOOKING_MAX_SEATS_PER_ORDER", 10),
			HoldStoreCapacity:  getIntOrDefault("BOOKING_HOLD_STORE_CAPACITY", 100000),
			CancellationCutoff: getDurationOrDefault("BOOKING_CANCELLATION_CUTOFF", 0),
		},
		Cache: CacheConfig{
			Size: getIntOrDefault("CACHE_SIZE", 512),
			TTL:  getDurationOrDefault("CACHE_TTL", time.Minute),
		},
	}
}

// DSN returns the key/value PostgreSQL connection string for this database.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "dev" || c.Env == "development"
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Booking.DefaultRows < 1 || c.Booking.DefaultRows > 26 {
		return fmt.Errorf("BOOKING_DEFAULT_ROWS must be between 1 and 26")
	}
	if c.Booking.DefaultSeatsPerRow < 1 || c.Booking.DefaultSeatsPerRow > 50 {
		return fmt.Errorf("BOOKING_DEFAULT_SEATS_PER_ROW must be between 1 and 50")
	}
	if c.MinIO.AccessKeyID == "" {
		return fmt.Errorf("AWS_ACCESS_KEY_ID is required for MinIO")
	}
	if c.MinIO.SecretAccessKey == "" {
		return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required for MinIO")
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required for movie import")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
