package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	ServerPort   int
	PublicOrigin string

	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	RedisAddr     string
	RedisPassword string

	JWTPublicKey string

	ImagesSizes     map[model.Size]int
	FetchTimeout    time.Duration
	FetchMaxRetries int
	MaxObjectBytes  int64
}

var required = []string{
	"MARIADB_DSN",
	"MARIADB_MAX_OPEN_CONN",
	"MARIADB_MAX_IDLE_CONNS",
	"MARIADB_CONN_MAX_LIFETIME",
	"SERVER_PORT",
	"MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
}

const defaultImagesSizes = "small=150,medium=480,large=1024"

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range required {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("PUBLIC_ORIGIN", "")
	v.SetDefault("IMAGES_SIZES", defaultImagesSizes)
	v.SetDefault("FETCH_TIMEOUT", 10)
	v.SetDefault("FETCH_MAX_RETRIES", 3)
	v.SetDefault("MAX_OBJECT_BYTES", 32<<20)

	sizes, err := ParseImagesSizes(v.GetString("IMAGES_SIZES"))
	if err != nil {
		return nil, fmt.Errorf("IMAGES_SIZES is invalid: %w", err)
	}

	port := v.GetInt("SERVER_PORT")
	origin := strings.TrimRight(v.GetString("PUBLIC_ORIGIN"), "/")
	if origin == "" {
		origin = "http://localhost:" + strconv.Itoa(port)
	}

	return &Settings{
		ServerPort:   port,
		PublicOrigin: origin,

		MariaDBDSN:      v.GetString("MARIADB_DSN"),
		MaxOpenConns:    v.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    v.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(v.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,

		MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		JWTPublicKey: v.GetString("JWT_PUBLIC_KEY"),

		ImagesSizes:     sizes,
		FetchTimeout:    time.Duration(v.GetInt("FETCH_TIMEOUT")) * time.Second,
		FetchMaxRetries: v.GetInt("FETCH_MAX_RETRIES"),
		MaxObjectBytes:  v.GetInt64("MAX_OBJECT_BYTES"),
	}, nil
}

// ParseImagesSizes reads a "small=150,medium=480,large=1024" list into target
// widths. Every thumbnail size must be given a positive width.
func ParseImagesSizes(raw string) (map[model.Size]int, error) {
	out := make(map[model.Size]int, len(model.ThumbnailSizes))
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, width, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q is not name=width", part)
		}
		size, err := model.ParseSize(strings.TrimSpace(name))
		if err != nil || size.IsOriginal() {
			return nil, fmt.Errorf("entry %q has an unknown size", part)
		}
		w, err := strconv.Atoi(strings.TrimSpace(width))
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("entry %q has an invalid width", part)
		}
		out[size] = w
	}
	for _, s := range model.ThumbnailSizes {
		if _, ok := out[s]; !ok {
			return nil, fmt.Errorf("missing width for size %q", s)
		}
	}
	return out, nil
}
