package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App    AppConfig    `toml:"app"`
	Auth   AuthConfig   `toml:"auth"`
	MySQL  MySQLConfig  `toml:"mysql"`
	Redis  RedisConfig  `toml:"redis"`
	Model  ModelConfig  `toml:"model"`
	Geo    GeoConfig    `toml:"geo"`
	Upload UploadConfig `toml:"upload"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr               string `toml:"addr"`
	Password           string `toml:"password"`
	DB                 int    `toml:"db"`
	FacilityTTLSeconds int    `toml:"facility_ttl_seconds"`
}

type ModelConfig struct {
	Path              string `toml:"path"`
	ONNXSharedLibPath string `toml:"onnx_shared_lib_path"`
}

type GeoConfig struct {
	OverpassURL    string `toml:"overpass_url"`
	RadiusMeters   int    `toml:"radius_meters"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxResults     int    `toml:"max_results"`
}

type UploadConfig struct {
	MaxSizeMB int64 `toml:"max_size_mb"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "pneumascan",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 120,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "pneumascan",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr:               "127.0.0.1:6379",
			Password:           "",
			DB:                 0,
			FacilityTTLSeconds: 600,
		},
		Model: ModelConfig{
			Path:              "assets/pneu_cnn_model.onnx",
			ONNXSharedLibPath: "", // use default or set via MODEL_ONNX_LIB
		},
		Geo: GeoConfig{
			OverpassURL:    "https://overpass-api.de/api/interpreter",
			RadiusMeters:   20000,
			TimeoutSeconds: 10,
			MaxResults:     5,
		},
		Upload: UploadConfig{
			MaxSizeMB: 5,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.FacilityTTLSeconds = getEnvAsInt("REDIS_FACILITY_TTL_SECONDS", cfg.Redis.FacilityTTLSeconds)

	cfg.Model.Path = getEnv("MODEL_PATH", cfg.Model.Path)
	cfg.Model.ONNXSharedLibPath = getEnv("MODEL_ONNX_LIB", cfg.Model.ONNXSharedLibPath)

	cfg.Geo.OverpassURL = getEnv("GEO_OVERPASS_URL", cfg.Geo.OverpassURL)
	cfg.Geo.RadiusMeters = getEnvAsInt("GEO_RADIUS_METERS", cfg.Geo.RadiusMeters)
	cfg.Geo.TimeoutSeconds = getEnvAsInt("GEO_TIMEOUT_SECONDS", cfg.Geo.TimeoutSeconds)
	cfg.Geo.MaxResults = getEnvAsInt("GEO_MAX_RESULTS", cfg.Geo.MaxResults)

	cfg.Upload.MaxSizeMB = int64(getEnvAsInt("UPLOAD_MAX_SIZE_MB", int(cfg.Upload.MaxSizeMB)))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
