package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Mailjet        MailjetConfig
	Redis          RedisConfig
	Cache          CacheConfig
	Recommendation RecommendationConfig
	Bonus          BonusConfig
}

type AppConfig struct {
	Name                    string
	Version                 string
	Environment             string
	AppDeploymentUrl        string
	AppEmailVerificationKey string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// CacheConfig is the single place cache TTLs live; services receive them
// instead of scattering per-call constants.
type CacheConfig struct {
	BonusTTL          time.Duration
	BonusListTTL      time.Duration
	PlayerTTL         time.Duration
	PlayerClaimsTTL   time.Duration
	PlayerFeaturesTTL time.Duration
	RecommendationTTL time.Duration
}

type RecommendationConfig struct {
	MaxGames     int
	ValidityDays int
}

type BonusConfig struct {
	ClaimValidityDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                    getEnv("APP_NAME", "Player Engagement API"),
			Version:                 getEnv("APP_VERSION", "1.0.0"),
			Environment:             getEnv("APP_ENV", "development"),
			AppDeploymentUrl:        getEnv("APP_DEPLOYMENT_URL", ""),
			AppEmailVerificationKey: getEnv("APP_EMAIL_VERIFICATION_KEY", ""),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "player_engagement"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", ""),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Cache: CacheConfig{
			BonusTTL:          getEnvMinutes("CACHE_BONUS_TTL_MINUTES", 30),
			BonusListTTL:      getEnvMinutes("CACHE_BONUS_LIST_TTL_MINUTES", 10),
			PlayerTTL:         getEnvMinutes("CACHE_PLAYER_TTL_MINUTES", 30),
			PlayerClaimsTTL:   getEnvMinutes("CACHE_PLAYER_CLAIMS_TTL_MINUTES", 5),
			PlayerFeaturesTTL: getEnvMinutes("CACHE_PLAYER_FEATURES_TTL_MINUTES", 60),
			RecommendationTTL: getEnvMinutes("CACHE_RECOMMENDATION_TTL_MINUTES", 30),
		},
		Recommendation: RecommendationConfig{
			MaxGames:     getEnvInt("RECOMMENDATION_MAX_GAMES", 5),
			ValidityDays: getEnvInt("RECOMMENDATION_VALIDITY_DAYS", 7),
		},
		Bonus: BonusConfig{
			ClaimValidityDays: getEnvInt("BONUS_CLAIM_VALIDITY_DAYS", 7),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvMinutes(key string, defaultVal int) time.Duration {
	return time.Duration(getEnvInt(key, defaultVal)) * time.Minute
}
