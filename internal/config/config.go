package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	Env             string // "dev" | "prod"
	MongoURI        string
	MongoDB         string
	JWTSecret       string
	ActivationKey   string
	AccessTTLMin    int
	RefreshTTLDays  int
	RedisAddr       string
	RateLimitPerMin int
	RabbitURL       string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleScopes       string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

func Load() Config {
	return Config{
		Port:            getenv("APP_PORT", "8080"),
		Env:             getenv("APP_ENV", "dev"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "velox_db"),
		JWTSecret:       getenv("JWT", "default_secret_key"),
		ActivationKey:   getenv("ACTIVATION_KEY", getenv("JWT", "default_secret_key")),
		AccessTTLMin:    atoi(getenv("ACCESS_TTL_MIN", "15")),
		RefreshTTLDays:  atoi(getenv("REFRESH_TTL_DAYS", "14")),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "10")),
		RabbitURL:       getenv("RABBIT_URL", ""),

		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getenv("GOOGLE_REDIRECT_URI", ""),
		GoogleScopes:       getenv("GOOGLE_OAUTH_SCOPES", "openid,email,profile,https://www.googleapis.com/auth/calendar"),

		OpenAIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o-mini"),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
