package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProcessingSync  = "sync"
	ProcessingAsync = "async"

	StorageCloudinary = "cloudinary"
	StorageS3         = "s3"
)

type Config struct {
	App struct {
		Name           string `mapstructure:"name"`
		Port           string `mapstructure:"port"`
		Env            string `mapstructure:"env"`
		PublicBaseURL  string `mapstructure:"public_base_url"`
		ProcessingMode string `mapstructure:"processing_mode"`

		// TrustedProxies lists the proxy addresses or CIDRs allowed to set
		// X-Forwarded-For. Empty means the peer address is the client.
		TrustedProxies []string `mapstructure:"trusted_proxies"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Upload struct {
		MaxBytes        int64 `mapstructure:"max_bytes"`
		MaxTextChars    int   `mapstructure:"max_text_chars"`
		RateLimitPerMin int   `mapstructure:"rate_limit_per_min"`
		RateLimitBurst  int   `mapstructure:"rate_limit_burst"`
	} `mapstructure:"upload"`
	LLM struct {
		BaseURL        string        `mapstructure:"base_url"`
		APIKey         string        `mapstructure:"api_key"`
		Model          string        `mapstructure:"model"`
		Temperature    float32       `mapstructure:"temperature"`
		MaxTokens      int           `mapstructure:"max_tokens"`
		Timeout        time.Duration `mapstructure:"timeout"`
		JSONMode       bool          `mapstructure:"json_mode"`
		CircuitBreaker struct {
			Enabled          bool          `mapstructure:"enabled"`
			MaxRequests      uint32        `mapstructure:"max_requests"`
			Interval         time.Duration `mapstructure:"interval"`
			Timeout          time.Duration `mapstructure:"timeout"`
			MinRequests      uint32        `mapstructure:"min_requests"`
			FailureThreshold float64       `mapstructure:"failure_threshold"`
		} `mapstructure:"circuit_breaker"`
	} `mapstructure:"llm"`
	Storage struct {
		Provider string `mapstructure:"provider"`
		Folder   string `mapstructure:"folder"`
	} `mapstructure:"storage"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	S3 struct {
		Region        string `mapstructure:"region"`
		Bucket        string `mapstructure:"bucket"`
		Endpoint      string `mapstructure:"endpoint"`
		AccessKey     string `mapstructure:"access_key"`
		SecretKey     string `mapstructure:"secret_key"`
		PublicBaseURL string `mapstructure:"public_base_url"`
		UsePathStyle  bool   `mapstructure:"use_path_style"`
	} `mapstructure:"s3"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "portfolio-ai")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.processing_mode", ProcessingSync)

	v.SetDefault("redis.cache_ttl", 24*time.Hour)
	v.SetDefault("kafka.group_id", "resume-processor-group")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)

	v.SetDefault("upload.max_bytes", 5*1024*1024)
	v.SetDefault("upload.max_text_chars", 12000)
	v.SetDefault("upload.rate_limit_per_min", 10)
	v.SetDefault("upload.rate_limit_burst", 3)

	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama3-8b-8192")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.json_mode", false)
	v.SetDefault("llm.circuit_breaker.enabled", true)
	v.SetDefault("llm.circuit_breaker.max_requests", 1)
	v.SetDefault("llm.circuit_breaker.interval", time.Minute)
	v.SetDefault("llm.circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("llm.circuit_breaker.min_requests", 5)
	v.SetDefault("llm.circuit_breaker.failure_threshold", 0.6)

	v.SetDefault("storage.provider", StorageCloudinary)
	v.SetDefault("storage.folder", "resumes")
	v.SetDefault("s3.region", "auto")
}

// LoadConfig reads .env, an optional config.yaml and the environment, in that
// order of precedence from lowest to highest. paths are extra directories to
// search, which lets tests point at the module root.
func LoadConfig(paths ...string) (cfg Config, err error) {
	envFiles := []string{".env"}
	for _, p := range paths {
		envFiles = append(envFiles, p+"/.env")
	}
	for _, f := range envFiles {
		if loadErr := godotenv.Load(f); loadErr == nil {
			break
		}
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(".")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if readErr := v.ReadInConfig(); readErr != nil {
		log.Printf("note: config.yaml not found, using env and defaults: %v", readErr)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.public_base_url", "APP_PUBLIC_BASE_URL")
	v.BindEnv("app.processing_mode", "PROCESSING_MODE")
	v.BindEnv("app.trusted_proxies", "APP_TRUSTED_PROXIES")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.cache_ttl", "REDIS_CACHE_TTL")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")

	v.BindEnv("upload.max_bytes", "UPLOAD_MAX_BYTES")
	v.BindEnv("upload.rate_limit_per_min", "UPLOAD_RATE_LIMIT_PER_MIN")

	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.api_key", "LLM_API_KEY", "GROQ_API_KEY")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.timeout", "LLM_TIMEOUT")
	v.BindEnv("llm.json_mode", "LLM_JSON_MODE")

	v.BindEnv("storage.provider", "STORAGE_PROVIDER")
	v.BindEnv("storage.folder", "STORAGE_FOLDER")
	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("s3.access_key", "S3_ACCESS_KEY")
	v.BindEnv("s3.secret_key", "S3_SECRET_KEY")
	v.BindEnv("s3.public_base_url", "S3_PUBLIC_BASE_URL")
	v.BindEnv("s3.use_path_style", "S3_USE_PATH_STYLE")

	v.BindEnv("jaeger.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	if err = v.Unmarshal(&cfg); err != nil {
		return
	}

	// list variables arrive from the environment as one comma separated string
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.App.TrustedProxies = splitList(cfg.App.TrustedProxies)
	return
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) IsAsync() bool {
	return c.App.ProcessingMode == ProcessingAsync
}
