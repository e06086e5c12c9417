package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string
	BaseURL string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	JWTTTL        time.Duration
	SessionSecret string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	FrontendURL        string
	CORSOrigins        []string

	PaymentGateway       string
	PaymentSuccessRate   float64
	StripeSecretKey      string
	StripePublishableKey string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUser     string
	ScyllaPassword string
	ScyllaCAPath   string

	KafkaBrokers    []string
	KafkaOrderTopic string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ChromePath string
	InvoicePDF bool

	ProductCacheTTL time.Duration
	RequestTimeout  time.Duration
}

// Load charge .env s'il existe puis construit la configuration depuis l'environnement.
func Load() *Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv lit uniquement l'environnement courant.
func FromEnv() *Config {
	port := getEnv("PORT", "5000")
	cfg := &Config{
		Port:    port,
		GinMode: getEnv("GIN_MODE", "debug"),
		BaseURL: getEnv("BASE_URL", "http://localhost:"+port),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "furniro"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret:     getEnv("JWT_SECRET", "super_secret"),
		JWTTTL:        getDuration("JWT_TTL", 7*24*time.Hour),
		SessionSecret: getEnv("SESSION_SECRET", "furniro_session_secret"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),

		PaymentGateway:       getEnv("PAYMENT_GATEWAY", "simulated"),
		PaymentSuccessRate:   getFloat("PAYMENT_SUCCESS_RATE", 0.9),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),

		ElasticURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "furniro-products"),
		MinIOUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		ScyllaHosts:    getList("SCYLLA_HOSTS"),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "furniro_audit"),
		ScyllaUser:     os.Getenv("SCYLLA_USER"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
		ScyllaCAPath:   os.Getenv("SCYLLA_SSL_CA_PATH"),

		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "furniro-orders"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@furniro.com"),

		ChromePath: os.Getenv("CHROME_PATH"),
		InvoicePDF: getEnv("INVOICE_PDF", "true") == "true",

		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 30*time.Minute),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
	}

	cfg.GoogleCallbackURL = getEnv("GOOGLE_CALLBACK_URL", cfg.BaseURL+"/api/auth/google/callback")
	cfg.CORSOrigins = getList("CORS_ORIGINS")
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.FrontendURL}
	}
	return cfg
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) StripeEnabled() bool {
	return c.PaymentGateway == "stripe" && c.StripeSecretKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %v", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %s", key, v, fallback)
		return fallback
	}
	return d
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
