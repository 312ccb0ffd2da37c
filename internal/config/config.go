package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"storepos/internal/money"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting read from the environment.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	Port        string
	GinMode     string
	JWTSecret   string
	CORSOrigins []string

	StoreName      string
	ReceiptDir     string
	SearchLimit    int
	DefaultTaxRate money.Money
	ReorderLevel   int

	ReorderScanCron string
	SeedSampleData  bool

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	OwnerUsername string
	OwnerPassword string
}

// Load reads configs/.env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	return Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storepos"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		Port:        getEnv("PORT", "8080"),
		GinMode:     os.Getenv("GIN_MODE"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),

		StoreName:      getEnv("STORE_NAME", "GROCERY SHOP"),
		ReceiptDir:     getEnv("RECEIPT_DIR", "receipts"),
		SearchLimit:    getInt("SEARCH_LIMIT", 10),
		DefaultTaxRate: getMoney("DEFAULT_TAX_RATE", "18.00"),
		ReorderLevel:   getInt("REORDER_LEVEL", 10),

		ReorderScanCron: os.Getenv("REORDER_SCAN_CRON"),
		SeedSampleData:  getBool("SEED_SAMPLE_DATA", false),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		OwnerUsername: getEnv("OWNER_USERNAME", "owner"),
		OwnerPassword: os.Getenv("OWNER_PASSWORD"),
	}
}

// DSN assembles the postgres connection URL.
func (c Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// Secret returns the JWT signing key. Release mode refuses the development fallback.
func (c Config) Secret() []byte {
	if c.JWTSecret == "" {
		if c.GinMode == "release" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		return []byte("default_super_secret_key")
	}
	return []byte(c.JWTSecret)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return b
}

func getMoney(key, fallback string) money.Money {
	raw := getEnv(key, fallback)
	m, err := money.Parse(raw)
	if err != nil || m.IsNegative() {
		log.Printf("Invalid %s=%q, using %s", key, raw, fallback)
		return money.MustParse(fallback)
	}
	return m
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
