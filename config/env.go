package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultDBDriver       = "mongo"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDatabase  = "bistroDb"
	defaultRedisAddr      = "localhost:6379"
	defaultJWTSecret      = "change-me-in-production"
	defaultTokenTTL       = "168h"
	defaultAppPort        = "5000"
	defaultAppEnv         = "local"
	defaultCurrency       = "usd"
	defaultAllowedOrigins = "http://localhost:3000"
	defaultRateLimit      = "200"
	defaultCacheTTL       = "5m"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// HTTPOptions holds the settings that used to drift between deployments of the
// server. They are explicit configuration now.
type HTTPOptions struct {
	AllowedOrigins             []string
	RequireAuthOnPaymentIntent bool
}

// Load reads config/app.json, then .env, then the process environment.
// Later sources win. It only runs once per process.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":                        defaultAppEnv,
		"APP_PORT":                       defaultAppPort,
		"DB_DRIVER":                      defaultDBDriver,
		"MONGO_URI":                      defaultMongoURI,
		"MONGO_DATABASE":                 defaultMongoDatabase,
		"REDIS_ADDR":                     defaultRedisAddr,
		"REDIS_PASSWORD":                 "",
		"CACHE_TTL":                      defaultCacheTTL,
		"JWT_SECRET":                     defaultJWTSecret,
		"TOKEN_TTL":                      defaultTokenTTL,
		"STRIPE_SECRET_KEY":              "",
		"PAYMENT_CURRENCY":               defaultCurrency,
		"VERIFY_PAYMENTS":                "true",
		"ALLOWED_ORIGINS":                defaultAllowedOrigins,
		"REQUIRE_AUTH_ON_PAYMENT_INTENT": "true",
		"RATE_LIMIT_PER_MINUTE":          defaultRateLimit,
		"TRUST_PROXY":                    "false",
		"LOG_MONGO_URI":                  "",
	}
}

// ── App ──────────────────────────────────────────────────────────────────────

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

// Validate rejects development-only settings when running in production: the
// built-in JWT secret, and a missing Stripe key, which would leave the sandbox
// processor confirming every payment.
func Validate() error {
	if !IsProduction() {
		return nil
	}
	var errs []error
	if JWTSecret() == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if StripeSecretKey() == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY must be set in production"))
	}
	return errors.Join(errs...)
}

// ── Storage backends ─────────────────────────────────────────────────────────

// DatabaseDriver is "mongo" or "memory". Unknown values fall back to mongo.
func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDBDriver))
	switch driver {
	case "mongo", "memory":
		return driver
	default:
		return defaultDBDriver
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// CacheTTL is how long catalog listings stay cached.
func CacheTTL() time.Duration {
	_ = Load()
	return duration("CACHE_TTL", defaultCacheTTL)
}

// LogMongoURI enables mirroring log records into MongoDB when set.
func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// TokenTTL is the lifetime of issued tokens. Seven days unless overridden.
func TokenTTL() time.Duration {
	_ = Load()
	return duration("TOKEN_TTL", defaultTokenTTL)
}

// ── Payments ─────────────────────────────────────────────────────────────────

func StripeSecretKey() string {
	_ = Load()
	return get("STRIPE_SECRET_KEY", "")
}

func PaymentCurrency() string {
	_ = Load()
	return strings.ToLower(get("PAYMENT_CURRENCY", defaultCurrency))
}

// VerifyPayments makes the payment record step re-check the intent with the processor.
func VerifyPayments() bool {
	_ = Load()
	return boolean("VERIFY_PAYMENTS", true)
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func AllowedOrigins() []string {
	_ = Load()
	return list("ALLOWED_ORIGINS", defaultAllowedOrigins)
}

func RequireAuthOnPaymentIntent() bool {
	_ = Load()
	return boolean("REQUIRE_AUTH_ON_PAYMENT_INTENT", true)
}

func RateLimitPerMinute() int {
	_ = Load()
	n, err := strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", defaultRateLimit))
	if err != nil || n <= 0 {
		n, _ = strconv.Atoi(defaultRateLimit)
	}
	return n
}

// TrustProxy makes the rate limiter key clients by the first X-Forwarded-For
// hop. Enable it only behind a proxy that overwrites that header.
func TrustProxy() bool {
	_ = Load()
	return boolean("TRUST_PROXY", false)
}

// HTTP collects the HTTP-facing options in one value.
func HTTP() HTTPOptions {
	return HTTPOptions{
		AllowedOrigins:             AllowedOrigins(),
		RequireAuthOnPaymentIntent: RequireAuthOnPaymentIntent(),
	}
}

// ── Object storage ───────────────────────────────────────────────────────────

func StorageDisk() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:5000/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(os.Environ(), loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case bool:
			s = strconv.FormatBool(v)
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				if ps, ok := p.(string); ok {
					parts = append(parts, ps)
				}
			}
			s = strings.Join(parts, ",")
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if ok {
			out[key] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// mergeEnviron copies process environment variables over keys we already know
// about, so an unrelated PATH or HOME never leaks into Get lookups by accident.
func mergeEnviron(env []string, out map[string]string) {
	for _, kv := range env {
		key, value, ok := parseLine(kv)
		if !ok {
			continue
		}
		if _, known := out[key]; known || strings.HasPrefix(key, "S3_") || strings.HasPrefix(key, "STORAGE_") {
			out[key] = value
		}
	}
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", false
	}

	key := strings.ToUpper(strings.TrimSpace(line[:idx]))
	value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func boolean(key string, fallback bool) bool {
	b, err := strconv.ParseBool(get(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}

func duration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(get(key, fallback))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func list(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(get(key, fallback), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a key for the rest of the process. Tests and CLI flags use it.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
