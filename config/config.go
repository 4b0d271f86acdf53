package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	TokenTTLHours      int
	RateLimitPerMinute int
	AllowedOrigins     []string
	OAuthRedirectBase  string
	// Database: DBDriver is one of mysql, postgres, sqlite
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLitePath  string
	// OAuth providers
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	// Gin framework configuration
	GinMode string
	GinPath string
	// SMTP for sign-up confirmation mails
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool
	// Redis for caching, token revocation and registration throttling
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Registration hardening
	RegisterMaxPerIPPerDay     int
	RegisterAttemptCooldownSec int
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> environment variable overrides
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Printf("ignoring config/config.json: %v", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	if loaded {
		c := cfg
		mu.RUnlock()
		return c
	}
	mu.RUnlock()
	return Load()
}

// Use installs c as the active configuration after filling defaults.
// Embedders and tests call it instead of Load.
func Use(c AppConfig) AppConfig {
	applyDefaults(&c)
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
	return c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into out if present. Returns error only for invalid JSON.
// Both grouped sections ({"app": {...}, "database": {...}}) and flat keys are accepted.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	// flat keys live at the root; grouped sections are merged on top of them
	sections := []map[string]any{raw}
	for _, name := range []string{"app", "gin", "database", "redis", "smtp", "log", "oauth", "register"} {
		if sec, ok := raw[name].(map[string]any); ok {
			sections = append(sections, sec)
		}
	}
	for _, sec := range sections {
		applySection(sec, out)
	}
	return nil
}

func applySection(m map[string]any, out *AppConfig) {
	setString := func(key string, dst *string) {
		if v, ok := m[key].(string); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		switch t := m[key].(type) {
		case float64:
			*dst = int(t)
		case string:
			if i, err := strconv.Atoi(t); err == nil {
				*dst = i
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := m[key].(bool); ok {
			*dst = v
		}
	}
	setList := func(key string, dst *[]string) {
		arr, ok := m[key].([]any)
		if !ok {
			return
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		if len(res) > 0 {
			*dst = res
		}
	}

	setString("AppPort", &out.AppPort)
	setString("JWTSecret", &out.JWTSecret)
	setInt("TokenTTLHours", &out.TokenTTLHours)
	setInt("RateLimitPerMinute", &out.RateLimitPerMinute)
	setList("AllowedOrigins", &out.AllowedOrigins)
	setString("OAuthRedirectBase", &out.OAuthRedirectBase)

	setString("Mode", &out.GinMode)
	setString("GinMode", &out.GinMode)
	setString("GinPath", &out.GinPath)

	setString("DBDriver", &out.DBDriver)
	setString("DatabaseURI", &out.DatabaseURI)
	setString("DBHost", &out.DBHost)
	setString("DBPort", &out.DBPort)
	setString("DBUser", &out.DBUser)
	setString("DBPassword", &out.DBPassword)
	setString("DBName", &out.DBName)
	setString("SQLitePath", &out.SQLitePath)

	setString("GitHubClientID", &out.GitHubClientID)
	setString("GitHubClientSecret", &out.GitHubClientSecret)
	setString("GoogleClientID", &out.GoogleClientID)
	setString("GoogleClientSecret", &out.GoogleClientSecret)

	setString("SMTPHost", &out.SMTPHost)
	setInt("SMTPPort", &out.SMTPPort)
	setString("SMTPUsername", &out.SMTPUsername)
	setString("SMTPPassword", &out.SMTPPassword)
	setString("SMTPFrom", &out.SMTPFrom)
	setString("SMTPFromName", &out.SMTPFromName)
	setBool("SMTPTLS", &out.SMTPTLS)

	setString("RedisHost", &out.RedisHost)
	setInt("RedisPort", &out.RedisPort)
	setInt("RedisDB", &out.RedisDB)
	setString("RedisPassword", &out.RedisPassword)
	setInt("CacheTTLSeconds", &out.CacheTTLSeconds)

	setString("LogLevel", &out.LogLevel)
	setString("LogPath", &out.LogPath)
	setInt("LogMaxSizeMB", &out.LogMaxSizeMB)
	setInt("LogMaxBackups", &out.LogMaxBackups)
	setInt("LogMaxAgeDays", &out.LogMaxAgeDays)
	setBool("LogCompress", &out.LogCompress)

	setInt("RegisterMaxPerIPPerDay", &out.RegisterMaxPerIPPerDay)
	setInt("RegisterAttemptCooldownSec", &out.RegisterAttemptCooldownSec)
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 72
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.OAuthRedirectBase == "" {
		c.OAuthRedirectBase = "http://localhost:8080"
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "planner"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/planner.db"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 3600
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RegisterMaxPerIPPerDay == 0 {
		c.RegisterMaxPerIPPerDay = 5
	}
	if c.RegisterAttemptCooldownSec == 0 {
		c.RegisterAttemptCooldownSec = 10
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	strs := map[string]*string{
		"APP_PORT":                &c.AppPort,
		"JWT_SECRET":              &c.JWTSecret,
		"OAUTH_REDIRECT_BASE_URL": &c.OAuthRedirectBase,
		"GIN_MODE":                &c.GinMode,
		"GIN_PATH":                &c.GinPath,
		"DB_DRIVER":               &c.DBDriver,
		"DATABASE_URI":            &c.DatabaseURI,
		"DB_HOST":                 &c.DBHost,
		"DB_PORT":                 &c.DBPort,
		"DB_USER":                 &c.DBUser,
		"DB_PASSWORD":             &c.DBPassword,
		"DB_NAME":                 &c.DBName,
		"SQLITE_PATH":             &c.SQLitePath,
		"GITHUB_CLIENT_ID":        &c.GitHubClientID,
		"GITHUB_CLIENT_SECRET":    &c.GitHubClientSecret,
		"GOOGLE_CLIENT_ID":        &c.GoogleClientID,
		"GOOGLE_CLIENT_SECRET":    &c.GoogleClientSecret,
		"SMTP_HOST":               &c.SMTPHost,
		"SMTP_USERNAME":           &c.SMTPUsername,
		"SMTP_PASSWORD":           &c.SMTPPassword,
		"SMTP_FROM":               &c.SMTPFrom,
		"SMTP_FROM_NAME":          &c.SMTPFromName,
		"REDIS_HOST":              &c.RedisHost,
		"REDIS_PASSWORD":          &c.RedisPassword,
		"LOG_LEVEL":               &c.LogLevel,
		"LOG_PATH":                &c.LogPath,
	}
	for key, dst := range strs {
		if v := getEnv(key, ""); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TOKEN_TTL_HOURS":               &c.TokenTTLHours,
		"RATE_LIMIT_PER_MINUTE":         &c.RateLimitPerMinute,
		"SMTP_PORT":                     &c.SMTPPort,
		"REDIS_PORT":                    &c.RedisPort,
		"REDIS_DB":                      &c.RedisDB,
		"CACHE_TTL_SECONDS":             &c.CacheTTLSeconds,
		"LOG_MAX_SIZE_MB":               &c.LogMaxSizeMB,
		"LOG_MAX_BACKUPS":               &c.LogMaxBackups,
		"LOG_MAX_AGE_DAYS":              &c.LogMaxAgeDays,
		"REGISTER_MAX_PER_IP_PER_DAY":   &c.RegisterMaxPerIPPerDay,
		"REGISTER_ATTEMPT_COOLDOWN_SEC": &c.RegisterAttemptCooldownSec,
	}
	for key, dst := range ints {
		if v := getEnv(key, ""); v != "" {
			*dst = mustParseInt(v)
		}
	}

	if v := getEnv("SMTP_TLS", ""); v != "" {
		c.SMTPTLS = v == "true"
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
