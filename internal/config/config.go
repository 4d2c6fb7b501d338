package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		accessKeyStatus,
		secretKeyStatus,
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// Config holds the resolved application configuration.
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob / S3 (exported plan documents)
	Blob BlobConfig

	// Diet plans
	PlanMaxDurationDays int
	PlanMaxMealTypes    int
	PlanMaxOptions      int

	// Drafts / auto-save
	DraftTTLHours    int
	DraftDebounceMs  int
	SearchDebounceMs int

	// Catalog
	CatalogPageSize int
	CatalogMaxItems int

	// Exports
	ExportsMaxPerClient int

	// Journal
	JournalWaterDefaultTargetMl int
	JournalStepsDefaultTarget   int
	JournalMaxEntriesPerDay     int

	// Authentication & Authorization
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// Export delivery
	EmailSenderMode string // local | smtp | resend
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPUseTLS      bool
	ResendAPIKey    string
	ResendFrom      string

	// Migrations
	RunMigrationsOnStartup bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 ----------
	blobMode := parseBlobMode("BLOB_MODE", BlobModeLocal)

	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	s3Cfg := S3Config{
		Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
		Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
		AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		PresignTTLSeconds: s3PresignTTL,
		PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
	}

	// ---------- Plans ----------
	planMaxDuration := envInt("PLAN_MAX_DURATION_DAYS", 90)
	if planMaxDuration <= 0 {
		planMaxDuration = 90
	}
	planMaxMealTypes := envInt("PLAN_MAX_MEAL_TYPES", 12)
	planMaxOptions := envInt("PLAN_MAX_OPTIONS_PER_MEAL", 10)

	// ---------- Drafts ----------
	draftTTLHours := envInt("DRAFT_TTL_HOURS", 24)
	if draftTTLHours <= 0 {
		draftTTLHours = 24
	}
	draftDebounceMs := envInt("DRAFT_DEBOUNCE_MS", 2000)
	if draftDebounceMs <= 0 {
		draftDebounceMs = 2000
	}
	searchDebounceMs := envInt("SEARCH_DEBOUNCE_MS", 300)
	if searchDebounceMs <= 0 {
		searchDebounceMs = 300
	}

	// ---------- Catalog ----------
	catalogPageSize := envInt("CATALOG_PAGE_SIZE", 20)
	if catalogPageSize <= 0 {
		catalogPageSize = 20
	}
	catalogMaxItems := envInt("CATALOG_MAX_ITEMS", 2000)

	// ---------- Exports ----------
	exportsMaxPerClient := envInt("EXPORTS_MAX_PER_CLIENT", 50)

	// ---------- Journal ----------
	waterDefaultTarget := envInt("JOURNAL_WATER_DEFAULT_TARGET_ML", 2000)
	if waterDefaultTarget <= 0 {
		waterDefaultTarget = 2000
	}
	stepsDefaultTarget := envInt("JOURNAL_STEPS_DEFAULT_TARGET", 8000)
	journalMaxEntries := envInt("JOURNAL_MAX_ENTRIES_PER_DAY", 100)

	// ---------- Auth ----------
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = "none"
	}
	if authMode != "none" && authMode != "dev" {
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = "none"
	}
	authRequired := authMode != "none" && (os.Getenv("AUTH_REQUIRED") == "1" || strings.EqualFold(os.Getenv("AUTH_REQUIRED"), "true"))

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "nutridesk"
	}

	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)

	// ---------- Export delivery ----------
	emailSenderMode := strings.ToLower(strings.TrimSpace(os.Getenv("EMAIL_SENDER_MODE")))
	if emailSenderMode == "" {
		emailSenderMode = "local"
	}
	if emailSenderMode != "local" && emailSenderMode != "smtp" && emailSenderMode != "resend" {
		log.Printf("WARNING: unknown EMAIL_SENDER_MODE=%q, fallback to local", emailSenderMode)
		emailSenderMode = "local"
	}
	resendAPIKey := strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	resendFrom := strings.TrimSpace(os.Getenv("RESEND_FROM"))
	if resendFrom == "" {
		resendFrom = "NutriDesk <onboarding@resend.dev>"
	}
	if emailSenderMode == "resend" && resendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is required when EMAIL_SENDER_MODE=resend")
	}
	smtpHost := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	smtpPort := envInt("SMTP_PORT", 587)
	if smtpPort <= 0 {
		smtpPort = 587
	}
	smtpFrom := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if smtpFrom == "" {
		smtpFrom = "NutriDesk <no-reply@yourdomain.com>"
	}

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: BlobConfig{Mode: blobMode, S3: s3Cfg},

		PlanMaxDurationDays: planMaxDuration,
		PlanMaxMealTypes:    planMaxMealTypes,
		PlanMaxOptions:      planMaxOptions,

		DraftTTLHours:    draftTTLHours,
		DraftDebounceMs:  draftDebounceMs,
		SearchDebounceMs: searchDebounceMs,

		CatalogPageSize: catalogPageSize,
		CatalogMaxItems: catalogMaxItems,

		ExportsMaxPerClient: exportsMaxPerClient,

		JournalWaterDefaultTargetMl: waterDefaultTarget,
		JournalStepsDefaultTarget:   stepsDefaultTarget,
		JournalMaxEntriesPerDay:     journalMaxEntries,

		AuthMode:      authMode,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,

		EmailSenderMode: emailSenderMode,
		SMTPHost:        smtpHost,
		SMTPPort:        smtpPort,
		SMTPUsername:    strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:    strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		SMTPFrom:        smtpFrom,
		SMTPUseTLS:      parseBoolEnv("SMTP_USE_TLS"),
		ResendAPIKey:    resendAPIKey,
		ResendFrom:      resendFrom,

		RunMigrationsOnStartup: runMigrationsOnStartup,
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
