package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lunchpool/pickem/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheEnabled                bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	PprofEnabled                bool
	PprofAddr                   string
	SwaggerEnabled              bool
	NFLProvider                 string
	NFLAPIBase                  string
	NFLHTTPTimeout              time.Duration
	NFLMaxRetries               int
	NFLCircuitEnabled           bool
	NFLCircuitFailureCount      int
	NFLCircuitOpenTimeout       time.Duration
	NFLCircuitHalfOpenMaxReq    int
	LiveCacheTTL                time.Duration
	LiveNegativeTTL             time.Duration
	LiveLookBack                time.Duration
	LiveLookAhead               time.Duration
	LiveMaxConcurrent           int
	AccountsEnabled             bool
	AccountsBaseURL             string
	AccountsIntrospectPath      string
	AccountsAdminKey            string
	AccountsTimeout             time.Duration
	AccountsCacheTTL            time.Duration
	AccountsCacheMaxEntries     int
	AccountsCircuitEnabled      bool
	AccountsCircuitFailureCount int
	AccountsCircuitOpenTimeout  time.Duration
	AccountsCircuitHalfOpenMax  int
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	UptraceCaptureRequestBody   bool
	UptraceRequestBodyMaxBytes  int
	BetterStackEnabled          bool
	BetterStackEndpoint         string
	BetterStackToken            string
	BetterStackTimeout          time.Duration
	BetterStackMinLevel         logging.Level
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	InternalJobToken            string
	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetBaseURL         string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int
	JobScheduleInterval         time.Duration
	JobLiveInterval             time.Duration
	JobPreKickoffLead           time.Duration
	JobIdleInterval             time.Duration
	LogLevel                    logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofAddr == "" {
		pprofAddr = ":6060"
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	nflProvider := normalizeProviderName(getEnv("NFL_PROVIDER", ProviderESPN))
	nflHTTPTimeout, err := time.ParseDuration(getEnv("NFL_HTTP_TIMEOUT", "8s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_HTTP_TIMEOUT: %w", err)
	}
	if nflHTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("NFL_HTTP_TIMEOUT must be > 0")
	}
	nflMaxRetries, err := getEnvAsInt("NFL_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_MAX_RETRIES: %w", err)
	}
	if nflMaxRetries < 0 {
		return Config{}, fmt.Errorf("NFL_MAX_RETRIES must be >= 0")
	}
	nflCircuitEnabled, err := strconv.ParseBool(getEnv("NFL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_CIRCUIT_ENABLED: %w", err)
	}
	nflCircuitFailureCount, err := getEnvAsInt("NFL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if nflCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("NFL_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	nflCircuitOpenTimeout, err := time.ParseDuration(getEnv("NFL_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if nflCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("NFL_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	nflCircuitHalfOpenMaxReq, err := getEnvAsInt("NFL_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if nflCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("NFL_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	liveCacheTTL, err := time.ParseDuration(getEnv("LIVE_CACHE_TTL", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_CACHE_TTL: %w", err)
	}
	if liveCacheTTL <= 0 {
		return Config{}, fmt.Errorf("LIVE_CACHE_TTL must be > 0")
	}
	liveNegativeTTL, err := time.ParseDuration(getEnv("LIVE_NEGATIVE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_NEGATIVE_TTL: %w", err)
	}
	if liveNegativeTTL <= 0 {
		return Config{}, fmt.Errorf("LIVE_NEGATIVE_TTL must be > 0")
	}
	liveLookBack, err := time.ParseDuration(getEnv("LIVE_LOOKBACK", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_LOOKBACK: %w", err)
	}
	if liveLookBack <= 0 {
		return Config{}, fmt.Errorf("LIVE_LOOKBACK must be > 0")
	}
	liveLookAhead, err := time.ParseDuration(getEnv("LIVE_LOOKAHEAD", "10h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_LOOKAHEAD: %w", err)
	}
	if liveLookAhead <= 0 {
		return Config{}, fmt.Errorf("LIVE_LOOKAHEAD must be > 0")
	}
	liveMaxConcurrent, err := getEnvAsInt("LIVE_MAX_CONCURRENT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_MAX_CONCURRENT: %w", err)
	}
	if liveMaxConcurrent < 1 {
		return Config{}, fmt.Errorf("LIVE_MAX_CONCURRENT must be >= 1")
	}

	jobScheduleInterval, err := time.ParseDuration(getEnv("JOB_SCHEDULE_INTERVAL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_SCHEDULE_INTERVAL: %w", err)
	}
	if jobScheduleInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_SCHEDULE_INTERVAL must be > 0")
	}

	jobLiveInterval, err := time.ParseDuration(getEnv("JOB_LIVE_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_LIVE_INTERVAL: %w", err)
	}
	if jobLiveInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_LIVE_INTERVAL must be > 0")
	}

	jobPreKickoffLead, err := time.ParseDuration(getEnv("JOB_PRE_KICKOFF_LEAD", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_PRE_KICKOFF_LEAD: %w", err)
	}
	if jobPreKickoffLead <= 0 {
		return Config{}, fmt.Errorf("JOB_PRE_KICKOFF_LEAD must be > 0")
	}

	jobIdleInterval, err := time.ParseDuration(getEnv("JOB_IDLE_INTERVAL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_IDLE_INTERVAL: %w", err)
	}
	if jobIdleInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_IDLE_INTERVAL must be > 0")
	}

	accountsEnabled, err := strconv.ParseBool(getEnv("ACCOUNTS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_ENABLED: %w", err)
	}
	accountsBaseURL := strings.TrimSpace(getEnv("ACCOUNTS_BASE_URL", ""))
	if accountsEnabled && accountsBaseURL == "" {
		return Config{}, fmt.Errorf("ACCOUNTS_BASE_URL is required when ACCOUNTS_ENABLED=true")
	}
	accountsTimeout, err := time.ParseDuration(getEnv("ACCOUNTS_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_TIMEOUT: %w", err)
	}
	if accountsTimeout <= 0 {
		return Config{}, fmt.Errorf("ACCOUNTS_TIMEOUT must be > 0")
	}
	accountsCacheTTL, err := time.ParseDuration(getEnv("ACCOUNTS_CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_CACHE_TTL: %w", err)
	}
	if accountsCacheTTL <= 0 {
		return Config{}, fmt.Errorf("ACCOUNTS_CACHE_TTL must be > 0")
	}
	accountsCacheMaxEntries, err := getEnvAsInt("ACCOUNTS_CACHE_MAX_ENTRIES", 4096)
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_CACHE_MAX_ENTRIES: %w", err)
	}
	if accountsCacheMaxEntries < 1 {
		return Config{}, fmt.Errorf("ACCOUNTS_CACHE_MAX_ENTRIES must be >= 1")
	}
	accountsCircuitEnabled, err := strconv.ParseBool(getEnv("ACCOUNTS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_CIRCUIT_ENABLED: %w", err)
	}
	accountsCircuitFailureCount, err := getEnvAsInt("ACCOUNTS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if accountsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ACCOUNTS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	accountsCircuitOpenTimeout, err := time.ParseDuration(getEnv("ACCOUNTS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if accountsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ACCOUNTS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	accountsCircuitHalfOpenMax, err := getEnvAsInt("ACCOUNTS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ACCOUNTS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if accountsCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("ACCOUNTS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashCircuitEnabled, err := strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	qstashCircuitFailureCount, err := getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if qstashCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	qstashCircuitOpenTimeout, err := time.ParseDuration(getEnv("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if qstashCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	qstashCircuitHalfOpenMaxReq, err := getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if qstashCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("SERVICE_NAME", "pickem-api"),
		ServiceVersion:              getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("HTTP_ADDR", ":8080"),
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     true,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		SwaggerEnabled:              swaggerEnabled,
		NFLProvider:                 nflProvider,
		NFLAPIBase:                  strings.TrimSpace(getEnv("NFL_API_BASE", "")),
		NFLHTTPTimeout:              nflHTTPTimeout,
		NFLMaxRetries:               nflMaxRetries,
		NFLCircuitEnabled:           nflCircuitEnabled,
		NFLCircuitFailureCount:      nflCircuitFailureCount,
		NFLCircuitOpenTimeout:       nflCircuitOpenTimeout,
		NFLCircuitHalfOpenMaxReq:    nflCircuitHalfOpenMaxReq,
		LiveCacheTTL:                liveCacheTTL,
		LiveNegativeTTL:             liveNegativeTTL,
		LiveLookBack:                liveLookBack,
		LiveLookAhead:               liveLookAhead,
		LiveMaxConcurrent:           liveMaxConcurrent,
		AccountsEnabled:             accountsEnabled,
		AccountsBaseURL:             accountsBaseURL,
		AccountsIntrospectPath:      getEnv("ACCOUNTS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AccountsAdminKey:            strings.TrimSpace(getEnv("ACCOUNTS_ADMIN_KEY", "")),
		AccountsTimeout:             accountsTimeout,
		AccountsCacheTTL:            accountsCacheTTL,
		AccountsCacheMaxEntries:     accountsCacheMaxEntries,
		AccountsCircuitEnabled:      accountsCircuitEnabled,
		AccountsCircuitFailureCount: accountsCircuitFailureCount,
		AccountsCircuitOpenTimeout:  accountsCircuitOpenTimeout,
		AccountsCircuitHalfOpenMax:  accountsCircuitHalfOpenMax,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		UptraceCaptureRequestBody:   uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes:  uptraceRequestBodyMaxBytes,
		BetterStackEnabled:          betterStackEnabled,
		BetterStackEndpoint:         betterStackEndpoint,
		BetterStackToken:            strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:          betterStackTimeout,
		BetterStackMinLevel:         betterStackMinLevel,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		InternalJobToken:            internalJobToken,
		QStashEnabled:               qstashEnabled,
		QStashBaseURL:               qstashBaseURL,
		QStashToken:                 qstashToken,
		QStashTargetBaseURL:         qstashTargetBaseURL,
		QStashRetries:               qstashRetries,
		QStashCircuitEnabled:        qstashCircuitEnabled,
		QStashCircuitFailureCount:   qstashCircuitFailureCount,
		QStashCircuitOpenTimeout:    qstashCircuitOpenTimeout,
		QStashCircuitHalfOpenMaxReq: qstashCircuitHalfOpenMaxReq,
		JobScheduleInterval:         jobScheduleInterval,
		JobLiveInterval:             jobLiveInterval,
		JobPreKickoffLead:           jobPreKickoffLead,
		JobIdleInterval:             jobIdleInterval,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("READ_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WRITE_TIMEOUT: %w", err)
	}

	logLevel := parseLogLevel(getEnv("LOG_LEVEL", "info"))

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.LogLevel = logLevel

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "development"
	EnvStage = "staging"
	EnvProd  = "production"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

// Provider names accepted by NFL_PROVIDER. ProviderLocal serves the bundled
// static roster and no live data, which keeps development offline.
const (
	ProviderESPN  = "espn"
	ProviderLocal = "local"
)

// normalizeProviderName lowercases the configured key without judging it.
// Unknown keys are not an error here: the provider factory falls closed to
// the static roster for anything it does not recognize.
func normalizeProviderName(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
