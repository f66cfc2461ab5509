package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
	"github.com/AntonStoeckl/backend-benchmark-go/internal/config"
)

const (
	backendMemory    = "memory"
	backendPostgres  = "postgres"
	backendCockroach = "cockroach"
	backendSQLite    = "sqlite"
	backendBolt      = "bolt"
	backendNeo4j     = "neo4j"
	backendMongo     = "mongo"

	adapterPGX  = "pgx"
	adapterSQL  = "sql"
	adapterSQLX = "sqlx"

	reportText = "text"
	reportJSON = "json"

	defaultBoltPath        = "backend-bench.db"
	defaultTraceEndpoint   = "localhost:4319"
	defaultMetricsEndpoint = "localhost:4317"
	defaultLogsEndpoint    = "localhost:4317"
	envDBAdapter           = "DB_ADAPTER"
)

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrUnknownAdapter = errors.New("unknown database adapter")
	ErrUnknownReport  = errors.New("unknown report format")
	ErrInvalidScales  = errors.New("invalid scales")
)

// Config holds all settings of one benchmark invocation.
type Config struct {
	Backend    string `yaml:"backend"`
	DBAdapter  string `yaml:"dbAdapter"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlitePath"`
	BoltPath   string `yaml:"boltPath"`
	Neo4jURI   string `yaml:"neo4jURI"`
	Neo4jDB    string `yaml:"neo4jDatabase"`
	MongoURI   string `yaml:"mongoURI"`
	MongoDB    string `yaml:"mongoDatabase"`

	Scales             []int `yaml:"scales"`
	Runs               int   `yaml:"runs"`
	WarmupScale        int   `yaml:"warmupScale"`
	WarmupRounds       int   `yaml:"warmupRounds"`
	ConcurrencyMax     int   `yaml:"concurrencyMax"`
	ConcurrencyRecords int   `yaml:"concurrencyRecords"`
	SkipWarmup         bool  `yaml:"skipWarmup"`
	SkipSweep          bool  `yaml:"skipSweep"`
	SkipProbe          bool  `yaml:"skipProbe"`
	SkipConcurrency    bool  `yaml:"skipConcurrency"`
	QueriesOnly        bool  `yaml:"queriesOnly"`

	Report   string `yaml:"report"`
	LogLevel string `yaml:"logLevel"`

	ObservabilityEnabled bool   `yaml:"observabilityEnabled"`
	TraceEndpoint        string `yaml:"traceEndpoint"`
	MetricsEndpoint      string `yaml:"metricsEndpoint"`
	LogsEndpoint         string `yaml:"logsEndpoint"`
}

// defaultConfig returns the standard protocol against the in-memory backend.
func defaultConfig() Config {
	protocol := harness.DefaultConfig()

	adapter := strings.ToLower(os.Getenv(envDBAdapter))
	if adapter == "" {
		adapter = adapterPGX
	}

	return Config{
		Backend:            backendMemory,
		DBAdapter:          adapter,
		DSN:                config.PostgresDSN(),
		BoltPath:           defaultBoltPath,
		Neo4jURI:           config.Neo4jURI(),
		MongoURI:           config.MongoURI(),
		MongoDB:            config.MongoDatabase(),
		Scales:             protocol.Scales,
		Runs:               protocol.Runs,
		WarmupScale:        protocol.WarmupScale,
		WarmupRounds:       protocol.WarmupRounds,
		ConcurrencyMax:     protocol.ConcurrencyMax,
		ConcurrencyRecords: protocol.ConcurrencyRecords,
		Report:             reportText,
		LogLevel:           slog.LevelInfo.String(),
		TraceEndpoint:      defaultTraceEndpoint,
		MetricsEndpoint:    defaultMetricsEndpoint,
		LogsEndpoint:       defaultLogsEndpoint,
	}
}

// parseConfig resolves defaults, the optional YAML file and the flags in args.
func parseConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("backend-bench", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML config file, explicitly set flags override its values")

	var scales string
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Backend: memory, postgres, cockroach, sqlite, bolt, neo4j, mongo")
	fs.StringVar(&cfg.DBAdapter, "db-adapter", cfg.DBAdapter, "PostgreSQL adapter: pgx, sql, sqlx (env DB_ADAPTER)")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL or CockroachDB DSN (env BENCH_POSTGRES_DSN, DATABASE_URL)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file, empty for in-memory")
	fs.StringVar(&cfg.BoltPath, "bolt-path", cfg.BoltPath, "bbolt database file")
	fs.StringVar(&cfg.Neo4jURI, "neo4j-uri", cfg.Neo4jURI, "Neo4j URI (env BENCH_NEO4J_URI)")
	fs.StringVar(&cfg.Neo4jDB, "neo4j-database", cfg.Neo4jDB, "Neo4j database name, empty for the server default")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB URI (env BENCH_MONGO_URI)")
	fs.StringVar(&cfg.MongoDB, "mongo-database", cfg.MongoDB, "MongoDB database name (env BENCH_MONGO_DATABASE)")
	fs.StringVar(&scales, "scales", joinInts(cfg.Scales), "Comma-separated record counts of the sweep")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "Repetitions of the whole sweep")
	fs.IntVar(&cfg.WarmupScale, "warmup-scale", cfg.WarmupScale, "Records per warm-up round")
	fs.IntVar(&cfg.WarmupRounds, "warmup-rounds", cfg.WarmupRounds, "Number of warm-up rounds")
	fs.IntVar(&cfg.ConcurrencyMax, "concurrency-max", cfg.ConcurrencyMax, "Highest number of virtual users, 0 for CPU count - 1")
	fs.IntVar(&cfg.ConcurrencyRecords, "concurrency-records", cfg.ConcurrencyRecords, "Records per virtual user")
	fs.BoolVar(&cfg.SkipWarmup, "skip-warmup", cfg.SkipWarmup, "Skip the warm-up")
	fs.BoolVar(&cfg.SkipSweep, "skip-sweep", cfg.SkipSweep, "Skip the scale sweep")
	fs.BoolVar(&cfg.SkipProbe, "skip-probe", cfg.SkipProbe, "Skip the single-record latency probe")
	fs.BoolVar(&cfg.SkipConcurrency, "skip-concurrency", cfg.SkipConcurrency, "Skip the concurrency simulation")
	fs.BoolVar(&cfg.QueriesOnly, "queries-only", cfg.QueriesOnly, "Only measure the named queries on the existing data, never clear it")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "Report format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR")
	fs.BoolVar(&cfg.ObservabilityEnabled, "observability-enabled", cfg.ObservabilityEnabled, "Enable OpenTelemetry observability")
	fs.StringVar(&cfg.TraceEndpoint, "otlp-trace-endpoint", cfg.TraceEndpoint, "OTLP gRPC endpoint for traces")
	fs.StringVar(&cfg.MetricsEndpoint, "otlp-metrics-endpoint", cfg.MetricsEndpoint, "OTLP gRPC endpoint for metrics")
	fs.StringVar(&cfg.LogsEndpoint, "otlp-logs-endpoint", cfg.LogsEndpoint, "OTLP gRPC endpoint for logs")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configFile != "" {
		fileCfg, err := loadConfigFile(*configFile, defaultConfig())
		if err != nil {
			return Config{}, err
		}

		cfg = overrideWithSetFlags(fs, fileCfg, cfg, &scales)
	}

	parsedScales, err := parseScales(scales)
	if err != nil {
		return Config{}, err
	}
	cfg.Scales = parsedScales

	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.DBAdapter = strings.ToLower(cfg.DBAdapter)
	cfg.Report = strings.ToLower(cfg.Report)

	return cfg, cfg.validate()
}

// loadConfigFile decodes the YAML file on top of base.
func loadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file failed: %w", err)
	}

	if err = yaml.Unmarshal(data, &base); err != nil {
		return Config{}, fmt.Errorf("parsing config file failed: %w", err)
	}

	return base, nil
}

// overrideWithSetFlags starts from the file values and copies over every explicitly set flag.
// The scales flag is rewritten to the file value unless it was set.
func overrideWithSetFlags(fs *flag.FlagSet, fileCfg, flagCfg Config, scales *string) Config {
	cfg := fileCfg
	scalesSet := false

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = flagCfg.Backend
		case "db-adapter":
			cfg.DBAdapter = flagCfg.DBAdapter
		case "dsn":
			cfg.DSN = flagCfg.DSN
		case "sqlite-path":
			cfg.SQLitePath = flagCfg.SQLitePath
		case "bolt-path":
			cfg.BoltPath = flagCfg.BoltPath
		case "neo4j-uri":
			cfg.Neo4jURI = flagCfg.Neo4jURI
		case "neo4j-database":
			cfg.Neo4jDB = flagCfg.Neo4jDB
		case "mongo-uri":
			cfg.MongoURI = flagCfg.MongoURI
		case "mongo-database":
			cfg.MongoDB = flagCfg.MongoDB
		case "scales":
			scalesSet = true
		case "runs":
			cfg.Runs = flagCfg.Runs
		case "warmup-scale":
			cfg.WarmupScale = flagCfg.WarmupScale
		case "warmup-rounds":
			cfg.WarmupRounds = flagCfg.WarmupRounds
		case "concurrency-max":
			cfg.ConcurrencyMax = flagCfg.ConcurrencyMax
		case "concurrency-records":
			cfg.ConcurrencyRecords = flagCfg.ConcurrencyRecords
		case "skip-warmup":
			cfg.SkipWarmup = flagCfg.SkipWarmup
		case "skip-sweep":
			cfg.SkipSweep = flagCfg.SkipSweep
		case "skip-probe":
			cfg.SkipProbe = flagCfg.SkipProbe
		case "skip-concurrency":
			cfg.SkipConcurrency = flagCfg.SkipConcurrency
		case "queries-only":
			cfg.QueriesOnly = flagCfg.QueriesOnly
		case "report":
			cfg.Report = flagCfg.Report
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "observability-enabled":
			cfg.ObservabilityEnabled = flagCfg.ObservabilityEnabled
		case "otlp-trace-endpoint":
			cfg.TraceEndpoint = flagCfg.TraceEndpoint
		case "otlp-metrics-endpoint":
			cfg.MetricsEndpoint = flagCfg.MetricsEndpoint
		case "otlp-logs-endpoint":
			cfg.LogsEndpoint = flagCfg.LogsEndpoint
		}
	})

	if !scalesSet {
		*scales = joinInts(fileCfg.Scales)
	}

	return cfg
}

func (c Config) validate() error {
	switch c.Backend {
	case backendMemory, backendPostgres, backendCockroach, backendSQLite, backendBolt, backendNeo4j, backendMongo:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Backend)
	}

	switch c.DBAdapter {
	case adapterPGX, adapterSQL, "sql.db", adapterSQLX:
	default:
		return fmt.Errorf("%w: %s (supported: pgx, sql, sqlx)", ErrUnknownAdapter, c.DBAdapter)
	}

	switch c.Report {
	case reportText, reportJSON:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownReport, c.Report)
	}

	if _, err := c.logLevel(); err != nil {
		return err
	}

	return c.harnessConfig().Validate()
}

func (c Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	return level, nil
}

// harnessConfig maps the settings onto the protocol configuration.
func (c Config) harnessConfig() harness.Config {
	protocol := harness.DefaultConfig()
	protocol.Scales = c.Scales
	protocol.Runs = c.Runs
	protocol.WarmupScale = c.WarmupScale
	protocol.WarmupRounds = c.WarmupRounds
	protocol.ConcurrencyMax = c.ConcurrencyMax
	protocol.ConcurrencyRecords = c.ConcurrencyRecords
	protocol.SkipWarmup = c.SkipWarmup
	protocol.SkipSweep = c.SkipSweep
	protocol.SkipLatencyProbe = c.SkipProbe
	protocol.SkipConcurrency = c.SkipConcurrency
	protocol.QueriesOnly = c.QueriesOnly

	return protocol
}

func parseScales(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	scales := make([]int, 0, len(parts))

	for _, part := range parts {
		scale, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: '%s': %w", ErrInvalidScales, part, err)
		}
		scales = append(scales, scale)
	}

	return scales, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ",")
}
