package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/harness"
)

func Test_ParseConfig_When_NoArgsAreGiven_Then_DefaultsApply(t *testing.T) {
	// setup
	t.Setenv(envDBAdapter, "")

	// act
	cfg, err := parseConfig(nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, backendMemory, cfg.Backend)
	assert.Equal(t, adapterPGX, cfg.DBAdapter)
	assert.Equal(t, reportText, cfg.Report)
	assert.Equal(t, harness.DefaultConfig().Scales, cfg.Scales)
	assert.Equal(t, harness.DefaultConfig().Runs, cfg.Runs)
}

func Test_ParseConfig_When_FlagsAreGiven_Then_TheyAreApplied(t *testing.T) {
	// act
	cfg, err := parseConfig([]string{
		"-backend", "SQLite",
		"-scales", "10, 20,30",
		"-runs", "2",
		"-skip-concurrency",
		"-report", "json",
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, backendSQLite, cfg.Backend)
	assert.Equal(t, []int{10, 20, 30}, cfg.Scales)
	assert.Equal(t, 2, cfg.Runs)
	assert.True(t, cfg.SkipConcurrency)
	assert.Equal(t, reportJSON, cfg.Report)
	assert.True(t, cfg.harnessConfig().SkipConcurrency)
}

func Test_ParseConfig_When_DBAdapterEnvIsSet_Then_ItIsTheDefault(t *testing.T) {
	// setup
	t.Setenv(envDBAdapter, "SQLX")

	// act
	cfg, err := parseConfig(nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, adapterSQLX, cfg.DBAdapter)
}

func Test_ParseConfig_When_ConfigFileIsGiven_Then_SetFlagsOverrideIt(t *testing.T) {
	// setup
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: bolt
boltPath: /tmp/users.db
scales: [100, 200]
runs: 4
report: json
`), 0o600))

	// act
	cfg, err := parseConfig([]string{"-config", path, "-runs", "1"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, backendBolt, cfg.Backend)
	assert.Equal(t, "/tmp/users.db", cfg.BoltPath)
	assert.Equal(t, []int{100, 200}, cfg.Scales)
	assert.Equal(t, 1, cfg.Runs)
	assert.Equal(t, reportJSON, cfg.Report)
}

func Test_ParseConfig_When_ValuesAreInvalid_Then_ErrorIsReturned(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{name: "unknown backend", args: []string{"-backend", "oracle"}, expectedErr: ErrUnknownBackend},
		{name: "unknown adapter", args: []string{"-db-adapter", "odbc"}, expectedErr: ErrUnknownAdapter},
		{name: "unknown report", args: []string{"-report", "csv"}, expectedErr: ErrUnknownReport},
		{name: "malformed scales", args: []string{"-scales", "10,x"}, expectedErr: ErrInvalidScales},
		{name: "zero scale", args: []string{"-scales", "0"}, expectedErr: harness.ErrInvalidConfig},
		{name: "zero runs", args: []string{"-runs", "0"}, expectedErr: harness.ErrInvalidConfig},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := parseConfig(tc.args)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_ParseConfig_When_LogLevelIsUnknown_Then_ErrorIsReturned(t *testing.T) {
	// act
	_, err := parseConfig([]string{"-log-level", "chatty"})

	// assert
	assert.Error(t, err)
}

func Test_ParseConfig_When_MongoAndQueriesOnlyAreGiven_Then_TheyReachTheHarness(t *testing.T) {
	// act
	cfg, err := parseConfig([]string{
		"-backend", "mongo",
		"-mongo-uri", "mongodb://mongo.internal:27017",
		"-mongo-database", "imported",
		"-queries-only",
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, backendMongo, cfg.Backend)
	assert.Equal(t, "mongodb://mongo.internal:27017", cfg.MongoURI)
	assert.Equal(t, "imported", cfg.MongoDB)
	assert.True(t, cfg.QueriesOnly)
	assert.True(t, cfg.harnessConfig().QueriesOnly)
}
