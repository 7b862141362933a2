package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gurbos/dcdb/bbapi"
	ds "github.com/gurbos/dcdb/datastore"
	"github.com/gurbos/dcdb/importer"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitCmdFlags(t *testing.T) {
	var stderr bytes.Buffer

	flags, err := initCmdFlags([]string{"-f", "--mirror-postgres", "out.db"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, &cmdFlags{overwrite: true, mirrorPostgres: true, envFile: ".env", output: "out.db"}, flags)

	flags, err = initCmdFlags([]string{"-r"}, &stderr)
	require.NoError(t, err)
	assert.True(t, flags.reference)
	assert.Empty(t, flags.output)

	flags, err = initCmdFlags([]string{"--env-file", "prod.env", "x.db"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "prod.env", flags.envFile)
}

func TestInitCmdFlagsWrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{{}, {"a.db", "b.db"}, {"-f"}} {
		var stderr bytes.Buffer
		_, err := initCmdFlags(args, &stderr)
		assert.ErrorIs(t, err, errUsage)
		assert.Contains(t, stderr.String(), "Usage: dcdb [flags] <output.db>")
	}

	_, err := initCmdFlags([]string{"--help"}, io.Discard)
	assert.ErrorIs(t, err, pflag.ErrHelp)

	assert.Equal(t, 2, run([]string{}))
}

// clearConfigEnv unsets every configuration variable for the duration of the
// test, including the unprefixed names envconfig falls back to.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BASE_URL", "REQUEST_DELAY", "MAX_RETRIES", "RETRY_BASE_DELAY", "HTTP_TIMEOUT",
		"PAGE_WARN_SIZE", "LOG_LEVEL", "LOG_FORMAT",
		"PG_USER", "PG_PASSWORD", "PG_HOST", "PG_PORT", "PG_DB_NAME",
	} {
		for _, key := range []string{envPrefix + "_" + name, name} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, bbapi.DEFAULT_BASE_URL, cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 50, cfg.PageWarnSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "postgres://:@localhost:5432/", cfg.ConnectString())
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DCDB_REQUEST_DELAY=1s\nDCDB_PG_USER=dawn\nDCDB_PG_DB_NAME=cards\n"), 0o600))
	clearConfigEnv(t)
	t.Setenv("DCDB_MAX_RETRIES", "5")
	// godotenv does not override variables that are already set.
	t.Setenv("DCDB_REQUEST_DELAY", "2s")

	require.NoError(t, loadDotEnv(path))
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, "dawn", cfg.Username)
	assert.Equal(t, "postgres://dawn:@localhost:5432/cards", cfg.ConnectString())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "card_id", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"card_id":7`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestPrintReference(t *testing.T) {
	var out bytes.Buffer
	printReference(&out, bbapi.ReferenceData{
		Categories: []string{"Action", "Item"},
		Types:      []string{"Melee"},
		Rarities:   []string{"Common", "Uncommon", "Rare"},
		Colors:     []string{"Green"},
		Expansions: []string{"Core"},
	})
	for _, s := range []string{"CATEGORIES", "Action", "Item", "Melee", "Rare", "Green", "Core"} {
		assert.Contains(t, out.String(), s)
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, importer.Summary{
		TalentsFound: 4, TalentsStored: 3, PrerequisitesLinked: 2, CardsFound: 9, CardsStored: 8,
		Pruned: map[ds.LookupTable]int{ds.Colors: 2},
	})
	assert.Contains(t, out.String(), "pruned colors")
	assert.NotContains(t, out.String(), "pruned types")
}

func TestImportSnapshotRefusesExistingDatabase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer srv.Close()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dawncaster.db")
	store, err := ds.CreateSchema(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	app := newApplication(Config{BaseURL: srv.URL, MaxRetries: 1}, slogDiscard())
	_, _, err = app.importSnapshot(ctx, path, false)
	require.ErrorIs(t, err, ds.ErrDatabaseExists)
}

func TestRemoveDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dawncaster.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path+"-journal", []byte("x"), 0o600))

	require.NoError(t, removeDatabase(path))
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+"-journal")
	require.NoError(t, removeDatabase(path))
}

type fakePublisher struct{ got *ds.Snapshot }

func (f *fakePublisher) Publish(_ context.Context, snap *ds.Snapshot) error {
	f.got = snap
	return nil
}

func TestMirrorPublishesLoadedSnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := ds.CreateSchema(ctx, filepath.Join(t.TempDir(), "dawncaster.db"), nil)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.InsertLookups(ctx, map[ds.LookupTable][]ds.LookupValue{
		ds.Categories: {{Id: 0, Name: "Action"}},
	}))

	pub := &fakePublisher{}
	app := &application{logger: slogDiscard()}
	require.NoError(t, app.mirror(ctx, store, pub))
	require.NotNil(t, pub.got)
	assert.Equal(t, []ds.LookupValue{{Id: 0, Name: "Action"}}, pub.got.Lookups[ds.Categories])
}
