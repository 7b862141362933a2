package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gurbos/dcdb/bbapi"
	"github.com/gurbos/dcdb/datastore"
	"github.com/gurbos/dcdb/importer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
)

const envPrefix = "DCDB"

// Config is read from DCDB_* environment variables.
type Config struct {
	BaseURL        string        `envconfig:"BASE_URL"`
	RequestDelay   time.Duration `envconfig:"REQUEST_DELAY" default:"250ms"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s"`
	PageWarnSize   int           `envconfig:"PAGE_WARN_SIZE" default:"50"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"text"`
	DBCredentials
}

// DBCredentials locate the PostgreSQL mirror.
type DBCredentials struct {
	Username string `envconfig:"PG_USER"`
	Password string `envconfig:"PG_PASSWORD"`
	Host     string `envconfig:"PG_HOST" default:"localhost"`
	Port     string `envconfig:"PG_PORT" default:"5432"`
	DBName   string `envconfig:"PG_DB_NAME"`
}

// ConnectString constructs a PostgreSQL connection string from the credentials.
func (cred *DBCredentials) ConnectString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cred.Username, cred.Password),
		Host:   cred.Host + ":" + cred.Port,
		Path:   "/" + cred.DBName,
	}
	return u.String()
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("Error loading %s: %w", path, err)
	}
	return nil
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("Error reading configuration: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = bbapi.DEFAULT_BASE_URL
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

/*-------------------------------------------------------------------------------------------------*/

type cmdFlags struct {
	reference      bool
	overwrite      bool
	mirrorPostgres bool
	envFile        string
	output         string
}

var errUsage = errors.New("usage")

// initCmdFlags parses args (without the program name). errUsage means the
// positional arguments were wrong and usage has been printed.
func initCmdFlags(args []string, stderr io.Writer) (*cmdFlags, error) {
	var flags cmdFlags
	fs := pflag.NewFlagSet("dcdb", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&flags.reference, "reference", "r", false, "Print the reference arrays extracted from the site bundle and exit")
	fs.BoolVarP(&flags.overwrite, "overwrite", "f", false, "Remove an existing output database first")
	fs.BoolVarP(&flags.mirrorPostgres, "mirror-postgres", "m", false, "Publish the finished snapshot to PostgreSQL")
	fs.StringVarP(&flags.envFile, "env-file", "e", ".env", "Environment file to load")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dcdb [flags] <output.db>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case fs.NArg() == 1:
		flags.output = fs.Arg(0)
	case fs.NArg() == 0 && flags.reference:
	default:
		fs.Usage()
		return nil, errUsage
	}
	return &flags, nil
}

/*-------------------------------------------------------------------------------------------------*/

// printReference lists the five arrays side by side, indexed as the site
// indexes them.
func printReference(w io.Writer, data bbapi.ReferenceData) {
	columns := [][]string{data.Categories, data.Types, data.Rarities, data.Colors, data.Expansions}
	rows := 0
	for _, c := range columns {
		rows = max(rows, len(c))
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Categories", "Types", "Rarities", "Colors", "Expansions"})
	for i := 0; i < rows; i++ {
		row := table.Row{i}
		for _, c := range columns {
			if i < len(c) {
				row = append(row, c[i])
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

func printSummary(w io.Writer, summary importer.Summary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Entity", "Found", "Stored"})
	t.AppendRow(table.Row{"talents", summary.TalentsFound, summary.TalentsStored})
	t.AppendRow(table.Row{"prerequisites", "", summary.PrerequisitesLinked})
	t.AppendRow(table.Row{"cards", summary.CardsFound, summary.CardsStored})
	t.AppendSeparator()
	for _, lt := range datastore.LookupTables {
		if n, ok := summary.Pruned[lt]; ok {
			t.AppendRow(table.Row{"pruned " + string(lt), "", n})
		}
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
