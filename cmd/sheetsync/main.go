package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sheetsync/internal/config"
	"sheetsync/internal/runner"
	"sheetsync/internal/sheetsapi"
	"sheetsync/internal/transfer"
	"sheetsync/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "sheetsync",
	Short:   "Incremental row sync between Google spreadsheets",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("sheetsync", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

		r, err := newRunner()
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true
		defer slog.Info("Bye!")
		if err := r.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("runner", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "Path to the sheetsync config file")
	rootCmd.PersistentFlags().Int("column", config.DefaultURLColumn, "Zero-based index of the URL column")
	rootCmd.PersistentFlags().String("domain", config.DefaultDomain, "Domain the URL column must match")
	rootCmd.PersistentFlags().String("source-tab", config.DefaultSourceTab, "Source tab to read rows from")
	rootCmd.PersistentFlags().String("interval", "1h", "Time between sync passes, e.g. 30m or 3600")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func main() {
	setupLogger(false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		AddSource:  debug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(cmd *cobra.Command) error {
	// .env loads first so it can supply the legacy variables
	_ = godotenv.Load()

	flags := cmd.Root().PersistentFlags()

	// config path
	configFlag := flags.Lookup("config")
	if configFlag != nil && configFlag.Changed {
		viper.SetConfigFile(configFlag.Value.String())
	} else {
		viper.AddConfigPath(filepath.Join(home, ".sheetsync"))
		viper.AddConfigPath(filepath.Join(home, ".config/sheetsync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("url_column", flags.Lookup("column"))
	viper.BindPFlag("domain", flags.Lookup("domain"))
	viper.BindPFlag("source_tab", flags.Lookup("source-tab"))
	viper.BindPFlag("interval", flags.Lookup("interval"))
	viper.BindPFlag("debug", flags.Lookup("debug"))

	viper.SetDefault("first_tab", config.DefaultFirstTab)
	viper.SetDefault("metadata_cell", config.DefaultMetadataCell)
	viper.SetDefault("timezone", config.DefaultTimezone)
	viper.SetDefault("locale", config.DefaultLocale)

	// Set up environment variables
	viper.SetEnvPrefix("SHEETSYNC")
	viper.AutomaticEnv()

	// names the python deployment exported
	viper.BindEnv("source_spreadsheet_id", "SHEETSYNC_SOURCE_SPREADSHEET_ID", "SPREADSHEET_ID_1")
	viper.BindEnv("dest_spreadsheet_id", "SHEETSYNC_DEST_SPREADSHEET_ID", "SPREADSHEET_ID_2")
	viper.BindEnv("credentials_file", "SHEETSYNC_CREDENTIALS_FILE", "GOOGLE_CREDENTIALS_FILE")

	if viper.GetBool("debug") {
		setupLogger(true)
	}

	return nil
}

func configFromViper() (*config.Config, error) {
	interval, err := config.ParseInterval(viper.GetString("interval"))
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Path:                viper.ConfigFileUsed(),
		SourceSpreadsheetID: viper.GetString("source_spreadsheet_id"),
		DestSpreadsheetID:   viper.GetString("dest_spreadsheet_id"),
		CredentialsFile:     viper.GetString("credentials_file"),
		SourceTab:           viper.GetString("source_tab"),
		FirstTab:            viper.GetString("first_tab"),
		Domain:              viper.GetString("domain"),
		URLColumn:           viper.GetInt("url_column"),
		MetadataCell:        viper.GetString("metadata_cell"),
		Interval:            config.Duration(interval),
		Timezone:            viper.GetString("timezone"),
		Locale:              viper.GetString("locale"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunner() (*runner.Runner, error) {
	cfg, err := configFromViper()
	if err != nil {
		return nil, err
	}

	api, err := sheetsapi.New(&sheetsapi.Config{CredentialsFile: cfg.CredentialsFile})
	if err != nil {
		return nil, err
	}

	zone, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	syncer := transfer.NewSyncer(api, transfer.Config{
		SourceSpreadsheetID: cfg.SourceSpreadsheetID,
		DestSpreadsheetID:   cfg.DestSpreadsheetID,
		SourceTab:           cfg.SourceTab,
		FirstTab:            cfg.FirstTab,
		Domain:              cfg.Domain,
		URLColumn:           cfg.URLColumn,
		MetadataCell:        cfg.MetadataCell,
		Locale:              cfg.Locale,
		Zone:                zone,
	})

	return runner.New(syncer, api, &runner.Config{
		SourceSpreadsheetID: cfg.SourceSpreadsheetID,
		DestSpreadsheetID:   cfg.DestSpreadsheetID,
		Interval:            time.Duration(cfg.Interval),
		LockPath:            viper.GetString("lock_path"),
	}), nil
}
