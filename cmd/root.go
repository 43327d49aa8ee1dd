package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/trbridge/bridge"
	"github.com/s0up4200/trbridge/config"
	"github.com/s0up4200/trbridge/filter"
	"github.com/s0up4200/trbridge/qbittorrent"
	"github.com/s0up4200/trbridge/transmission"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *bridge.Client
	filters *filter.Manager

	// Command flags
	filterExpr  string
	preset      string
	downloadDir string
	jsonOutput  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trbridge",
	Short: "Bridge a torrent daemon RPC to a small JSON API",
	Long: `trbridge keeps one authenticated session to a Transmission or qBittorrent
daemon and exposes it as a JSON HTTP API and as CLI commands. The daemon
address lives in a JSON store file and can be changed at runtime.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./trbridge.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON envelopes")
}

// initializeApp loads settings, opens the store and makes the first
// connection attempt. A failed attempt is logged, not fatal.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	store, err := bridge.LoadStore(cfg.Store.Path, logger.With().Str("component", "store").Logger())
	if err != nil {
		return fmt.Errorf("failed to open store %s: %w", cfg.Store.Path, err)
	}

	dialer, err := newDialer(cfg.RPC, logger)
	if err != nil {
		return err
	}

	client = bridge.NewClient(store, dialer, bridge.Credentials{
		Username: cfg.RPC.Username,
		Password: cfg.RPC.Password,
	}, logger)

	filters = filter.NewManager()
	if err := filters.RegisterPresets(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("failed to compile filter presets: %w", err)
	}
	if err := filters.SetDefault(cfg.Filter.Default); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RPC.Timeout)
	defer cancel()
	if res := client.Connect(ctx); !res.OK() {
		logger.Warn().Err(res.Err).Str("state", client.State().String()).Msg("Initial connection failed")
	}

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	var errs []error
	if client != nil {
		errs = append(errs, client.Close())
	}
	if filters != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, filters.Close(ctx))
	}
	return errors.Join(errs...)
}

// newDialer picks the session backend named in rpc.client
func newDialer(rpc config.RPCConfig, logger zerolog.Logger) (bridge.Dialer, error) {
	switch rpc.Client {
	case config.ClientTransmission:
		opts := []transmission.Option{transmission.WithTimeout(rpc.Timeout)}
		if rpc.InsecureSkipVerify {
			opts = append(opts, transmission.WithInsecureSkipVerify())
		}
		return transmission.NewDialer(logger.With().Str("component", "transmission").Logger(), opts...), nil

	case config.ClientQBittorrent:
		var opts []qbittorrent.Option
		if rpc.InsecureSkipVerify {
			opts = append(opts, qbittorrent.WithInsecureSkipVerify())
		}
		return qbittorrent.NewDialer(logger.With().Str("component", "qbittorrent").Logger(), opts...), nil

	default:
		return nil, fmt.Errorf("unsupported rpc client: %s", rpc.Client)
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Colours only when stderr is a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
