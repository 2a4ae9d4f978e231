// Package cmd implements the qrscan command line.
package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ericlevine/qrscan/internal/config"
)

// app carries state shared by the commands of one command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the qrscan command tree. Each call has its own
// viper instance, so trees are independent.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "qrscan",
		Short: "Decode QR codes from images",
		Long: `qrscan locates and decodes QR codes (versions 1-40, all error correction
levels) in images, from the command line or over HTTP.

Configuration is read from qrscan.yaml in ., $HOME/.config/qrscan or
/etc/qrscan, from QRSCAN_* environment variables and from flags.

Examples:
  qrscan decode code.png
  qrscan decode --format json photos/*.jpg
  qrscan serve --port 8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(a.v).Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logOut := cmd.ErrOrStderr()
			if cmd.Name() == "serve" {
				logOut = cmd.OutOrStdout()
			}
			a.logger = newLogger(logOut, cfg)
			slog.SetDefault(a.logger)
			if used := a.v.ConfigFileUsed(); used != "" {
				a.logger.Debug("loaded configuration", "file", used)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is qrscan.yaml in ., $HOME/.config/qrscan, /etc/qrscan)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	a.bind("verbose", flags.Lookup("verbose"))
	a.bind("log_level", flags.Lookup("log-level"))

	root.AddCommand(newDecodeCommand(a), newServeCommand(a))
	return root
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
