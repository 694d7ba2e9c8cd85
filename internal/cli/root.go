package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alanyang/twig/internal/config"
	"github.com/alanyang/twig/internal/version"
)

// options is the state shared by every command of one root.
type options struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Each call returns an independent tree
// with its own viper instance.
func NewRootCmd() *cobra.Command {
	opts := &options{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "twig",
		Short: "twig - a local prompt library server",
		Long: `twig serves parametrised prompt templates from a directory of prompt
libraries over MCP (stdio or streamable HTTP) and a small REST API.

Each library is a directory holding a twig.toml that declares its prompts and
a prompts/ directory with one <name>.md template per prompt. Prompts are
addressed as <library>:<prompt>.

Example:
  twig serve --transport http --addr :8080 --watch
  twig get code_review:review --arg language=go`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.load,
	}

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is .twig.yaml)")
	pf.String("data-dir", "", "prompt library root (env TWIG_DATA_DIR)")
	pf.String("mode", config.ModeLibraries, "content layout: libraries or dir")
	pf.String("dir-library", "local", "library name used to qualify prompts in dir mode")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	_ = opts.v.BindPFlag("data_dir", pf.Lookup("data-dir"))
	_ = opts.v.BindPFlag("mode", pf.Lookup("mode"))
	_ = opts.v.BindPFlag("dir_library", pf.Lookup("dir-library"))
	_ = opts.v.BindPFlag("log_level", pf.Lookup("log-level"))

	rootCmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newReloadCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *options) load(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if err := config.ReadFile(o.v, o.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	// stdout belongs to the MCP stdio transport and to command output.
	setupLogging(cmd.ErrOrStderr(), cfg.SlogLevel())
	if used := o.v.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", "path", used)
	}
	return nil
}

func setupLogging(w io.Writer, level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
