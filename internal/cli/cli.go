// Package cli implements the serdes command-line interface: converting
// documents between the JSON, YAML and CBOR backends and checking that they
// parse under a given strictness.
package cli

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/serdes"
)

const appName = "serdes"

// CLI holds state shared by all commands.
type CLI struct {
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger

	configPath string
	verbose    bool
	jobs       int
}

// New returns a CLI writing results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut, logger: zap.NewNop()}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Convert and check JSON, YAML and CBOR documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = newLogger(c.errOut, c.verbose)
			serdes.SetLogger(c.logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML file with read/write options")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().IntVarP(&c.jobs, "jobs", "j", 0, "files processed concurrently (default: config or GOMAXPROCS)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.checkCommand())
	return root
}

// newLogger builds a development-style console logger. Debug output is only
// enabled with --verbose.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// settings resolves the config file and flag overrides.
func (c *CLI) settings() (Config, error) {
	cfg := DefaultConfig()
	if c.configPath != "" {
		loaded, err := LoadConfig(c.configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if c.jobs > 0 {
		cfg.Jobs = c.jobs
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}
