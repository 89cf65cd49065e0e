package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	sjson "github.com/reoring/serdes/format/json"
)

type convertOpts struct {
	from   string
	to     string
	outDir string
}

func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts
	cmd := &cobra.Command{
		Use:   "convert --to FORMAT [--from FORMAT] [--out-dir DIR] FILE...",
		Short: "Convert documents between formats",
		Long: `Convert reads every FILE without a target type and writes it in the
format named by --to. The input format is taken from --from or from each
file's extension. Without --out-dir, results are written to standard output
in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.from, "from", "f", "", "input format (default: from file extension)")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "output format: json, yaml or cbor")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "write one file per input into this directory")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *CLI) runConvert(ctx context.Context, opts convertOpts, files []string) error {
	cfg, err := c.settings()
	if err != nil {
		return err
	}
	ropt, err := cfg.ReadOpt()
	if err != nil {
		return err
	}
	if err := sjson.SetDriver(sjson.Driver(cfg.Read.JSONDriver)); err != nil {
		return err
	}
	to, err := lookupBackend(opts.to, "")
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}
	}

	files = lo.Uniq(files)
	results := make([][]byte, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			from, err := lookupBackend(opts.from, path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			v, err := from.decode(data, ropt)
			if err != nil {
				return errors.Wrapf(err, "%s", path)
			}
			out, err := to.encode(v, cfg.WriteOpt())
			if err != nil {
				return errors.Wrapf(err, "%s: encoding %s", path, to.name)
			}
			c.logger.Debug("converted", zap.String("file", path), zap.String("from", from.name), zap.String("to", to.name), zap.Int("bytes", len(out)))
			if opts.outDir == "" {
				results[i] = out
				return nil
			}
			dst := to.outputName(opts.outDir, path)
			if err := os.WriteFile(dst, out, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", dst)
			}
			c.logger.Info("wrote", zap.String("file", dst))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if opts.outDir != "" {
		return nil
	}
	for i, out := range results {
		if i > 0 && to.name == "yaml" {
			fmt.Fprintln(c.out, "---")
		}
		if _, err := c.out.Write(out); err != nil {
			return errors.WithStack(err)
		}
		if to.name == "json" {
			fmt.Fprintln(c.out)
		}
	}
	return nil
}
