package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/serdes"
	sjson "github.com/reoring/serdes/format/json"
)

func (c *CLI) checkCommand() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "check [--from FORMAT] FILE...",
		Short: "Check that documents parse under the configured strictness",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), from, args)
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "input format (default: from file extension)")
	return cmd
}

// runCheck reports one line per file. Every file is checked even when some
// fail.
func (c *CLI) runCheck(ctx context.Context, from string, files []string) error {
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

	files = lo.Uniq(files)
	failures := make([]error, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range files {
		g.Go(func() error {
			b, err := lookupBackend(from, path)
			if err != nil {
				failures[i] = err
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				failures[i] = errors.Wrapf(err, "reading %s", path)
				return nil
			}
			if _, err := b.decode(data, ropt); err != nil {
				failures[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range files {
		if failures[i] == nil {
			fmt.Fprintf(c.out, "ok    %s\n", path)
			continue
		}
		fmt.Fprintf(c.out, "FAIL  %s: %s\n", path, describe(failures[i]))
	}
	if n := lo.CountBy(failures, func(err error) bool { return err != nil }); n > 0 {
		return errors.Newf("%d of %d files failed", n, len(files))
	}
	return nil
}

// describe renders a diagnostic as "code at path: message".
func describe(err error) string {
	e, ok := serdes.AsError(err)
	if !ok {
		return err.Error()
	}
	s := e.Code
	if e.Path != "" {
		s += " at " + e.Path
	}
	if e.Offset >= 0 {
		s += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	return s + ": " + e.Message
}
