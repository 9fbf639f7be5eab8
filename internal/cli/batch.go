package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/pipeline"
)

type batchOptions struct {
	params   paramFlags
	outDir   string
	jobs     int
	failFast bool
	noCache  bool
}

// batchCommand runs one node over many files concurrently.
func (c *CLI) batchCommand() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch <node> <file>...",
		Short: "Run a node over many SVG files",
		Long: `Run a node over many SVG files concurrently.

Each file is processed independently with the same parameters; results are
written to the output directory under the input's base name.`,
		Example: `  vpypenode batch VPypeProcessor -d out/ --set rotation=0 drawings/*.svg
  vpypenode batch VPypeGCodeGenerator -d gcode/ --jobs 2 plots/*.svg`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeNodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.batch(cmd, args[0], args[1:], opts)
		},
	}
	opts.params.register(cmd)
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", "", "output directory (required)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "concurrent runs (default batch.jobs, the number of CPUs)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop at the first failed run")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the result cache")
	_ = cmd.MarkFlagRequired("out-dir")
	return cmd
}

func (c *CLI) batch(cmd *cobra.Command, name string, files []string, opts *batchOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	n, err := runner.Registry.Lookup(name)
	if err != nil {
		return err
	}
	doc, ok := documentParam(n)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "node %s takes no document input", name)
	}
	base, err := opts.params.raw()
	if err != nil {
		return err
	}
	outputs, err := planOutputs(files, opts.outDir, outputExt(n.Info()))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	jobs := c.Config.Batch.Jobs
	prog := newProgress(logger)
	var (
		mu    sync.Mutex
		stats pipeline.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			params := make(map[string]any, len(base)+1)
			for k, v := range base {
				params[k] = v
			}
			params[doc] = file

			res, err := runner.Run(gctx, pipeline.Request{Node: name, Params: params, NoCache: opts.noCache})
			if err == nil {
				if werr := os.WriteFile(outputs[i], []byte(res.Output), 0644); werr != nil {
					err = fmt.Errorf("write output: %w", werr)
				}
			}

			mu.Lock()
			stats.Add(res, err)
			mu.Unlock()

			if err != nil {
				logger.Error("run failed", "file", file, "err", err)
				if opts.failFast {
					return fmt.Errorf("%s: %w", file, err)
				}
				return nil
			}
			logger.Info("processed", "file", file, "output", outputs[i], "cached", res.Cached)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Processed %d files", stats.Runs))
	w := cmd.ErrOrStderr()
	printKeyValue(w, "succeeded", fmt.Sprint(stats.Runs-stats.Failed))
	printKeyValue(w, "cached", fmt.Sprint(stats.Cached))
	printKeyValue(w, "failed", fmt.Sprint(stats.Failed))
	printKeyValue(w, "output", opts.outDir)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d runs failed", stats.Failed, stats.Runs)
	}
	return nil
}

// planOutputs maps every input to <dir>/<base name><ext>, rejecting name
// collisions and outputs that would overwrite an input.
func planOutputs(files []string, dir, ext string) ([]string, error) {
	inputs := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		inputs[abs] = true
	}

	seen := make(map[string]string, len(files))
	out := make([]string, len(files))
	for i, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		path := filepath.Join(dir, stem+ext)
		if prev, dup := seen[path]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s and %s both write %s", prev, f, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		if inputs[abs] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "output %s would overwrite an input", path)
		}
		seen[path] = f
		out[i] = path
	}
	return out, nil
}

// outputExt picks the file extension for a node's result.
func outputExt(info node.Info) string {
	if strings.HasPrefix(info.ReturnName, "gcode") {
		return ".gcode"
	}
	return ".svg"
}
