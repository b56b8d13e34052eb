package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/symgrad/internal/gradient"
	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/loader"
	"github.com/born-ml/symgrad/internal/pass"
)

const (
	formatTree = "tree"
	formatJSON = "json"
)

// gradResult is the gradient graph built for one input file.
type gradResult struct {
	File      string        `json:"file"`
	Gradients []gradientOut `json:"gradients"`
}

type gradientOut struct {
	X         string `json:"x"`
	Output    string `json:"output"`
	Op        string `json:"op,omitempty"`
	Nodes     int    `json:"nodes"`
	Signature string `json:"signature"`

	entry graph.NodeEntry
}

func newGradCmd(root *rootOptions) *cobra.Command {
	var format string
	var jobs int
	cmd := &cobra.Command{
		Use:   "grad FILE...",
		Short: "Build gradient expressions for graph description files",
		Long: `Load each graph description, run the Gradient pass on it and print one
gradient expression per xs entry. Files are processed concurrently and
reported in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTree && format != formatJSON {
				return fmt.Errorf("unknown --format %q (want %s or %s)", format, formatTree, formatJSON)
			}
			log, err := root.logger(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = pass.ContextWithLogger(ctx, log)

			results, err := differentiateFiles(ctx, args, jobs)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			writeTrees(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTree, "output format (tree, json)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "maximum files processed at once (0 = unlimited)")
	return cmd
}

// differentiateFiles runs the Gradient pass on every file concurrently.
// The first failure cancels the remaining work.
func differentiateFiles(ctx context.Context, files []string, jobs int) ([]gradResult, error) {
	results := make([]gradResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, file := range files {
		g.Go(func() error {
			res, err := differentiateFile(ctx, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func differentiateFile(ctx context.Context, file string) (gradResult, error) {
	log := pass.LoggerFromContext(ctx).With(slog.String("file", file))

	src, err := loader.LoadFile(file)
	if err != nil {
		return gradResult{}, err
	}
	xs, _, err := src.EntriesAttr(graph.AttrGradXs)
	if err != nil {
		return gradResult{}, fmt.Errorf("%s: %w", file, err)
	}

	out, err := pass.Apply(pass.ContextWithLogger(ctx, log), src, gradient.PassName)
	if err != nil {
		return gradResult{}, fmt.Errorf("%s: %w", file, err)
	}

	res := gradResult{File: file, Gradients: make([]gradientOut, len(out.Outputs))}
	for i, e := range out.Outputs {
		single := []graph.NodeEntry{e}
		res.Gradients[i] = gradientOut{
			X:         xs[i].String(),
			Output:    e.String(),
			Nodes:     len(graph.TopoOrder(single)),
			Signature: graph.Signature(single),
			entry:     e,
		}
		if e.Node != nil && e.Node.Op != nil {
			res.Gradients[i].Op = e.Node.Op.Name
		}
	}
	log.Info("gradient built", slog.Int("xs", len(xs)))
	return res, nil
}

func writeTrees(w io.Writer, results []gradResult) {
	for _, res := range results {
		fmt.Fprintf(w, "== %s\n", res.File)
		for _, g := range res.Gradients {
			fmt.Fprint(w, graph.Tree("d/d "+g.X, []graph.NodeEntry{g.entry}))
		}
	}
}

func writeJSON(w io.Writer, results []gradResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// joinOrDash renders a list for tabular output.
func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
