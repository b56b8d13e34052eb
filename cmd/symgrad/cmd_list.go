package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/symgrad/internal/op"
	"github.com/born-ml/symgrad/internal/pass"
)

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List operator kinds and whether they are differentiable",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			reg := op.Default()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tINPUTS\tGRADIENT\tDESCRIPTION")
			for _, name := range reg.SupportedOps() {
				o, _ := reg.Lookup(name)
				_, hasGrad := reg.Gradient(o)
				inputs := strconv.Itoa(o.NumInputs)
				if o.NumInputs < 0 {
					inputs = "variadic"
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", o.Name, inputs, hasGrad, o.Description)
			}
			tw.Flush()
		},
	}
}

func newPassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List registered graph passes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCHANGES GRAPH\tDEPENDS ON\tPROVIDES\tDESCRIPTION")
			for _, p := range pass.List() {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n",
					p.Name, p.ChangeGraph, joinOrDash(p.DependGraphAttrs), joinOrDash(p.ProvideGraphAttrs), p.Description)
			}
			tw.Flush()
		},
	}
}
