package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spritan/climetlab/sources"
)

func newHypercubeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hypercube RECORDS",
		Short: "Report whether a records file forms a full hypercube",
		Long: `Compare the number of fields with the product of the value counts of the
varying keys. Only counts are compared, so a sparse set whose size matches the
product is reported as full.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := a.loadRecords(cmd, args[0])
			if err != nil {
				return err
			}
			av, err := fs.Availability()
			if err != nil {
				return err
			}
			full, err := fs.IsFullHypercube()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dimensions: %v\nexpected: %d\nfields: %d\nfull: %t\n",
				av.Dimensions(), av.HypercubeSize(), fs.Len(), full)
			return nil
		},
	}
}

func newMirrorCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Inspect configured mirrors",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List the active mirrors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.mirrors.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no mirror")
				return nil
			}
			for _, m := range list {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	})
	return cmd
}

func newLoadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load LOADER",
		Short: "Run a loader document and summarize the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := abs(args[0])
			if err != nil {
				return err
			}
			doc, err := a.fs.ReadFile(p)
			if err != nil {
				return err
			}
			fs, err := sources.NewLoader(a.registry).Load(a.context(cmd.Context()), doc)
			if err != nil {
				return err
			}
			av, err := fs.Availability()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", fs, av)
			return nil
		},
	}
}
