package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
)

func newLineageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <dataset-id>",
		Short: "Print the chain from a dataset back to its root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			chain, err := e.Lineage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printDatasets(cmd, chain)
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			all, err := e.Datasets(cmd.Context())
			if err != nil {
				return err
			}
			if typ == "" {
				return printDatasets(cmd, all)
			}
			want, err := dataset.ParseType(typ)
			if err != nil {
				return err
			}
			var filtered []dataset.Dataset
			for _, d := range all {
				if d.Type == want {
					filtered = append(filtered, d)
				}
			}
			return printDatasets(cmd, filtered)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only datasets of this type")
	return cmd
}

func printDatasets(cmd *cobra.Command, ds []dataset.Dataset) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tRECORDS\tPARENT\tNAME")
	for _, d := range ds {
		parent := d.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.ID, d.Type, len(d.Records), parent, d.Name)
	}
	return w.Flush()
}

func newSimilarCommand(a *app) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "similar <dataset-id>",
		Short: "Rank record pairs of a represented dataset by cosine similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			pairs, err := e.Similar(cmd.Context(), args[0], top)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SIMILARITY\tI\tJ\tA\tB")
			for _, p := range pairs {
				fmt.Fprintf(w, "%.4f\t%d\t%d\t%s\t%s\n", p.Similarity, p.I, p.J, p.A, p.B)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&top, "top", "k", 10, "number of pairs to print (0 for all)")
	return cmd
}
