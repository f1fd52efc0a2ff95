package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/textflow/pkg/textflow/stoplist"
)

func newStopwordsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "Inspect and extend the stopword list",
	}
	cmd.AddCommand(newStopwordsSuggestCommand(a))
	return cmd
}

func newStopwordsSuggestCommand(a *app) *cobra.Command {
	var (
		input      string
		thresholds = stoplist.DefaultThresholds()
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest stopwords from document frequencies of a corpus",
		Long: `Suggest tokenizes the input with the configured options and lists
tokens that occur in more than --df-percent of the documents (and in at
least --min-docs of them) and are not stopwords yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			tok, err := a.tokenizer()
			if err != nil {
				return err
			}
			opts := a.cfg.Preprocess
			opts.RemoveStopwords = false
			stats := stoplist.StatsFromCorpus(tok.TokenizeAll(texts(records), opts))
			candidates := tok.Stoplist().SuggestCandidates(stats, thresholds)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TOKEN\tDF%\tIDF\tSCORE")
			for _, c := range candidates {
				fmt.Fprintf(w, "%s\t%.1f\t%.4f\t%.2f\n", c.Token, c.Reason.DFPercent, c.Reason.IDF, c.Score)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV, JSONL or text file, - for stdin")
	cmd.Flags().Float64Var(&thresholds.DFPercent, "df-percent", thresholds.DFPercent, "minimum share of documents, in percent")
	cmd.Flags().Int64Var(&thresholds.MinDocs, "min-docs", thresholds.MinDocs, "minimum number of documents")
	return cmd
}
