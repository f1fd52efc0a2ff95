package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/textflow/pkg/textflow"
	"github.com/cognicore/textflow/pkg/textflow/vectorize"
)

type matrixOutput struct {
	Mode  string            `json:"mode"`
	N     int               `json:"n"`
	Terms []string          `json:"terms"`
	Rows  [][]float64       `json:"rows"`
	Stats vectorize.Summary `json:"stats"`
}

func newVectorizeCommand(a *app) *cobra.Command {
	var (
		input string
		modes string
		n     int
	)
	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Encode a CSV or text file as document-term matrices",
		Long: `Vectorize tokenizes every record of the input, builds one vocabulary
from the whole corpus and prints a JSON matrix per requested mode
(one-hot, bow, ngram, tfidf). Several modes are computed in parallel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if modes == "" {
				modes = a.cfg.Vectorize.Mode
			}
			if !cmd.Flags().Changed("ngram") {
				n = a.cfg.Vectorize.NGram
			}
			var parsed []vectorize.Mode
			for _, name := range strings.Split(modes, ",") {
				m, err := vectorize.ParseMode(name)
				if err != nil {
					return err
				}
				parsed = append(parsed, m)
			}

			e, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			opts := textflow.RepresentOptions{N: n, Tokenize: a.cfg.Preprocess}
			matrices, err := e.Compare(cmd.Context(), texts(records), parsed, opts)
			if err != nil {
				return err
			}
			out := make([]matrixOutput, len(matrices))
			for i, m := range matrices {
				out[i] = matrixOutput{
					Mode:  parsed[i].String(),
					N:     max(n, 1),
					Terms: m.Terms,
					Rows:  m.Rows,
					Stats: vectorize.Stats(m),
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV (text,label columns) or text file, - for stdin")
	cmd.Flags().StringVarP(&modes, "mode", "m", "", "comma-separated modes (default from config)")
	cmd.Flags().IntVarP(&n, "ngram", "n", 1, "n-gram window")
	return cmd
}
