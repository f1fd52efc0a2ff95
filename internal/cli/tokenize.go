package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTokenizeCommand(a *app) *cobra.Command {
	var (
		input  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tokenize [text...]",
		Short: "Print the normalized tokens of each text",
		Long: `Tokenize applies the configured preprocessing steps (lowercase, strip
punctuation and digits, stopwords, lemmatization, stemming) and prints one
line of tokens per input text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := args
			if input != "" {
				records, err := readRecords(input, cmd.InOrStdin())
				if err != nil {
					return err
				}
				docs = texts(records)
			}
			if len(docs) == 0 {
				return fmt.Errorf("nothing to tokenize: pass text arguments or --input")
			}
			tok, err := a.tokenizer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, doc := range docs {
				tokens := tok.Tokenize(doc, a.cfg.Preprocess)
				if asJSON {
					if err := enc.Encode(tokens); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(out, strings.Join(tokens, " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV or text file to read instead of arguments")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each token list as a JSON array")
	return cmd
}
