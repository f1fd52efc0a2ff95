package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/textflow/pkg/textflow"
	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/preprocess"
	"github.com/cognicore/textflow/pkg/textflow/stage"
	"github.com/cognicore/textflow/pkg/textflow/vectorize"
)

type datasetSummary struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     dataset.Type      `json:"type"`
	ParentID string            `json:"parent_id,omitempty"`
	Records  int               `json:"records"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func summarize(d dataset.Dataset) datasetSummary {
	return datasetSummary{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Type,
		ParentID: d.ParentID,
		Records:  len(d.Records),
		Metadata: d.Metadata,
	}
}

type runOutput struct {
	State    stage.State      `json:"state"`
	Datasets []datasetSummary `json:"datasets"`
}

type runFlags struct {
	input       string
	url         string
	name        string
	mode        string
	n           int
	embeddings  bool
	docEmbed    bool
	augment     bool
	remoteClean bool
	task        string
	modelType   string
}

func newRunCommand(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run collection through representation and store every snapshot",
		Long: `Run collects records from a file or URL, then cleans, preprocesses and
represents them. Augmentation and classification run when requested and a
remote service is configured. Every intermediate dataset is written to the
lineage store; use --db to keep them in SQLite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (f.input == "") == (f.url == "") {
				return fmt.Errorf("exactly one of --input or --url is required")
			}
			if f.mode == "" {
				f.mode = a.cfg.Vectorize.Mode
			}
			mode, err := vectorize.ParseMode(f.mode)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ngram") {
				f.n = a.cfg.Vectorize.NGram
			}

			ctx := cmd.Context()
			e, err := a.engine(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			var (
				st   stage.State
				d    dataset.Dataset
				out  runOutput
				step = func(next stage.State, produced dataset.Dataset, err error) error {
					if err != nil {
						return err
					}
					st, d = next, produced
					out.Datasets = append(out.Datasets, summarize(d))
					return nil
				}
			)

			if f.url != "" {
				err = step(e.CollectURL(ctx, st, f.url))
			} else {
				var records []dataset.Record
				records, err = readRecords(f.input, cmd.InOrStdin())
				if err == nil {
					name := f.name
					if name == "" {
						name = filepath.Base(f.input)
					}
					err = step(e.Collect(ctx, st, name, f.input, records))
				}
			}
			if err != nil {
				return err
			}
			if f.augment {
				if err := step(e.Augment(ctx, st, nil)); err != nil {
					return err
				}
			}
			if err := step(e.Clean(ctx, st, textflow.CleanOptions{Text: preprocess.CleaningOptions(), Remote: f.remoteClean})); err != nil {
				return err
			}
			if err := step(e.Preprocess(ctx, st, a.cfg.Preprocess)); err != nil {
				return err
			}
			if !cmd.Flags().Changed("document-embeddings") {
				f.docEmbed = a.cfg.Embedding.DocumentLevel
			}
			rep := textflow.RepresentOptions{
				Mode:          mode,
				N:             f.n,
				Embeddings:    f.embeddings,
				DocumentLevel: f.docEmbed,
			}
			if err := step(e.Represent(ctx, st, rep)); err != nil {
				return err
			}
			if f.task != "" {
				opts := textflow.ClassifyOptions{Task: f.task, ModelType: f.modelType}
				if err := step(e.Classify(ctx, st, opts)); err != nil {
					return err
				}
			}

			out.State = st
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "CSV or text file to collect")
	flags.StringVar(&f.url, "url", "", "web page to scrape instead of a file")
	flags.StringVar(&f.name, "name", "", "name of the collected dataset")
	flags.StringVarP(&f.mode, "mode", "m", "", "representation mode (default from config)")
	flags.IntVarP(&f.n, "ngram", "n", 1, "n-gram window")
	flags.BoolVar(&f.embeddings, "embeddings", false, "represent with the configured embedding provider")
	flags.BoolVar(&f.docEmbed, "document-embeddings", false, "embed whole record texts (document-level models)")
	flags.BoolVar(&f.augment, "augment", false, "augment through the remote service")
	flags.BoolVar(&f.remoteClean, "remote-clean", false, "clean through the remote service")
	flags.StringVar(&f.task, "task", "", "classify through the remote service with this task")
	flags.StringVar(&f.modelType, "model-type", "", "model family for classification")
	return cmd
}
