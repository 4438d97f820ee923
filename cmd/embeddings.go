package main

import (
	"io"
	"os"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kodekulture/gissa-server/game/vector"
	"github.com/kodekulture/gissa-server/game/word"
)

func embeddingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embeddings",
		Short: "Prepare embedding files",
	}
	cmd.AddCommand(embeddingsFilterCmd())
	return cmd
}

func embeddingsFilterCmd() *cobra.Command {
	var (
		in     string
		out    string
		dims   int
		scale  float64
		limit  int
		listed string
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Convert fastText .vec embeddings to the JSON format the server loads",
		Long: "Reads a fastText .vec file, keeps alphabetic words (optionally only those of a word list), " +
			"truncates vectors to --dims values and writes them as scaled integers.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keep := word.IsWord
			if listed != "" {
				f, err := os.Open(listed)
				if err != nil {
					return err
				}
				words, err := word.ParseNouns(f)
				f.Close()
				if err != nil {
					return err
				}
				allowed := make(map[string]struct{}, len(words))
				for _, w := range words {
					allowed[w] = struct{}{}
				}
				keep = func(w string) bool {
					_, ok := allowed[word.Normalize(w)]
					return ok
				}
			}

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			entries, skipped, err := vector.ReadVec(f, dims, keep)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			zlog.Info().Int("kept", len(entries)).Int("skipped", skipped).Msg("embeddings filtered")

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				of, err := os.Create(out)
				if err != nil {
					return err
				}
				defer of.Close()
				w = of
			}
			return vector.EncodeJSON(w, entries, scale)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "fastText .vec file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	cmd.Flags().IntVar(&dims, "dims", 300, "number of values kept per vector")
	cmd.Flags().Float64Var(&scale, "scale", 100, "fixed-point factor, 1 writes floats")
	cmd.Flags().IntVar(&limit, "limit", 0, "keep at most this many words, 0 keeps all")
	cmd.Flags().StringVar(&listed, "words", "", "only keep words of this list")
	cmd.MarkFlagRequired("in")
	return cmd
}
