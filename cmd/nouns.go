package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodekulture/gissa-server/game/word"
)

func nounsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nouns",
		Short: "Prepare noun lists",
	}
	cmd.AddCommand(nounsExtractCmd(), nounsTopCmd())
	return cmd
}

func nounsExtractCmd() *cobra.Command {
	var saldoFile, wordsFile string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the SALDO nouns found in a word list as a JSON array",
		RunE: func(cmd *cobra.Command, _ []string) error {
			nouns, err := parseFile(saldoFile, word.ParseSaldo)
			if err != nil {
				return err
			}
			words, err := parseFile(wordsFile, word.ParseWordList)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(word.Intersect(nouns, words))
		},
	}
	cmd.Flags().StringVar(&saldoFile, "saldo", "", "SALDO lexicon, tab separated")
	cmd.Flags().StringVar(&wordsFile, "words", "", "word list, the first field of each line is used")
	cmd.MarkFlagRequired("saldo")
	cmd.MarkFlagRequired("words")
	return cmd
}

func parseFile(name string, parse func(io.Reader) ([]string, error)) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

func nounsTopCmd() *cobra.Command {
	var (
		nounsFile string
		freqFile  string
		n         int
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the n most frequent nouns, one per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			nouns, err := parseFile(nounsFile, word.ParseNouns)
			if err != nil {
				return err
			}

			ff, err := os.Open(freqFile)
			if err != nil {
				return err
			}
			defer ff.Close()
			freq, err := word.ParseFrequencies(ff)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range word.TopByFrequency(nouns, freq, n) {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&nounsFile, "nouns", "", "noun list, JSON array or one word per line")
	cmd.Flags().StringVar(&freqFile, "freq", "", "frequency list of \"word count\" lines")
	cmd.Flags().IntVarP(&n, "n", "n", 1000, "number of nouns to keep")
	cmd.MarkFlagRequired("nouns")
	cmd.MarkFlagRequired("freq")
	return cmd
}
