package main

import (
	"fmt"

	"github.com/codeGROOVE-dev/picturepolice/pkg/confidence"
	"github.com/codeGROOVE-dev/picturepolice/pkg/provenance"
	"github.com/spf13/cobra"
)

var scoreURL bool

var scoreCmd = &cobra.Command{
	Use:   "score IDENTITY TEXT",
	Short: "Score how strongly an identity appears in text or at a URL",
	Long: `Prints a 0-100 score for how strongly IDENTITY appears in TEXT.
With --url, TEXT is treated as a URL: pages on Facebook, Instagram and
Pinterest are fetched and their title and description scored as well.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, text := args[0], args[1]
		score := confidence.Score(identity, text)
		if scoreURL {
			c := provenance.New(
				provenance.WithLogger(logger),
				provenance.WithTimeout(cfg.Provenance.FetchTimeout))
			score = c.CheckURL(cmd.Context(), text, identity)
		}
		fmt.Fprintln(cmd.OutOrStdout(), score)
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreURL, "url", false, "treat TEXT as a URL and check its provenance")
	rootCmd.AddCommand(scoreCmd)
}
