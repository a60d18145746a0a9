package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codeGROOVE-dev/picturepolice/pkg/match"
	"github.com/codeGROOVE-dev/picturepolice/pkg/picturepolice"
	"github.com/codeGROOVE-dev/picturepolice/pkg/scan"
	"github.com/spf13/cobra"
)

var (
	scanAuthor string
	scanRaw    bool

	// scannerOptions are appended to every scanner built by the scan command.
	scannerOptions []picturepolice.Option
)

var scanCmd = &cobra.Command{
	Use:   "scan --author NAME IMAGE_URL...",
	Short: "Reverse-search images and score earlier postings",
	Long: `Runs web detection for each image URL, classifies the matching pages
into evidence, removes the author's own earlier posts and social links, and
prints the scored results as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanAuthor, "author", "a", "", "username of the post's author")
	scanCmd.Flags().BoolVar(&scanRaw, "raw", false, "print only the per-image results")
	rootCmd.AddCommand(scanCmd)
}

// scanReport is the JSON printed by the scan command.
type scanReport struct {
	Author       string          `json:"author"`
	Images       int             `json:"images"`
	MaxScore     int             `json:"maxScore"`
	TotalMatches int             `json:"totalMatches"`
	Examples     []scan.Example  `json:"examples"`
	Results      []*match.Result `json:"results"`
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanAuthor == "" {
		return errors.New("--author is required")
	}
	ctx := cmd.Context()

	opts := []picturepolice.Option{picturepolice.WithLogger(logger)}
	if c := openCache(); c != nil {
		defer closeCache(c)
		opts = append(opts, picturepolice.WithHTTPCache(c))
	}
	opts = append(opts, scannerOptions...)

	s, err := picturepolice.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	results := s.Run(ctx, scanAuthor, args)

	var out any = results
	if !scanRaw {
		out = scanReport{
			Author:       scanAuthor,
			Images:       len(args),
			MaxScore:     scan.MaxScore(results),
			TotalMatches: scan.TotalMatches(results),
			Examples:     scan.ExampleURLs(results),
			Results:      results,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
