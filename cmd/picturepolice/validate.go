package main

import (
	"fmt"

	"github.com/codeGROOVE-dev/picturepolice/pkg/webdetect"
	"github.com/spf13/cobra"
)

var validateKeyCmd = &cobra.Command{
	Use:   "validate-key",
	Short: "Check that the Cloud Vision API key works",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.RequireAPIKey(); err != nil {
			return err
		}
		v, err := webdetect.NewVision(cmd.Context(), cfg.Vision.APIKey,
			webdetect.WithLogger(logger),
			webdetect.WithEndpoint(cfg.Vision.Endpoint))
		if err != nil {
			return err
		}
		if err := v.Validate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateKeyCmd)
}
