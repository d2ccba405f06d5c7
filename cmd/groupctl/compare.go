package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compareThreshold float64

var compareCmd = &cobra.Command{
	Use:   "compare <name-a> <name-b>",
	Short: "Show how two product names score against each other",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <name>",
	Short: "Print a product name as the grouper compares it",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func init() {
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 0, "similarity threshold in [0,1] (default from config)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	service, err := newService()
	if err != nil {
		return err
	}

	var threshold *float64
	if cmd.Flags().Changed("threshold") {
		threshold = &compareThreshold
	}

	comparison, err := service.Compare(args[0], args[1], threshold)
	if err != nil {
		return err
	}

	verdict := "separate"
	if comparison.WouldGroup {
		verdict = "same group"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "a:          %q -> %q\n", comparison.A, comparison.NormalizedA)
	fmt.Fprintf(out, "b:          %q -> %q\n", comparison.B, comparison.NormalizedB)
	fmt.Fprintf(out, "similarity: %.4f\n", comparison.Similarity)
	fmt.Fprintf(out, "threshold:  %.2f (%s)\n", comparison.Threshold, verdict)
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	service, err := newService()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), service.Normalize(args[0]))
	return nil
}
