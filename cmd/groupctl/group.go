package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dealdesk/backend/internal/domain"
)

var (
	groupThreshold  float64
	groupMode       string
	groupEmptyNames string
	groupQuery      string
	groupJSON       bool
)

var groupCmd = &cobra.Command{
	Use:   "group <file>",
	Short: "Group the products in a YAML or JSON file",
	Long: `Reads line items from <file> ("-" for stdin) and prints the product groups
in the order the review panel shows them.`,
	Args: cobra.ExactArgs(1),
	RunE: runGroup,
}

func init() {
	groupCmd.Flags().Float64Var(&groupThreshold, "threshold", 0, "similarity threshold in [0,1] (default from config)")
	groupCmd.Flags().StringVar(&groupMode, "mode", "", "grouping mode: seed or transitive (default from config)")
	groupCmd.Flags().StringVar(&groupEmptyNames, "empty-names", "", "unnamed products: isolate or merge (default from config)")
	groupCmd.Flags().StringVarP(&groupQuery, "query", "q", "", "only show products matching this text")
	groupCmd.Flags().BoolVar(&groupJSON, "json", false, "print the result as JSON")
}

func runGroup(cmd *cobra.Command, args []string) error {
	products, err := readProducts(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	service, err := newService()
	if err != nil {
		return err
	}

	req := &domain.GroupRequest{
		Products:   products,
		Mode:       domain.GroupingMode(groupMode),
		EmptyNames: domain.EmptyNamePolicy(groupEmptyNames),
		Query:      groupQuery,
	}
	if cmd.Flags().Changed("threshold") {
		threshold := groupThreshold
		req.Threshold = &threshold
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := service.GroupProducts(ctx, req)
	if err != nil {
		return err
	}

	if groupJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printGroups(cmd.OutOrStdout(), result)
}

func printGroups(out io.Writer, result *domain.GroupResult) error {
	fmt.Fprintf(out, "%d products in %d groups (threshold %.2f, %s mode)\n",
		result.ProductCount, result.GroupCount, result.Options.Threshold, result.Options.Mode)

	for _, group := range result.Groups {
		fmt.Fprintf(out, "\n[%d] %s\n", group.Index+1, group.Label)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range group.Products {
			source := p.ProductName.SourceInfo()
			fmt.Fprintf(w, "  %s\t%s\t%s\n", p.LineItemID, p.ProductName.DisplayValue(), source.Label)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
