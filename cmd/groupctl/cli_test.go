package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/backend/internal/domain"
)

const reviewPanelYAML = `
products:
  - line_item_id: li_001_master
    product_name:
      extracted_value: "G2 Content: Regional Content Subscription"
      source: Order Form
  - line_item_id: li_001_salesforce
    product_name:
      crm_value: Regional Content Subscription
      source: Salesforce
  - line_item_id: li_002_master
    product_name:
      extracted_value: "G2 Content: Social Asset Creation"
      source: Order Form
  - line_item_id: li_002_salesforce
    product_name:
      crm_value: Social Asset Creation
      source: Salesforce
  - line_item_id: li_003_single
    product_name:
      crm_value: Premium Support Package
      source: Salesforce
`

// execute runs the root command with fresh flag state and returns its output
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	reset := func(cmd *cobra.Command) {
		for _, flags := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			flags.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
	reset(rootCmd)
	for _, cmd := range rootCmd.Commands() {
		reset(cmd)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGroupCommand(t *testing.T) {
	t.Run("prints groups from a YAML file", func(t *testing.T) {
		path := writeFile(t, "products.yaml", reviewPanelYAML)

		out, err := execute(t, "", "group", path)

		require.NoError(t, err)
		assert.Contains(t, out, "5 products in 3 groups (threshold 0.85, seed mode)")
		assert.Contains(t, out, "[1] G2 Content: Regional Content Subscription")
		assert.Contains(t, out, "[3] Premium Support Package")
		assert.Contains(t, out, "li_001_salesforce")
		assert.Contains(t, out, "Order Form")
	})

	t.Run("prints JSON with overrides", func(t *testing.T) {
		path := writeFile(t, "products.yaml", reviewPanelYAML)

		out, err := execute(t, "", "group", path, "--json", "--threshold", "1", "--mode", "transitive")

		require.NoError(t, err)
		var result domain.GroupResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 5, result.GroupCount)
		assert.Equal(t, 1.0, result.Options.Threshold)
		assert.Equal(t, domain.ModeTransitive, result.Options.Mode)
	})

	t.Run("reads a JSON list from stdin", func(t *testing.T) {
		input := `[{"line_item_id": "a", "product_name": {"crm_value": "Basic Plan"}},
			{"line_item_id": "b", "product_name": {"crm_value": "Premium Plan"}}]`

		out, err := execute(t, input, "group", "-", "--query", "premium")

		require.NoError(t, err)
		assert.Contains(t, out, "2 products in 1 groups")
		// both names normalize to "plan", so the query keeps the single group
		assert.Contains(t, out, "[1] Basic Plan")
		assert.Contains(t, out, "Premium Plan")
	})

	t.Run("rejects invalid threshold", func(t *testing.T) {
		path := writeFile(t, "products.yaml", reviewPanelYAML)

		_, err := execute(t, "", "group", path, "--threshold", "2")

		assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
	})

	t.Run("fails for missing file", func(t *testing.T) {
		_, err := execute(t, "", "group", filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Error(t, err)
	})
}

func TestCompareCommand(t *testing.T) {
	out, err := execute(t, "", "compare", "Regional Content Subscription", "G2 Content: Regional Content Subscription")

	require.NoError(t, err)
	assert.Contains(t, out, `"content subscription"`)
	assert.Contains(t, out, `"regional content subscription"`)
	assert.Contains(t, out, "similarity: 0.9500")
	assert.Contains(t, out, "same group")

	out, err = execute(t, "", "compare", "Regional Content Subscription", "G2 Content: Regional Content Subscription", "--threshold", "0.99")

	require.NoError(t, err)
	assert.Contains(t, out, "separate")
}

func TestNormalizeCommand(t *testing.T) {
	out, err := execute(t, "", "normalize", "G2 Content: Social Asset Creation")

	require.NoError(t, err)
	assert.Equal(t, "social asset creation\n", out)
}

func TestParseProducts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{name: "empty document", input: "  \n", wantIDs: []string{}},
		{name: "YAML list", input: "- line_item_id: a\n- line_item_id: b\n", wantIDs: []string{"a", "b"}},
		{name: "JSON object", input: `{"products": [{"line_item_id": "a"}]}`, wantIDs: []string{"a"}},
		{name: "object without products", input: "items: []\n", wantErr: true},
		{name: "scalar document", input: "just text", wantErr: true},
		{name: "malformed", input: "[unclosed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := parseProducts([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			ids := []string{}
			for _, p := range products {
				ids = append(ids, p.LineItemID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
