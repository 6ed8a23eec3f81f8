package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"strapimcp/internal/config"
	"strapimcp/internal/strapi"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var contentTypesOutputFormat string

// contentTypesCmd lists the content types the configured credentials can see.
// The same discovery runs on server startup to populate the MCP resource list.
var contentTypesCmd = &cobra.Command{
	Use:   "content-types",
	Short: "List content types discovered on the configured Strapi instance",
	Long: `Discovers and lists the content types of the configured Strapi instance,
using whichever credentials are available. In dev mode with admin
credentials this includes the full schema from the content-type builder;
otherwise discovery falls back to the public API.`,
	Args: cobra.NoArgs,
	RunE: runContentTypes,
}

func runContentTypes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := strapi.NewClient(cfg)
	types, err := client.ContentTypes(ctx)
	if err != nil {
		return fmt.Errorf("content-type discovery failed: %w", err)
	}

	if contentTypesOutputFormat == "json" {
		out, err := json.MarshalIndent(types, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"UID", "API ID", "Display Name", "Attributes"})
	for _, ct := range types {
		t.AppendRow(table.Row{ct.UID, ct.APIID, ct.DisplayName, len(ct.Attributes)})
	}
	t.Render()
	return nil
}

func init() {
	rootCmd.AddCommand(contentTypesCmd)

	contentTypesCmd.Flags().StringVarP(&contentTypesOutputFormat, "output", "o", "table", "Output format (table, json)")
}
