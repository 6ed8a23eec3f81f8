package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"strapimcp/internal/config"
	"strapimcp/internal/strapi"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	checkOutputFormat string
	checkQuiet        bool
	checkTimeout      time.Duration
)

// checkCmd probes the configured Strapi instance: it validates the STRAPI_*
// environment, exercises credential fallback by running content-type
// discovery, and reports what an MCP session would see.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity and credentials for the configured Strapi instance",
	Long: `Validates the STRAPI_* environment and probes the configured Strapi
instance the same way the MCP server would: content types are discovered
using whichever credentials are available, falling back from the admin
session to the API token.

The command exits 0 when the instance is reachable and at least one
credential mode works, and 1 otherwise.

Examples:
  strapi-mcp check
  strapi-mcp check --output json
  strapi-mcp check --quiet && echo reachable`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// checkReport is the JSON shape of the check result.
type checkReport struct {
	URL              string   `json:"url"`
	APIToken         bool     `json:"apiToken"`
	AdminCredentials bool     `json:"adminCredentials"`
	DevMode          bool     `json:"devMode"`
	ContentTypes     []string `json:"contentTypes,omitempty"`
	Error            string   `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	report := checkReport{
		URL:              cfg.URL,
		APIToken:         cfg.HasAPIToken(),
		AdminCredentials: cfg.HasAdminCredentials(),
		DevMode:          cfg.DevMode,
	}

	var s *spinner.Spinner
	if !checkQuiet && checkOutputFormat != "json" {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Probing %s...", cfg.URL)
		s.Start()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client := strapi.NewClient(cfg)
	types, probeErr := client.ContentTypes(ctx)
	if probeErr != nil {
		report.Error = probeErr.Error()
	} else {
		for _, ct := range types {
			report.ContentTypes = append(report.ContentTypes, ct.UID)
		}
	}

	if s != nil {
		s.Stop()
	}

	switch {
	case checkOutputFormat == "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	case checkQuiet:
		// Exit code only.
	default:
		renderCheckTable(report)
	}

	if probeErr != nil {
		if !checkQuiet && checkOutputFormat != "json" {
			fmt.Fprintf(os.Stderr, "%s\n", text.FgRed.Sprintf("Strapi instance at %s is not usable: %v", cfg.URL, probeErr))
		}
		return fmt.Errorf("check failed: %w", probeErr)
	}
	return nil
}

func renderCheckTable(report checkReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Check", "Status"})
	t.AppendRow(table.Row{"Strapi URL", report.URL})
	t.AppendRow(table.Row{"API token", configuredMark(report.APIToken)})
	t.AppendRow(table.Row{"Admin credentials", configuredMark(report.AdminCredentials)})
	t.AppendRow(table.Row{"Dev mode", configuredMark(report.DevMode)})
	if report.Error != "" {
		t.AppendRow(table.Row{"Content-type discovery", text.FgRed.Sprint("failed")})
	} else {
		t.AppendRow(table.Row{"Content-type discovery", text.FgGreen.Sprintf("%d content types", len(report.ContentTypes))})
	}
	t.Render()
}

func configuredMark(ok bool) string {
	if ok {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgHiBlack.Sprint("no")
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkOutputFormat, "output", "o", "table", "Output format (table, json)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Suppress output, report via exit code only")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 15*time.Second, "Probe timeout")
}
