package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/missionrelease/assetlink/internal/description"
	"github.com/missionrelease/assetlink/internal/types"
	"github.com/missionrelease/assetlink/internal/ui"
)

var parseCmd = &cobra.Command{
	Use:   "parse [FILE|-]",
	Short: "Show the asset selections found in a description",
	Long: `Parse a description offline and print the (category, name) pairs it lists.

The input may be plain text, an ADF document, a JSON string, or a whole issue
as returned by the Jira REST API. With no argument or "-", stdin is read.

Formats:
  text      indented bullet tree (default)
  json      array of {category, name}
  markdown  tree rendered for the terminal`,
	Args: cobra.MaximumNArgs(1),
	Run:  runParse,
}

func init() {
	parseCmd.Flags().StringP("format", "f", "text", "Output format: text, json, markdown")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	if jsonOutput {
		format = "json"
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fatal("%v", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		fatal("read input: %v", err)
	}

	desc := readDescription(data)
	sels := description.Parse(desc)
	out, err := formatSelections(sels, format)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Print(out)
}

// readDescription classifies raw input. JSON objects carrying a
// fields.description are treated as issues.
func readDescription(data []byte) description.Description {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return description.Description{Kind: description.Empty}
	}
	switch trimmed[0] {
	case '{':
		var issue struct {
			Fields *struct {
				Description json.RawMessage `json:"description"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(trimmed, &issue); err == nil && issue.Fields != nil {
			return description.FromRaw(issue.Fields.Description)
		}
		return description.FromRaw(trimmed)
	case '"':
		return description.FromRaw(trimmed)
	default:
		return description.FromText(string(data))
	}
}

// formatSelections renders sels in the requested format.
func formatSelections(sels []types.Selection, format string) (string, error) {
	switch format {
	case "json":
		if sels == nil {
			sels = []types.Selection{}
		}
		data, err := json.MarshalIndent(sels, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "text":
		if len(sels) == 0 {
			return "No asset selections found\n", nil
		}
		return description.Outline(sels), nil
	case "markdown", "md":
		if len(sels) == 0 {
			return "No asset selections found\n", nil
		}
		md := "## " + description.DefaultHeading + "\n\n" + description.Outline(sels)
		return ui.RenderMarkdown(md), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or markdown)", format)
	}
}
