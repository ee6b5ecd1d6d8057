package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/wantarr/pkg/release"
)

var parseCmd = &cobra.Command{
	Use:   "parse <release>...",
	Short: "Parse a release name locally",
	Long: `Parse a release name locally. No network calls.

Examples:
  wantarr parse "Dark.Waters.2019.1080p.BluRay.x264-GROUP"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	parsed := struct {
		Input   string `json:"input"`
		Title   string `json:"title"`
		Year    int    `json:"year,omitempty"`
		Quality string `json:"quality"`
	}{
		Input:   name,
		Title:   release.CleanTitle(name),
		Year:    release.ParseYear(name),
		Quality: release.ParseQuality(name),
	}

	if jsonOutput {
		printJSON(parsed)
		return nil
	}

	fmt.Printf("Title:   %s\n", parsed.Title)
	if parsed.Year > 0 {
		fmt.Printf("Year:    %d\n", parsed.Year)
	}
	fmt.Printf("Quality: %s\n", parsed.Quality)
	return nil
}
