package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/wantarr/internal/metadata"
	"github.com/vmunix/wantarr/internal/orchestrator"
	"github.com/vmunix/wantarr/internal/rank"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>...",
	Short: "Find titles, their library status and download candidates",
	Long: `Find titles, their library status and download candidates.

Examples:
  wantarr search "Dark Waters"
  wantarr search --type movie --year-min 2015 "Dark Waters"
  wantarr search --sort rating --exclude cam "The Expanse"
  wantarr search tmdb:522212`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	registerSearchFlags(searchCmd)
	searchCmd.Flags().Int("max", 0, "Show at most this many candidates per title")
}

func registerSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Media type (movie or series)")
	cmd.Flags().Int("year-min", 0, "Earliest release year")
	cmd.Flags().Int("year-max", 0, "Latest release year")
	cmd.Flags().Float64("rating-min", 0, "Minimum catalog rating (0-10)")
	cmd.Flags().StringSlice("genre", nil, "Required genres (any match)")
	cmd.Flags().StringSlice("include", nil, "Keywords a release must contain")
	cmd.Flags().StringSlice("exclude", nil, "Keywords that drop a release")
	cmd.Flags().String("language", "", "Language token releases must carry")
	cmd.Flags().String("sort", "", "Sort key (popularity, rating, releaseDate, title, voteCount)")
	cmd.Flags().Bool("asc", false, "Sort ascending instead of descending")
	cmd.Flags().Bool("only-in-library", false, "Only titles a library manager knows")
	cmd.Flags().Bool("exclude-in-library", false, "Only titles no library manager knows")
	cmd.Flags().Bool("adult", false, "Include adult titles")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	spec, err := specFromFlags(cmd)
	if err != nil {
		return err
	}
	maxShown, _ := cmd.Flags().GetInt("max")

	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.orch.Search(ctx, query, spec)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		printJSON(results)
		return nil
	}
	if len(results) == 0 {
		fmt.Println("No titles found")
		return nil
	}
	printResults(results, maxShown)
	return nil
}

func specFromFlags(cmd *cobra.Command) (rank.FilterSpec, error) {
	var spec rank.FilterSpec
	mediaType, _ := cmd.Flags().GetString("type")
	switch mediaType {
	case "":
	case "movie":
		spec.MediaType = metadata.MediaMovie
	case "series", "tv", "show":
		spec.MediaType = metadata.MediaSeries
	default:
		return spec, fmt.Errorf("unknown media type %q, want movie or series", mediaType)
	}
	spec.YearMin, _ = cmd.Flags().GetInt("year-min")
	spec.YearMax, _ = cmd.Flags().GetInt("year-max")
	spec.RatingMin, _ = cmd.Flags().GetFloat64("rating-min")
	spec.Genres, _ = cmd.Flags().GetStringSlice("genre")
	spec.IncludeKeywords, _ = cmd.Flags().GetStringSlice("include")
	spec.ExcludeKeywords, _ = cmd.Flags().GetStringSlice("exclude")
	spec.Language, _ = cmd.Flags().GetString("language")
	spec.SortBy, _ = cmd.Flags().GetString("sort")
	spec.SortAscending, _ = cmd.Flags().GetBool("asc")
	spec.OnlyInLibrary, _ = cmd.Flags().GetBool("only-in-library")
	spec.ExcludeInLibrary, _ = cmd.Flags().GetBool("exclude-in-library")
	spec.IncludeAdult, _ = cmd.Flags().GetBool("adult")
	return spec, nil
}

func printResults(results []orchestrator.Result, maxShown int) {
	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		name := r.Title.Name
		if r.Title.Year > 0 {
			name = fmt.Sprintf("%s (%d)", name, r.Title.Year)
		}
		fmt.Printf("%s - %s", name, r.Status.Tag)
		if r.Status.Progress > 0 && r.Status.Progress < 100 {
			fmt.Printf(" %d%%", r.Status.Progress)
		}
		fmt.Println()
		fmt.Printf("  %s\n", r.Status.Message)
		for _, d := range r.Status.Details {
			fmt.Printf("  note: %s\n", d)
		}

		if len(r.Candidates) == 0 {
			continue
		}
		fmt.Printf("\n  %3s │ %-44s │ %7s │ %8s │ %5s │ %s\n", "#", "RELEASE", "QUALITY", "SIZE", "SEED", "HEALTH")
		shown := r.Candidates
		if maxShown > 0 && len(shown) > maxShown {
			shown = shown[:maxShown]
		}
		for j, c := range shown {
			title := truncate(c.Title, 44)
			fmt.Printf("  %3d │ %-44s │ %7s │ %8s │ %5d │ %s\n",
				j+1, title, c.Quality, c.FormattedSize, c.Seeders, c.HealthRating)
		}
		if len(shown) < len(r.Candidates) {
			fmt.Printf("  ... %d more\n", len(r.Candidates)-len(shown))
		}
	}
}

// truncate shortens s to at most max display characters, cutting on
// rune boundaries so multi-byte names stay valid.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
