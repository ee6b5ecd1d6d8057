package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <query>...",
	Short: "Refresh the download status of one title",
	Long: `Refresh the download status of one title.

Resolves the query and re-reads live library state without re-running
the candidate search. Useful for polling a download kicked off
elsewhere.

Examples:
  wantarr status "Dark Waters"
  wantarr status tmdb:522212`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	titles, err := a.resolver.Resolve(ctx, query, a.settings.TMDB.Language, a.settings.TMDB.Region)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}
	if len(titles) == 0 {
		fmt.Println("No titles found")
		return nil
	}

	title := titles[0]
	st, err := a.orch.RefreshStatus(ctx, title)
	if err != nil {
		return fmt.Errorf("status refresh failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]any{"title": title, "status": st})
		return nil
	}

	name := title.Name
	if title.Year > 0 {
		name = fmt.Sprintf("%s (%d)", name, title.Year)
	}
	fmt.Printf("%s - %s", name, st.Tag)
	if st.Progress > 0 {
		fmt.Printf(" %d%%", st.Progress)
	}
	fmt.Println()
	fmt.Printf("  %s\n", st.Message)
	for _, d := range st.Details {
		fmt.Printf("  note: %s\n", d)
	}
	return nil
}
