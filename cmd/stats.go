package cmd

import (
	"fmt"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View match statistics and insights",
	Long:  "Display totals, high match share, conversion to applications and the most frequently matched skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		threshold := application.Engine.Algorithm().HighMatchThreshold
		stats, err := application.Store.MatchStats(cmd.Context(), threshold, time.Now())
		if err != nil {
			return err
		}
		if stats.Total == 0 {
			cmd.Println("No matches yet. Run 'jobmatch match find --candidate <id>'")
			return nil
		}

		cmd.Println(titleStyle.Render("Match Statistics"))

		cmd.Printf("\n%s\n", labelStyle.Render("Overview"))
		cmd.Printf("  Total Matches: %d\n", stats.Total)
		cmd.Printf("  High Matches (>= %d): %d (%.1f%%)\n", threshold, stats.HighMatches, stats.HighMatchPercentage)
		cmd.Printf("  Last 30 Days: %d\n", stats.RecentMatches)

		cmd.Printf("\n%s\n", labelStyle.Render("Conversion"))
		cmd.Printf("  Applied From Matches: %d\n", stats.Applied)
		cmd.Printf("  Conversion Rate: %.1f%%\n", stats.ConversionRate)

		trends, err := application.Store.MatchTrends(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		cmd.Printf("\n%s\n", labelStyle.Render(fmt.Sprintf("Last %d Days (trend: %s)", models.TrendDays, trends.Direction)))
		for _, d := range trends.Daily {
			cmd.Printf("  %s  %s\n", d.Day.Format("Mon 02 Jan"), plural(d.Count, "match"))
		}

		top, _ := cmd.Flags().GetInt("top")
		skills, err := application.Store.TopMatchingSkills(cmd.Context(), top)
		if err != nil {
			return err
		}
		if len(skills) > 0 {
			cmd.Printf("\n%s\n", labelStyle.Render("Top Matching Skills"))
			for _, s := range skills {
				cmd.Printf("  %s: %s\n", s.Skill, plural(s.Count, "match"))
			}
		}
		return nil
	},
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ses", n, word)
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Int("top", 10, "Number of skills to show")
}
