package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var prefsCandidateCmd = &cobra.Command{
	Use:   "prefs <candidate-id>",
	Short: "Show or change what jobs a candidate is shown",
	Long:  "Without flags the current preferences are shown. Flags that are given replace the stored values.",
	Args:  cobra.ExactArgs(1),
	Example: `  jobmatch candidate prefs 1
  jobmatch candidate prefs 1 --min-score 75 --exclude-company Initech
  jobmatch candidate prefs 1 --only-high --exclude-location Berlin,Munich`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}
		if _, err := application.Store.GetCandidate(cmd.Context(), id); err != nil {
			return err
		}

		p, err := application.Store.CandidatePreferences(cmd.Context(), id)
		switch {
		case errors.Is(err, models.ErrNotFound):
			p = &models.CandidatePreference{CandidateID: id, MinMatchScore: models.DefaultMinMatchScore}
		case err != nil:
			return err
		}

		flags := cmd.Flags()
		changed := false
		if flags.Changed("min-score") {
			p.MinMatchScore, _ = flags.GetInt("min-score")
			changed = true
		}
		if flags.Changed("only-high") {
			p.OnlyHighMatches, _ = flags.GetBool("only-high")
			changed = true
		}
		if flags.Changed("exclude-company") {
			p.ExcludedCompanies, _ = flags.GetStringSlice("exclude-company")
			changed = true
		}
		if flags.Changed("exclude-location") {
			p.ExcludedLocations, _ = flags.GetStringSlice("exclude-location")
			changed = true
		}

		if changed {
			if err := application.Store.SetPreferences(cmd.Context(), p); err != nil {
				return err
			}
			cmd.Printf("✓ Preferences of candidate %d saved\n", id)
		}

		algo := application.Engine.Algorithm()
		cmd.Println(titleStyle.Render(fmt.Sprintf("Preferences of candidate %d", id)))
		printField(cmd, "Minimum Match Score:", fmt.Sprintf("%d", p.MinMatchScore))
		printField(cmd, "Only High Matches:", yesNo(p.OnlyHighMatches))
		printField(cmd, "Excluded Companies:", strings.Join(p.ExcludedCompanies, ", "))
		printField(cmd, "Excluded Locations:", strings.Join(p.ExcludedLocations, ", "))
		printField(cmd, "Shown From Score:", fmt.Sprintf("%d", p.Threshold(algo)))
		return nil
	},
}

func init() {
	candidateCmd.AddCommand(prefsCandidateCmd)

	prefsCandidateCmd.Flags().Int("min-score", models.DefaultMinMatchScore, "Lowest overall score to show")
	prefsCandidateCmd.Flags().Bool("only-high", false, "Only show matches at or above the algorithm's high threshold")
	prefsCandidateCmd.Flags().StringSlice("exclude-company", nil, "Companies never to show (comma separated)")
	prefsCandidateCmd.Flags().StringSlice("exclude-location", nil, "Cities, countries or \"city, country\" never to show")
}
