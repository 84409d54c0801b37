package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/jobmatch/internal/database"
	"github.com/khrees2412/jobmatch/internal/matcher"
	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var (
	highScoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	midScoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	lowScoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score candidates against jobs",
	Long:  "Compute, find and review candidate and job matches",
}

var scoreMatchCmd = &cobra.Command{
	Use:     "score <candidate-id> <job-id>",
	Short:   "Score one candidate against one job",
	Args:    cobra.ExactArgs(2),
	Example: `  jobmatch match score 1 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		candidateID, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}
		jobID, err := parseID("job", args[1])
		if err != nil {
			return err
		}

		m, err := application.Engine.Score(cmd.Context(), candidateID, jobID)
		if err != nil {
			return err
		}
		printMatchDetails(cmd, m, application.Engine.Algorithm())
		return nil
	},
}

var findMatchCmd = &cobra.Command{
	Use:   "find",
	Short: "Find the best jobs for a candidate or the best candidates for a job",
	Example: `  jobmatch match find --candidate 1
  jobmatch match find --job 4 --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		candidateID, _ := cmd.Flags().GetInt("candidate")
		jobID, _ := cmd.Flags().GetInt("job")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = application.DefaultLimit()
		}

		var results []matcher.Result
		switch {
		case candidateID > 0 && jobID > 0:
			return fmt.Errorf("use either --candidate or --job, not both")
		case candidateID > 0:
			results, err = application.Engine.FindForCandidate(cmd.Context(), candidateID, limit)
		case jobID > 0:
			results, err = application.Engine.FindForJob(cmd.Context(), jobID, limit)
		default:
			return fmt.Errorf("--candidate or --job is required")
		}
		if err != nil {
			return err
		}

		if len(results) == 0 {
			cmd.Printf("No matches at or above %d.\n", application.Engine.Algorithm().MinimumMatchScore)
			return nil
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("Top %d matches", len(results))))
		for i, r := range results {
			who := fmt.Sprintf("%s at %s", r.Job.Title, r.Job.Company)
			if candidateID == 0 {
				who = r.Candidate.Name
			}
			cmd.Printf("%2d. %s  %s  [match %d]\n", i+1, renderScore(r.Match.OverallScore), who, r.Match.ID)
		}
		return nil
	},
}

var listMatchCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		f := database.MatchFilter{}
		f.CandidateID, _ = cmd.Flags().GetInt("candidate")
		f.JobID, _ = cmd.Flags().GetInt("job")
		f.MinScore, _ = cmd.Flags().GetInt("min-score")
		f.Level, _ = cmd.Flags().GetString("level")
		f.Limit, _ = cmd.Flags().GetInt("limit")
		if f.Level != "" {
			if err := oneOf("level", f.Level, models.MatchLevels()); err != nil {
				return err
			}
		}
		if all, _ := cmd.Flags().GetBool("all-algorithms"); !all {
			f.AlgorithmID = application.Engine.Algorithm().ID
		}

		matches, err := application.Store.ListMatches(cmd.Context(), f)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			cmd.Println("No matches stored. Run 'jobmatch match find' first.")
			return nil
		}

		for _, m := range matches {
			flags := ""
			if m.CandidateInterest != models.InterestUnset {
				flags = " " + humanize(string(m.CandidateInterest))
			}
			cmd.Printf("[%d] %s  candidate %d / job %d  %s%s\n",
				m.ID, renderScore(m.OverallScore), m.CandidateID, m.JobID, humanize(m.Level()), flags)
		}
		return nil
	},
}

var historyMatchCmd = &cobra.Command{
	Use:   "history <match-id>",
	Short: "Show every scoring and action recorded for a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("match", args[0])
		if err != nil {
			return err
		}

		history, err := application.Store.MatchHistory(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Println(titleStyle.Render(fmt.Sprintf("History of match %d", id)))
		for _, h := range history {
			what := string(h.Event)
			if h.Detail != "" {
				what += " " + humanize(h.Detail)
			}
			cmd.Printf("  %s  %s  %-24s %s\n", h.CreatedAt.Local().Format("2006-01-02 15:04"),
				renderScore(h.OverallScore), what, h.AlgorithmName)
		}
		return nil
	},
}

var showMatchCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Display a stored match with its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("match", args[0])
		if err != nil {
			return err
		}

		m, err := application.Store.GetMatch(cmd.Context(), id)
		if err != nil {
			return err
		}
		printMatchDetails(cmd, m, application.Engine.Algorithm())
		return nil
	},
}

var interestMatchCmd = &cobra.Command{
	Use:   "interest <match-id> <value>",
	Short: "Record the candidate's interest in a match",
	Long:  "Value is one of: not_interested, interested, very_interested, applied, or \"\" to clear it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("match", args[0])
		if err != nil {
			return err
		}
		interest, err := models.ParseInterest(args[1])
		if err != nil {
			return err
		}

		if err := application.Engine.UpdateInterest(cmd.Context(), id, interest); err != nil {
			return err
		}
		cmd.Printf("✓ Interest for match %d set to %q\n", id, interest)
		return nil
	},
}

var viewMatchCmd = &cobra.Command{
	Use:   "view <match-id>",
	Short: "Mark a match as viewed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("match", args[0])
		if err != nil {
			return err
		}
		side, _ := cmd.Flags().GetString("side")

		if err := application.Engine.MarkViewed(cmd.Context(), id, models.ViewSide(side)); err != nil {
			return err
		}
		cmd.Printf("✓ Match %d marked as viewed by the %s\n", id, side)
		return nil
	},
}

func renderScore(score int) string {
	text := fmt.Sprintf("%3d", score)
	switch {
	case score >= 80:
		return highScoreStyle.Render(text)
	case score >= 60:
		return midScoreStyle.Render(text)
	default:
		return lowScoreStyle.Render(text)
	}
}

func printMatchDetails(cmd *cobra.Command, m *models.MatchRecord, a *models.MatchingAlgorithm) {
	cmd.Println(titleStyle.Render(fmt.Sprintf("Match %d: candidate %d / job %d", m.ID, m.CandidateID, m.JobID)))
	cmd.Printf("%s %s (%s)\n", labelStyle.Render("Overall:"), renderScore(m.OverallScore), titleCase(humanize(m.Level())))

	dims := []struct {
		label  string
		score  int
		weight int
	}{
		{"Experience", m.ExperienceScore, a.ExperienceWeight},
		{"Skills", m.SkillsScore, a.SkillsWeight},
		{"Location", m.LocationScore, a.LocationWeight},
		{"Salary", m.SalaryScore, a.SalaryWeight},
		{"Education", m.EducationScore, a.EducationWeight},
		{"Culture", m.CultureScore, a.CultureWeight},
	}
	for _, d := range dims {
		cmd.Printf("  %-11s %s  x%d%%\n", d.label, renderScore(d.score), d.weight)
	}
	if m.RelevantYears > 0 {
		cmd.Printf("  %-11s %.1f years\n", "Relevant", m.RelevantYears)
	}

	if len(m.MatchingSkills) > 0 {
		cmd.Println(labelStyle.Render("\nMatching Skills:"))
		for _, s := range m.MatchingSkills {
			cmd.Printf("  ✓ %s (%s, candidate %s)\n", s.Skill, humanize(string(s.RequiredLevel)), s.CandidateLevel)
		}
	}
	if len(m.SimilarSkills) > 0 {
		cmd.Println(labelStyle.Render("\nSimilar Skills:"))
		for _, s := range m.SimilarSkills {
			cmd.Printf("  ~ %s via %s\n", s.Skill, s.SimilarTo)
		}
	}
	if len(m.MissingSkills) > 0 {
		cmd.Println(labelStyle.Render("\nMissing Skills:"))
		cmd.Printf("  ✗ %s\n", strings.Join(m.MissingSkills, ", "))
	}
	if len(m.Strengths) > 0 {
		cmd.Println(labelStyle.Render("\nStrengths:"))
		for _, s := range m.Strengths {
			cmd.Printf("  • %s\n", s)
		}
	}
	if len(m.Concerns) > 0 {
		cmd.Println(labelStyle.Render("\nConcerns:"))
		for _, c := range m.Concerns {
			cmd.Printf("  • %s\n", c)
		}
	}
	if m.Recommendations != "" {
		cmd.Println(labelStyle.Render("\nRecommendations:"))
		for _, r := range strings.Split(m.Recommendations, "; ") {
			cmd.Printf("  → %s\n", r)
		}
	}
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.AddCommand(scoreMatchCmd, findMatchCmd, listMatchCmd, showMatchCmd, historyMatchCmd, interestMatchCmd, viewMatchCmd)

	findMatchCmd.Flags().Int("candidate", 0, "Find jobs for this candidate")
	findMatchCmd.Flags().Int("job", 0, "Find candidates for this job")
	findMatchCmd.Flags().IntP("limit", "n", 0, "Maximum number of matches (default from config)")

	listMatchCmd.Flags().Int("candidate", 0, "Only matches of this candidate")
	listMatchCmd.Flags().Int("job", 0, "Only matches of this job")
	listMatchCmd.Flags().Int("min-score", 0, "Minimum overall score")
	listMatchCmd.Flags().String("level", "", "Only this match level: "+strings.Join(models.MatchLevels(), ", "))
	listMatchCmd.Flags().IntP("limit", "n", 50, "Maximum number of matches")
	listMatchCmd.Flags().Bool("all-algorithms", false, "Include matches scored by inactive algorithms")

	viewMatchCmd.Flags().String("side", "candidate", "Who viewed it: candidate or recruiter")
}
