package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/khrees2412/jobmatch/internal/app"
	"github.com/khrees2412/jobmatch/internal/matcher"
	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <candidate-id>",
	Short: "Browse a candidate's best job matches interactively",
	Long:  "Find the best open jobs for a candidate, then open each match to read its analysis and record interest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		candidateID, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}
		return runReview(cmd, application, candidateID)
	},
}

func runReview(cmd *cobra.Command, application *app.App, candidateID int) error {
	results, err := application.Engine.FindForCandidate(cmd.Context(), candidateID, application.DefaultLimit())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		cmd.Println("No matching jobs found. Add jobs with 'jobmatch job add'")
		return nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	for {
		// Display match list
		cmd.Println(titleStyle.Render("Match Browser"))
		cmd.Println("Press 'q' to quit, or enter a match number to view details")
		cmd.Println()

		for i, r := range results {
			cmd.Printf("%d. %s  %s at %s%s\n", i+1, renderScore(r.Match.OverallScore), r.Job.Title, r.Job.Company, interestTag(r.Match))
		}

		cmd.Print("\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "q" || input == "Q" || (err == io.EOF && input == "") {
			return nil
		}

		n, convErr := strconv.Atoi(input)
		if convErr != nil || n < 1 || n > len(results) {
			cmd.Println("Invalid selection")
			continue
		}

		if err := reviewMatch(cmd, application, results[n-1], reader); err != nil {
			return err
		}
	}
}

var interestKeys = map[string]models.Interest{
	"v": models.InterestVeryInterested,
	"i": models.InterestInterested,
	"n": models.InterestNotInterested,
	"a": models.InterestApplied,
}

func reviewMatch(cmd *cobra.Command, application *app.App, r matcher.Result, reader *bufio.Reader) error {
	ctx := cmd.Context()
	if !r.Match.ViewedByCandidate {
		if err := application.Engine.MarkViewed(ctx, r.Match.ID, models.ViewedByCandidate); err != nil {
			return err
		}
		r.Match.ViewedByCandidate = true
	}

	for {
		cmd.Println("\n" + strings.Repeat("=", 60))
		cmd.Println(titleStyle.Render(fmt.Sprintf("%s at %s", r.Job.Title, r.Job.Company)))
		printField(cmd, "Location:", jobWhere(r.Job))
		printField(cmd, "Salary:", salaryRange(r.Job))
		printMatchDetails(cmd, r.Match, application.Engine.Algorithm())

		cmd.Println("\nOptions:")
		cmd.Println("  [v] Very interested")
		cmd.Println("  [i] Interested")
		cmd.Println("  [n] Not interested")
		cmd.Println("  [a] Mark as applied")
		cmd.Println("  [b] Back to list")
		cmd.Print("\n> ")

		choice, err := reader.ReadString('\n')
		choice = strings.TrimSpace(strings.ToLower(choice))
		if choice == "b" || (err == io.EOF && choice == "") {
			return nil
		}

		interest, ok := interestKeys[choice]
		if !ok {
			cmd.Println("Invalid choice")
			continue
		}
		if err := application.Engine.UpdateInterest(ctx, r.Match.ID, interest); err != nil {
			return err
		}
		r.Match.CandidateInterest = interest
		cmd.Printf("✓ Marked as %s\n", humanize(string(interest)))
		return nil
	}
}

func interestTag(m *models.MatchRecord) string {
	if m.CandidateInterest == models.InterestUnset {
		if !m.ViewedByCandidate {
			return "  (new)"
		}
		return ""
	}
	return "  [" + humanize(string(m.CandidateInterest)) + "]"
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
