package cmd

import (
	"fmt"
	"strconv"

	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var similarityCmd = &cobra.Command{
	Use:   "similarity",
	Short: "Manage skill and industry similarity tables",
	Long: `Similar skills give partial credit when a candidate lacks a required skill.
Pairs are symmetric and case-insensitive; only scores of 0.7 and above are used.`,
}

var addSimilarityCmd = &cobra.Command{
	Use:   "add <a> <b> <score>",
	Short: "Add or update a similarity pair",
	Args:  cobra.ExactArgs(3),
	Example: `  jobmatch similarity add PostgreSQL MySQL 0.8
  jobmatch similarity add fintech banking 0.9 --kind industry`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		kind, _ := cmd.Flags().GetString("kind")
		if err := oneOf("kind", kind, similarityKinds); err != nil {
			return err
		}
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid score %q", args[2])
		}

		pair := &models.SimilarityPair{Kind: models.SimilarityKind(kind), A: args[0], B: args[1], Score: score}
		if err := application.Store.AddSimilarity(cmd.Context(), pair); err != nil {
			return err
		}
		cmd.Printf("✓ %s similarity saved: %s ~ %s (%.2f)\n", titleCase(kind), pair.A, pair.B, pair.Score)
		return nil
	},
}

var listSimilarityCmd = &cobra.Command{
	Use:   "list",
	Short: "List similarity pairs",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		kind, _ := cmd.Flags().GetString("kind")
		if err := oneOf("kind", kind, similarityKinds); err != nil {
			return err
		}
		pairs, err := application.Store.ListSimilarities(cmd.Context(), models.SimilarityKind(kind))
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			cmd.Printf("No %s similarities yet. Add one with 'jobmatch similarity add'\n", kind)
			return nil
		}

		cmd.Println(titleStyle.Render(titleCase(kind) + " Similarities"))
		for _, p := range pairs {
			cmd.Printf("  %s ~ %s  %.2f\n", p.A, p.B, p.Score)
		}
		return nil
	},
}

var similarityKinds = []string{"skill", "industry"}

func init() {
	rootCmd.AddCommand(similarityCmd)
	similarityCmd.AddCommand(addSimilarityCmd, listSimilarityCmd)

	for _, c := range []*cobra.Command{addSimilarityCmd, listSimilarityCmd} {
		c.Flags().String("kind", "skill", "Table: skill or industry")
	}
}
