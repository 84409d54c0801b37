package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var algorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Manage matching algorithms",
	Long:  "Create weight configurations and choose which one scores new matches",
}

var createAlgorithmCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a matching algorithm",
	Args:  cobra.ExactArgs(1),
	Example: `  jobmatch algorithm create skills-first --skills 45 --experience 20 --location 10 --salary 10 --education 5 --culture 10 --activate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		a := &models.MatchingAlgorithm{Name: args[0]}
		a.Description, _ = flags.GetString("description")
		a.ExperienceWeight, _ = flags.GetInt("experience")
		a.SkillsWeight, _ = flags.GetInt("skills")
		a.LocationWeight, _ = flags.GetInt("location")
		a.SalaryWeight, _ = flags.GetInt("salary")
		a.EducationWeight, _ = flags.GetInt("education")
		a.CultureWeight, _ = flags.GetInt("culture")
		a.MinimumMatchScore, _ = flags.GetInt("min-score")
		a.HighMatchThreshold, _ = flags.GetInt("high-score")
		a.LocationRadiusKM, _ = flags.GetInt("radius")
		a.IsActive, _ = flags.GetBool("activate")

		if err := application.Store.CreateAlgorithm(cmd.Context(), a); err != nil {
			if errors.Is(err, models.ErrInvalidAlgorithm) {
				return err
			}
			return fmt.Errorf("save algorithm: %w", err)
		}
		cmd.Printf("✓ Algorithm created: %s (ID: %d, total weight %d)\n", a.Name, a.ID, a.TotalWeight())
		if a.IsActive {
			cmd.Println("  It is now the active algorithm.")
		}
		return nil
	},
}

var listAlgorithmsCmd = &cobra.Command{
	Use:   "list",
	Short: "List matching algorithms",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		algorithms, err := application.Store.ListAlgorithms(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render("Matching Algorithms"))
		for _, a := range algorithms {
			marker := " "
			if a.IsActive {
				marker = "*"
			}
			cmd.Printf("%s [%d] %s  exp %d / skills %d / loc %d / salary %d / edu %d / culture %d  min %d high %d radius %dkm\n",
				marker, a.ID, labelStyle.Render(a.Name),
				a.ExperienceWeight, a.SkillsWeight, a.LocationWeight, a.SalaryWeight, a.EducationWeight, a.CultureWeight,
				a.MinimumMatchScore, a.HighMatchThreshold, a.LocationRadiusKM)
		}
		return nil
	},
}

var activateAlgorithmCmd = &cobra.Command{
	Use:   "activate <name|id>",
	Short: "Make an algorithm the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		id, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			a, err := application.Store.AlgorithmByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			id = a.ID
		}

		if err := application.Store.ActivateAlgorithm(cmd.Context(), id); err != nil {
			return err
		}
		cmd.Printf("✓ Algorithm %s is now active\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(algorithmCmd)
	algorithmCmd.AddCommand(createAlgorithmCmd, listAlgorithmsCmd, activateAlgorithmCmd)

	f := createAlgorithmCmd.Flags()
	f.String("description", "", "Description")
	f.Int("experience", models.DefaultExperienceWeight, "Experience weight")
	f.Int("skills", models.DefaultSkillsWeight, "Skills weight")
	f.Int("location", models.DefaultLocationWeight, "Location weight")
	f.Int("salary", models.DefaultSalaryWeight, "Salary weight")
	f.Int("education", models.DefaultEducationWeight, "Education weight")
	f.Int("culture", models.DefaultCultureWeight, "Company culture weight")
	f.Int("min-score", models.DefaultMinimumMatchScore, "Minimum overall score kept by bulk matching")
	f.Int("high-score", models.DefaultHighMatchThreshold, "Score from which a match counts as high")
	f.Int("radius", models.DefaultLocationRadiusKM, "Location radius in km")
	f.Bool("activate", false, "Make it the active algorithm")
}
