package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
)

const dateLayout = "2006-01-02"

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage candidates",
	Long:  "Create candidates and record the work history, skills and education used for matching",
}

var addCandidateCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a candidate",
	Example: `  jobmatch candidate add --name "Ana Silva" --email ana@example.com --city Lisbon --country Portugal --salary 55000
  jobmatch candidate add --name "Bruno Costa" --years 6 --relocate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("--name is required")
		}

		c := &models.Candidate{Name: strings.TrimSpace(name), IsActive: true}
		if err := applyCandidateFlags(cmd, c); err != nil {
			return err
		}

		if err := application.Store.CreateCandidate(cmd.Context(), c); err != nil {
			return fmt.Errorf("save candidate: %w", err)
		}
		cmd.Printf("✓ Candidate added: %s (ID: %d)\n", c.Name, c.ID)
		return nil
	},
}

var setCandidateCmd = &cobra.Command{
	Use:   "set <candidate-id>",
	Short: "Update candidate fields",
	Args:  cobra.ExactArgs(1),
	Example: `  jobmatch candidate set 3 --city Porto
  jobmatch candidate set 3 --active=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}

		c, err := application.Store.GetCandidate(cmd.Context(), id)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			c.Name = name
		}
		if err := applyCandidateFlags(cmd, c); err != nil {
			return err
		}
		if cmd.Flags().Changed("active") {
			c.IsActive, _ = cmd.Flags().GetBool("active")
		}

		if err := application.Store.UpdateCandidate(cmd.Context(), c); err != nil {
			return fmt.Errorf("update candidate: %w", err)
		}
		cmd.Println("✓ Candidate updated successfully!")
		return nil
	},
}

// applyCandidateFlags copies the optional profile flags that were given onto c
func applyCandidateFlags(cmd *cobra.Command, c *models.Candidate) error {
	flags := cmd.Flags()
	if flags.Changed("email") {
		c.Email, _ = flags.GetString("email")
	}
	if flags.Changed("city") {
		c.City, _ = flags.GetString("city")
	}
	if flags.Changed("country") {
		c.Country, _ = flags.GetString("country")
	}
	if flags.Changed("salary") {
		salary, _ := flags.GetFloat64("salary")
		if salary <= 0 {
			return fmt.Errorf("--salary must be positive")
		}
		c.ExpectedSalary = &salary
	}
	if flags.Changed("years") {
		c.YearsOfExperience, _ = flags.GetFloat64("years")
	}
	if flags.Changed("relocate") {
		c.WillingToRelocate, _ = flags.GetBool("relocate")
	}
	return nil
}

var showCandidateCmd = &cobra.Command{
	Use:   "show <candidate-id>",
	Short: "Display a candidate profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}

		c, err := application.Store.GetCandidate(cmd.Context(), id)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render(c.Name))
		printField(cmd, "Email:", c.Email)
		printField(cmd, "Location:", c.Location())
		if c.ExpectedSalary != nil {
			printField(cmd, "Expected Salary:", fmt.Sprintf("%.0f", *c.ExpectedSalary))
		}
		printField(cmd, "Years of Experience:", fmt.Sprintf("%.1f", c.YearsOfExperience))
		printField(cmd, "Willing to Relocate:", yesNo(c.WillingToRelocate))
		printField(cmd, "Active:", yesNo(c.IsActive))

		if len(c.Skills) > 0 {
			cmd.Println(labelStyle.Render("\nSkills:"))
			for _, skill := range c.Skills {
				cmd.Printf("  • %s (%s)\n", skill.Name, skill.Proficiency)
			}
		}

		if len(c.Employment) > 0 {
			cmd.Println(labelStyle.Render("\nExperience:"))
			for _, e := range c.Employment {
				end := "present"
				if e.EndDate != nil {
					end = e.EndDate.Format(dateLayout)
				}
				cmd.Printf("  • %s at %s (%s to %s)\n", e.Title, e.Company, e.StartDate.Format(dateLayout), end)
			}
		}

		if len(c.Education) > 0 {
			cmd.Println(labelStyle.Render("\nEducation:"))
			for _, e := range c.Education {
				cmd.Printf("  • %s, %s", titleCase(humanize(string(e.Degree))), e.Institution)
				if e.Field != "" {
					cmd.Printf(" (%s)", e.Field)
				}
				cmd.Println()
			}
		}
		return nil
	},
}

var listCandidatesCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		candidates, err := application.Store.ListCandidates(cmd.Context())
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			cmd.Println("No candidates yet. Add one with 'jobmatch candidate add'")
			return nil
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("Candidates (%d)", len(candidates))))
		for _, c := range candidates {
			status := ""
			if !c.IsActive {
				status = " [inactive]"
			}
			cmd.Printf("[%d] %s - %s%s\n", c.ID, c.Name, c.Location(), status)
		}
		return nil
	},
}

var candidateSkillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage candidate skills",
}

var addCandidateSkillCmd = &cobra.Command{
	Use:   "add <candidate-id> <skill-name>",
	Short: "Add a skill or change its level",
	Args:  cobra.ExactArgs(2),
	Example: `  jobmatch candidate skill add 1 "Go" --level expert
  jobmatch candidate skill add 1 "PostgreSQL" --level advanced --category database`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}

		level, _ := cmd.Flags().GetString("level")
		category, _ := cmd.Flags().GetString("category")
		if err := oneOf("level", level, proficiencies); err != nil {
			return err
		}

		skill := &models.SkillEntry{
			CandidateID: id,
			Name:        args[1],
			Proficiency: models.Proficiency(level),
			Category:    category,
		}
		if err := application.Store.AddCandidateSkill(cmd.Context(), skill); err != nil {
			return fmt.Errorf("add skill: %w", err)
		}
		cmd.Printf("✓ Skill saved: %s (%s)\n", skill.Name, skill.Proficiency)
		return nil
	},
}

var candidateExperienceCmd = &cobra.Command{
	Use:   "experience",
	Short: "Manage candidate work history",
}

var addExperienceCmd = &cobra.Command{
	Use:   "add <candidate-id>",
	Short: "Add an employment period",
	Args:  cobra.ExactArgs(1),
	Example: `  jobmatch candidate experience add 1 --company Acme --title "Backend Engineer" --start 2019-03-01 --end 2022-08-31 --size medium
  jobmatch candidate experience add 1 --company Beta --title "Senior Backend Engineer" --start 2022-09-01 --technologies "go postgresql kafka"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}

		company, _ := cmd.Flags().GetString("company")
		title, _ := cmd.Flags().GetString("title")
		if company == "" || title == "" {
			return fmt.Errorf("--company and --title are required")
		}

		startRaw, _ := cmd.Flags().GetString("start")
		start, err := time.Parse(dateLayout, startRaw)
		if err != nil {
			return fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", startRaw)
		}
		period := &models.EmploymentPeriod{
			CandidateID: id,
			Company:     company,
			Title:       title,
			StartDate:   start,
		}

		if endRaw, _ := cmd.Flags().GetString("end"); endRaw != "" {
			end, err := time.Parse(dateLayout, endRaw)
			if err != nil {
				return fmt.Errorf("invalid --end %q, expected YYYY-MM-DD", endRaw)
			}
			if end.Before(start) {
				return fmt.Errorf("--end is before --start")
			}
			period.EndDate = &end
		}

		period.Technologies, _ = cmd.Flags().GetString("technologies")
		period.Industry, _ = cmd.Flags().GetString("industry")
		size, _ := cmd.Flags().GetString("size")
		if size != "" {
			if err := oneOf("size", size, companySizes); err != nil {
				return err
			}
			period.CompanySize = models.CompanySize(size)
		}

		if err := application.Store.AddEmployment(cmd.Context(), period); err != nil {
			return fmt.Errorf("add experience: %w", err)
		}
		cmd.Printf("✓ Experience added: %s at %s\n", period.Title, period.Company)
		return nil
	},
}

var candidateEducationCmd = &cobra.Command{
	Use:   "education",
	Short: "Manage candidate education",
}

var addEducationCmd = &cobra.Command{
	Use:     "add <candidate-id>",
	Short:   "Add a degree",
	Args:    cobra.ExactArgs(1),
	Example: `  jobmatch candidate education add 1 --institution "University of Porto" --degree master --field "Computer Science"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("candidate", args[0])
		if err != nil {
			return err
		}

		institution, _ := cmd.Flags().GetString("institution")
		degree, _ := cmd.Flags().GetString("degree")
		field, _ := cmd.Flags().GetString("field")
		if institution == "" {
			return fmt.Errorf("--institution is required")
		}
		if err := oneOf("degree", degree, degrees); err != nil {
			return err
		}

		entry := &models.EducationEntry{
			CandidateID: id,
			Institution: institution,
			Degree:      models.DegreeLevel(degree),
			Field:       field,
		}
		if err := application.Store.AddEducation(cmd.Context(), entry); err != nil {
			return fmt.Errorf("add education: %w", err)
		}
		cmd.Printf("✓ Education added: %s, %s\n", entry.Degree, entry.Institution)
		return nil
	},
}

var (
	proficiencies = []string{"beginner", "basic", "intermediate", "advanced", "expert", "master"}
	companySizes  = []string{"startup", "small", "medium", "large", "enterprise"}
	degrees       = []string{"high_school", "certificate", "diploma", "bachelor", "master", "phd"}
)

func oneOf(flag, value string, valid []string) error {
	for _, v := range valid {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, must be one of: %s", flag, value, strings.Join(valid, ", "))
}

func printField(cmd *cobra.Command, label, value string) {
	if value == "" {
		return
	}
	cmd.Printf("%s %s\n", labelStyle.Render(label), valueStyle.Render(value))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(candidateCmd)
	candidateCmd.AddCommand(addCandidateCmd, setCandidateCmd, showCandidateCmd, listCandidatesCmd)
	candidateCmd.AddCommand(candidateSkillCmd, candidateExperienceCmd, candidateEducationCmd)
	candidateSkillCmd.AddCommand(addCandidateSkillCmd)
	candidateExperienceCmd.AddCommand(addExperienceCmd)
	candidateEducationCmd.AddCommand(addEducationCmd)

	for _, c := range []*cobra.Command{addCandidateCmd, setCandidateCmd} {
		c.Flags().String("name", "", "Full name")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("city", "", "City")
		c.Flags().String("country", "", "Country")
		c.Flags().Float64("salary", 0, "Expected yearly salary")
		c.Flags().Float64("years", 0, "Years of experience when no work history is recorded")
		c.Flags().Bool("relocate", false, "Willing to relocate")
	}
	setCandidateCmd.Flags().Bool("active", true, "Whether the candidate is matched")

	addCandidateSkillCmd.Flags().String("level", "intermediate", "Proficiency: "+strings.Join(proficiencies, ", "))
	addCandidateSkillCmd.Flags().String("category", "", "Skill category")

	addExperienceCmd.Flags().String("company", "", "Company name")
	addExperienceCmd.Flags().String("title", "", "Job title")
	addExperienceCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	addExperienceCmd.Flags().String("end", "", "End date (YYYY-MM-DD), empty for the current position")
	addExperienceCmd.Flags().String("technologies", "", "Technologies used, space separated")
	addExperienceCmd.Flags().String("industry", "", "Industry")
	addExperienceCmd.Flags().String("size", "", "Company size: "+strings.Join(companySizes, ", "))

	addEducationCmd.Flags().String("institution", "", "School or university")
	addEducationCmd.Flags().String("degree", "bachelor", "Degree: "+strings.Join(degrees, ", "))
	addEducationCmd.Flags().String("field", "", "Field of study")
}
