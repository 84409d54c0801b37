package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage job postings",
	Long:  "Add, list and view job postings, their required skills and applications",
}

var addJobCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job posting",
	Example: `  jobmatch job add --title "Senior Backend Engineer" --company "Acme Inc" --city Porto --country Portugal --level senior --salary-min 45000 --salary-max 60000
  jobmatch job add --title "Platform Engineer" --company Beta --level mid --remote --deadline 2026-12-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		title, _ := flags.GetString("title")
		company, _ := flags.GetString("company")
		if title == "" || company == "" {
			return fmt.Errorf("--title and --company are required")
		}

		job := &models.Job{Title: title, Company: company}
		job.City, _ = flags.GetString("city")
		job.Country, _ = flags.GetString("country")
		job.RemoteWork, _ = flags.GetBool("remote")

		level, _ := flags.GetString("level")
		if err := oneOf("level", level, experienceLevels); err != nil {
			return err
		}
		job.ExperienceLevel = models.ExperienceLevel(level)

		if size, _ := flags.GetString("size"); size != "" {
			if err := oneOf("size", size, companySizes); err != nil {
				return err
			}
			job.CompanySize = models.CompanySize(size)
		}

		status, _ := flags.GetString("status")
		if err := oneOf("status", status, jobStatuses); err != nil {
			return err
		}
		job.Status = models.JobStatus(status)

		if flags.Changed("salary-min") {
			v, _ := flags.GetFloat64("salary-min")
			job.SalaryMin = &v
		}
		if flags.Changed("salary-max") {
			v, _ := flags.GetFloat64("salary-max")
			job.SalaryMax = &v
		}
		if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMax < *job.SalaryMin {
			return fmt.Errorf("--salary-max is below --salary-min")
		}

		if raw, _ := flags.GetString("deadline"); raw != "" {
			deadline, err := time.Parse(dateLayout, raw)
			if err != nil {
				return fmt.Errorf("invalid --deadline %q, expected YYYY-MM-DD", raw)
			}
			// the deadline day is still open
			deadline = deadline.Add(24*time.Hour - time.Second)
			job.ApplicationDeadline = &deadline
		}

		if err := application.Store.CreateJob(cmd.Context(), job); err != nil {
			return fmt.Errorf("save job: %w", err)
		}
		cmd.Printf("✓ Job added: %s at %s (ID: %d)\n", job.Title, job.Company, job.ID)
		return nil
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		jobs, err := application.Store.ListJobs(cmd.Context())
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			cmd.Println("No jobs found. Add one with 'jobmatch job add'")
			return nil
		}

		now := time.Now()
		cmd.Println(titleStyle.Render(fmt.Sprintf("Jobs (%d)", len(jobs))))
		for _, j := range jobs {
			state := string(j.Status)
			if j.Status == models.JobPublished && !j.IsOpen(now) {
				state = "expired"
			}
			cmd.Printf("[%d] %s at %s - %s [%s]\n", j.ID, j.Title, j.Company, jobWhere(j), state)
		}
		return nil
	},
}

var showJobCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Display a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("job", args[0])
		if err != nil {
			return err
		}

		j, err := application.Store.GetJob(cmd.Context(), id)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render(j.Title))
		printField(cmd, "Company:", j.Company)
		printField(cmd, "Location:", jobWhere(j))
		printField(cmd, "Level:", titleCase(humanize(string(j.ExperienceLevel))))
		printField(cmd, "Company Size:", titleCase(string(j.CompanySize)))
		printField(cmd, "Salary:", salaryRange(j))
		printField(cmd, "Status:", titleCase(string(j.Status)))
		printField(cmd, "Posted:", j.PostedAt.Format(dateLayout))
		if j.ApplicationDeadline != nil {
			printField(cmd, "Deadline:", j.ApplicationDeadline.Format(dateLayout))
		}

		if len(j.RequiredSkills) > 0 {
			cmd.Println(labelStyle.Render("\nRequired Skills:"))
			for _, s := range j.RequiredSkills {
				cmd.Printf("  • %s (%s)\n", s.Name, humanize(string(s.Necessity)))
			}
		}
		return nil
	},
}

var closeJobCmd = &cobra.Command{
	Use:   "close <job-id>",
	Short: "Stop matching a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("job", args[0])
		if err != nil {
			return err
		}
		if err := application.Store.UpdateJobStatus(cmd.Context(), id, models.JobClosed); err != nil {
			return err
		}
		cmd.Printf("✓ Job %d closed\n", id)
		return nil
	},
}

var jobSkillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Manage required skills of a job",
}

var addJobSkillCmd = &cobra.Command{
	Use:   "add <job-id> <skill-name>",
	Short: "Add a required skill",
	Args:  cobra.ExactArgs(2),
	Example: `  jobmatch job skill add 1 "Go"
  jobmatch job skill add 1 "Kubernetes" --necessity preferred`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := parseID("job", args[0])
		if err != nil {
			return err
		}

		necessity, _ := cmd.Flags().GetString("necessity")
		if err := oneOf("necessity", necessity, necessities); err != nil {
			return err
		}

		skill := &models.RequiredSkill{JobID: id, Name: args[1], Necessity: models.Necessity(necessity)}
		if err := application.Store.AddJobSkill(cmd.Context(), skill); err != nil {
			return fmt.Errorf("add job skill: %w", err)
		}
		cmd.Printf("✓ Required skill saved: %s (%s)\n", skill.Name, humanize(necessity))
		return nil
	},
}

var applyJobCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Record that a candidate applied to a job",
	Long:  "Applied pairs are excluded from bulk matching on both sides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		jobID, err := parseID("job", args[0])
		if err != nil {
			return err
		}
		candidateID, _ := cmd.Flags().GetInt("candidate")
		if candidateID <= 0 {
			return fmt.Errorf("--candidate is required")
		}

		a := &models.Application{CandidateID: candidateID, JobID: jobID}
		if err := application.Store.CreateApplication(cmd.Context(), a); err != nil {
			if errors.Is(err, models.ErrConflict) {
				cmd.Println("This candidate has already applied to this job.")
				return nil
			}
			return fmt.Errorf("save application: %w", err)
		}
		cmd.Printf("✓ Application recorded (ID: %d)\n", a.ID)
		return nil
	},
}

var (
	experienceLevels = []string{"entry", "junior", "mid", "senior", "lead", "principal", "director", "executive", "c_level"}
	jobStatuses      = []string{"draft", "published", "closed"}
	necessities      = []string{"required", "preferred", "nice_to_have"}
)

func jobWhere(j *models.Job) string {
	where := j.Location()
	switch {
	case j.RemoteWork && where == "":
		return "Remote"
	case j.RemoteWork:
		return where + " (remote)"
	}
	return where
}

func salaryRange(j *models.Job) string {
	switch {
	case j.SalaryMin != nil && j.SalaryMax != nil:
		return fmt.Sprintf("%.0f - %.0f", *j.SalaryMin, *j.SalaryMax)
	case j.SalaryMin != nil:
		return fmt.Sprintf("from %.0f", *j.SalaryMin)
	case j.SalaryMax != nil:
		return fmt.Sprintf("up to %.0f", *j.SalaryMax)
	}
	return ""
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// titleCase converts a string to title case using proper locale-aware capitalization
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(addJobCmd, listJobsCmd, showJobCmd, closeJobCmd, jobSkillCmd, applyJobCmd)
	jobSkillCmd.AddCommand(addJobSkillCmd)

	// Flags for add command
	addJobCmd.Flags().String("title", "", "Job title")
	addJobCmd.Flags().String("company", "", "Company name")
	addJobCmd.Flags().String("city", "", "City")
	addJobCmd.Flags().String("country", "", "Country")
	addJobCmd.Flags().Bool("remote", false, "Remote work allowed")
	addJobCmd.Flags().String("level", "mid", "Experience level: "+strings.Join(experienceLevels, ", "))
	addJobCmd.Flags().String("size", "", "Company size: "+strings.Join(companySizes, ", "))
	addJobCmd.Flags().String("status", "published", "Status: "+strings.Join(jobStatuses, ", "))
	addJobCmd.Flags().Float64("salary-min", 0, "Minimum yearly salary")
	addJobCmd.Flags().Float64("salary-max", 0, "Maximum yearly salary")
	addJobCmd.Flags().String("deadline", "", "Application deadline (YYYY-MM-DD)")

	addJobSkillCmd.Flags().String("necessity", "required", "Necessity: "+strings.Join(necessities, ", "))
	applyJobCmd.Flags().Int("candidate", 0, "Candidate ID")
}
