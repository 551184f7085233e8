package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vastustructural/internal/config"
	"vastustructural/internal/database"
	"vastustructural/internal/lifecycle"
	"vastustructural/internal/model"
	"vastustructural/internal/service"
)

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Print the project lifecycle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(TitleStyle.Render("Project lifecycle"))
		registry := lifecycle.Registry()
		fmt.Print(table([]string{"RANK", "ID", "LABEL", "CATEGORY"}, statusRows(registry), func(row, col int, cell string) string {
			if col == 2 {
				return categoryStyle(registry[row].Category).Render(cell)
			}
			if !registry[row].Canonical {
				return DimStyle.Render(cell)
			}
			return cell
		}))
		return nil
	},
}

func statusRows(registry []lifecycle.StatusInfo) [][]string {
	rows := make([][]string, 0, len(registry))
	for _, s := range registry {
		rows = append(rows, []string{strconv.Itoa(s.Rank), string(s.ID), s.Label, string(s.Category)})
	}
	return rows
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage == config.StorageMemory {
			fmt.Println(DimStyle.Render("Storage is memory, nothing to migrate."))
			return nil
		}
		db, err := database.NewConnection(cfg.DSN())
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Println(SuccessStyle.Render("Schema is up to date."))
		return nil
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account if it does not exist",
	Long: `Create the admin account from --email and --password, falling back to
ADMIN_EMAIL and ADMIN_PASSWORD from the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if name == "" {
			name = cfg.Admin.Name
		}
		if email == "" {
			email = cfg.Admin.Email
		}
		if password == "" {
			password = cfg.Admin.Password
		}

		services, err := openServices()
		if err != nil {
			return err
		}
		created, err := services.Users.SeedAdmin(context.Background(), name, email, password)
		if err != nil {
			return err
		}
		if created {
			fmt.Println(SuccessStyle.Render("Admin " + email + " created."))
		} else {
			fmt.Println(DimStyle.Render("Admin " + email + " already exists."))
		}
		return nil
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Inspect and move projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		services, err := openServices()
		if err != nil {
			return err
		}
		projects, total, err := services.Projects.ListProjects(context.Background(), service.ProjectListQuery{
			Status: status,
			Search: search,
			Page:   1,
			Limit:  limit,
		})
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			contractor := "-"
			if p.Contractor != nil {
				contractor = p.Contractor.DisplayName
			}
			rows = append(rows, []string{p.OrderID, p.CustomerName, p.PlanName, p.StatusLabel, contractor, p.ID})
		}
		fmt.Print(table([]string{"ORDER", "CUSTOMER", "PLAN", "STATUS", "CONTRACTOR", "ID"}, rows, func(row, col int, cell string) string {
			if col == 3 {
				return categoryStyle(projects[row].StatusCategory).Render(cell)
			}
			return cell
		}))
		fmt.Println(DimStyle.Render(fmt.Sprintf("%d of %d projects", len(projects), total)))
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project with its update log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := openServices()
		if err != nil {
			return err
		}
		p, err := services.Projects.GetProject(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(TitleStyle.Render(p.OrderID + "  " + p.CustomerName))
		fmt.Printf("Plan:        %s\n", p.PlanName)
		fmt.Printf("Status:      %s  %s\n", badge(p.Status), DimStyle.Render(fmt.Sprintf("step %d, %d%%", p.ProgressStep, p.ProgressPercent)))
		if p.Contractor != nil {
			fmt.Printf("Contractor:  %s\n", p.Contractor.DisplayName)
		}
		if p.Facing != "" {
			fmt.Printf("Facing:      %s\n", p.Facing)
		}
		if len(p.AllowedStatuses) > 0 {
			allowed := make([]string, len(p.AllowedStatuses))
			for i, s := range p.AllowedStatuses {
				allowed[i] = string(s)
			}
			fmt.Printf("Can move to: %s\n", DimStyle.Render(strings.Join(allowed, ", ")))
		}

		fmt.Println()
		fmt.Println(HeaderStyle.Render("Updates"))
		for _, u := range p.Updates {
			author := string(u.CreatedBy)
			if u.AuthorName != "" {
				author = u.AuthorName
			}
			fmt.Printf("  %s  %s  %s\n    %s\n",
				DimStyle.Render(u.CreatedAt.Format("2006-01-02 15:04")), badge(u.Status), DimStyle.Render(author), u.Message)
		}
		if len(p.Deliverables) > 0 {
			fmt.Println()
			fmt.Println(HeaderStyle.Render("Deliverables"))
			for _, d := range p.Deliverables {
				fmt.Printf("  %-8s %s  %s\n", d.Type, d.Name, DimStyle.Render(d.URL))
			}
		}
		return nil
	},
}

var projectsTransitionCmd = &cobra.Command{
	Use:   "transition <id> <status>",
	Short: "Move a project to another status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")

		services, err := openServices()
		if err != nil {
			return err
		}
		update, err := services.Lifecycle.Transition(context.Background(), args[0], model.Status(args[1]), message, operator(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", SuccessStyle.Render("Moved to"), badge(update.Status))
		return nil
	},
}

var contractorsCmd = &cobra.Command{
	Use:   "contractors",
	Short: "Review partner applications",
}

var contractorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contractors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")

		services, err := openServices()
		if err != nil {
			return err
		}
		contractors, total, err := services.Contractors.List(context.Background(), status, search, 1, 200)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(contractors))
		for _, c := range contractors {
			rows = append(rows, []string{c.DisplayName, c.Phone, c.District, c.Status, c.ReferralCode, strconv.Itoa(c.ProjectCount), c.ID})
		}
		fmt.Print(table([]string{"NAME", "PHONE", "DISTRICT", "STATUS", "CODE", "PROJECTS", "ID"}, rows, func(row, col int, cell string) string {
			if col != 3 {
				return cell
			}
			switch contractors[row].Status {
			case model.ContractorApproved:
				return SuccessStyle.Render(cell)
			case model.ContractorRejected:
				return ErrorStyle.Render(cell)
			}
			return WarningStyle.Render(cell)
		}))
		fmt.Println(DimStyle.Render(fmt.Sprintf("%d contractors", total)))
		return nil
	},
}

var contractorsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending contractor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := openServices()
		if err != nil {
			return err
		}
		c, err := services.Contractors.Approve(context.Background(), args[0], operator(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("%s %s (referral code %s)\n", SuccessStyle.Render("Approved"), c.DisplayName, c.ReferralCode)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().String("name", "", "Admin display name")
	seedAdminCmd.Flags().String("email", "", "Admin email")
	seedAdminCmd.Flags().String("password", "", "Admin password (min 8 characters)")

	projectsListCmd.Flags().StringP("status", "s", "", "Filter by status id")
	projectsListCmd.Flags().String("search", "", "Search order ID, customer or phone")
	projectsListCmd.Flags().IntP("limit", "n", 50, "Maximum rows")
	projectsTransitionCmd.Flags().StringP("message", "m", "", "Update message shown in the portals (required)")
	_ = projectsTransitionCmd.MarkFlagRequired("message")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsTransitionCmd)

	contractorsListCmd.Flags().StringP("status", "s", "", "Filter by status: pending, approved, rejected")
	contractorsListCmd.Flags().String("search", "", "Search name, company, phone or district")

	contractorsCmd.AddCommand(contractorsListCmd)
	contractorsCmd.AddCommand(contractorsApproveCmd)
}
