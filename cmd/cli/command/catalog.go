package command

import (
	"fmt"
	"strings"

	"reviewhub/cmd/cli/command/client"
	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newSlugCmd builds the list/create commands shared by categories and genres.
func newSlugCmd(use, plural string) *cobra.Command {
	parent := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Browse and manage %s", plural),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", plural),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			resp, err := newClient(cmd).ListCatalog(plural, page)
			if err != nil {
				return fmt.Errorf("list %s: %w", plural, err)
			}
			if len(resp.Results) == 0 {
				color.Yellow("No %s found.", plural)
				return nil
			}
			for _, item := range resp.Results {
				fmt.Printf("%-24s %s\n", item.Slug, item.Name)
			}
			printPageFooter(resp.Count, resp.Next != nil)
			return nil
		},
	}
	list.Flags().Int("page", 1, "Page number")

	create := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create one of the %s (admin only)", plural),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			slug, _ := cmd.Flags().GetString("slug")
			if !apperror.IsSlug(slug) {
				return fmt.Errorf("invalid slug %q: use letters, numbers, hyphens and underscores", slug)
			}
			resp, err := newClient(cmd).CreateCatalog(plural, name, slug)
			if err != nil {
				return fmt.Errorf("create %s: %w", use, err)
			}
			fmt.Printf("✓ Created %s %q (%s)\n", use, resp.Name, resp.Slug)
			return nil
		},
	}
	create.Flags().String("name", "", "Display name")
	create.Flags().String("slug", "", "URL slug")
	create.MarkFlagRequired("name")
	create.MarkFlagRequired("slug")

	parent.AddCommand(list, create)
	return parent
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Search titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q client.TitleQuery
		q.Category, _ = cmd.Flags().GetString("category")
		q.Genre, _ = cmd.Flags().GetString("genre")
		q.Name, _ = cmd.Flags().GetString("name")
		q.Year, _ = cmd.Flags().GetInt("year")
		q.Page, _ = cmd.Flags().GetInt("page")

		resp, err := newClient(cmd).ListTitles(q)
		if err != nil {
			return fmt.Errorf("list titles: %w", err)
		}
		if len(resp.Results) == 0 {
			color.Yellow("No titles found.")
			return nil
		}
		for _, t := range resp.Results {
			printTitle(t)
		}
		printPageFooter(resp.Count, resp.Next != nil)
		return nil
	},
}

func printTitle(t dto.TitleResponse) {
	year := "----"
	if t.Year != nil {
		year = fmt.Sprint(*t.Year)
	}
	rating := "no rating"
	if t.Rating != nil {
		rating = fmt.Sprintf("%.1f/10", *t.Rating)
	}
	color.Cyan("[%d] %s (%s) %s", t.ID, t.Name, year, rating)

	var parts []string
	if t.Category != nil {
		parts = append(parts, t.Category.Name)
	}
	for _, g := range t.Genre {
		parts = append(parts, g.Slug)
	}
	if len(parts) > 0 {
		fmt.Printf("    %s\n", strings.Join(parts, ", "))
	}
}

func printPageFooter(total int64, more bool) {
	if more {
		fmt.Printf("(%d total, use --page for more)\n", total)
		return
	}
	fmt.Printf("(%d total)\n", total)
}

func init() {
	rootCmd.AddCommand(newSlugCmd("category", "categories"))
	rootCmd.AddCommand(newSlugCmd("genre", "genres"))
	rootCmd.AddCommand(titlesCmd)

	titlesCmd.Flags().String("category", "", "Filter by category slug")
	titlesCmd.Flags().String("genre", "", "Filter by genre slug")
	titlesCmd.Flags().String("name", "", "Filter by name substring")
	titlesCmd.Flags().Int("year", 0, "Filter by release year")
	titlesCmd.Flags().Int("page", 1, "Page number")
}
