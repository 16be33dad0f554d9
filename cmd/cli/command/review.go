package command

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// reviewCmd groups the review subcommands
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Read and post reviews",
}

var reviewListCmd = &cobra.Command{
	Use:   "list <title-id>",
	Short: "List reviews of a title, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title id %q", args[0])
		}
		page, _ := cmd.Flags().GetInt("page")

		resp, err := newClient(cmd).ListReviews(titleID, page)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		if len(resp.Results) == 0 {
			color.Yellow("No reviews yet.")
			return nil
		}
		for _, r := range resp.Results {
			color.Cyan("#%d %s scored %d/10 on %s", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02"))
			fmt.Printf("    %s\n", r.Text)
		}
		printPageFooter(resp.Count, resp.Next != nil)
		return nil
	},
}

var reviewPostCmd = &cobra.Command{
	Use:   "post <title-id>",
	Short: "Review a title (one review per title)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title id %q", args[0])
		}
		text, _ := cmd.Flags().GetString("text")
		score, _ := cmd.Flags().GetInt("score")
		if score < 0 || score > 10 {
			return fmt.Errorf("score must be between 0 and 10")
		}

		resp, err := newClient(cmd).CreateReview(titleID, text, score)
		if err != nil {
			return fmt.Errorf("post review: %w", err)
		}
		fmt.Printf("✓ Review #%d posted\n", resp.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewPostCmd)

	reviewListCmd.Flags().Int("page", 1, "Page number")

	reviewPostCmd.Flags().StringP("text", "t", "", "Review text")
	reviewPostCmd.Flags().IntP("score", "s", -1, "Score from 0 to 10")
	reviewPostCmd.MarkFlagRequired("text")
	reviewPostCmd.MarkFlagRequired("score")
}
