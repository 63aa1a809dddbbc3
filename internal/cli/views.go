package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maestro-drills/backend/internal/models"
	"github.com/maestro-drills/backend/internal/srs"
)

func newDueCmd(load configLoader) *cobra.Command {
	var horizon int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show overdue, due today and upcoming exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(load)
			if err != nil {
				return err
			}
			defer a.Close()

			sets, err := a.service.DueSets(cmd.Context(), horizon)
			if err != nil {
				return err
			}
			printDueSets(cmd.OutOrStdout(), sets)
			return nil
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", 0, "days ahead to include (default from config)")
	return cmd
}

func printDueSets(out io.Writer, sets *models.DueSets) {
	if len(sets.Overdue) == 0 && len(sets.Today) == 0 && len(sets.Upcoming) == 0 {
		fmt.Fprintln(out, "Nothing due. Good job.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "When\tID\tExercise\tDomain\tDiff")
	fmt.Fprintln(w, "----\t--\t--------\t------\t----")
	for _, ex := range sets.Overdue {
		fmt.Fprintf(w, "overdue\t%s\t%s\t%s\t%d\n", ex.ID, ex.Title, ex.Domain, ex.Difficulty)
	}
	for _, ex := range sets.Today {
		fmt.Fprintf(w, "today\t%s\t%s\t%s\t%d\n", ex.ID, ex.Title, ex.Domain, ex.Difficulty)
	}
	for _, day := range sets.Upcoming {
		for _, ex := range day.Exercises {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", day.Date, ex.ID, ex.Title, ex.Domain, ex.Difficulty)
		}
	}
	w.Flush()
}

func newStatsCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion, mastery and streak statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(load)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.service.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func printStats(out io.Writer, stats *models.Stats) {
	fmt.Fprintln(out, "Statistics")
	fmt.Fprintln(out, "----------")
	fmt.Fprintf(out, "Exercises:      %d\n", stats.TotalExercises)
	fmt.Fprintf(out, "Completed:      %d\n", stats.TotalCompleted)
	fmt.Fprintf(out, "Reviews:        %d (%d%% passed)\n", stats.TotalReviews, stats.RetentionRate)
	fmt.Fprintf(out, "Average ease:   %.2f\n", stats.AverageEaseFactor)
	fmt.Fprintf(out, "Streak:         %d (longest %d)\n", stats.CurrentStreak, stats.LongestStreak)
	fmt.Fprintf(out, "Global mastery: %d%%\n\n", stats.GlobalMastery)

	domains := make([]string, 0, len(stats.Domains))
	for d := range stats.Domains {
		domains = append(domains, d)
	}
	slices.Sort(domains)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Domain\tCompleted\tMastery")
	for _, d := range domains {
		ds := stats.Domains[d]
		fmt.Fprintf(w, "%s\t%d/%d\t%d%%\n", d, ds.Completed, ds.Total, ds.Mastery)
	}
	w.Flush()
}

func newRateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <exercise-id> <1-4>",
		Short: "Rate an exercise: 1 again, 2 hard, 3 good, 4 easy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating must be a number between 1 and 4: %q", args[1])
			}
			if _, err := srs.ParseRating(rating); err != nil {
				return err
			}

			a, err := newApp(load)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.service.Rate(cmd.Context(), args[0], rating)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %s: next review %s (%s), ease %.2f\n",
				resp.Exercise.ID, srs.Rating(rating), resp.NextReview, resp.DueLabel, resp.Exercise.EaseFactor)
			return nil
		},
	}
}
