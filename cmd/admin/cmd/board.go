package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

func BoardCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "board <user-id>",
		Short: "Print the goals a user sees, by bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			u, err := service.NewUserService(repository.NewUserRepository(database)).ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sessions := service.NewSessions(repository.NewGoalRepository(database), repository.NewGroupRepository(database), nil, 0)
			board, err := sessions.Board(cmd.Context(), u)
			if err != nil {
				return err
			}

			buckets, err := board.Load(cmd.Context(), repository.GoalFilter{Status: model.ApprovalStatus(status)})
			if err != nil {
				return err
			}

			printBuckets(color.Output, buckets)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only goals with this approval status")

	return cmd
}

var title = cases.Title(language.English)

func printBuckets(w io.Writer, b lifecycle.Buckets) {
	heading := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	for _, bucket := range []lifecycle.Bucket{lifecycle.BucketTodo, lifecycle.BucketDoing, lifecycle.BucketDone} {
		goals := b.In(bucket)
		_, _ = heading.Fprint(w, title.String(string(bucket)))
		_, _ = faint.Fprintf(w, " - %d\n", len(goals))

		if len(goals) == 0 {
			_, _ = faint.Fprint(w, " none\n\n")
			continue
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 40
		for _, g := range goals {
			tbl.AddRow(g.ID, g.Title, statusLabel(g.ApprovalStatus), strconv.Itoa(g.Progress)+"%", g.StartDate.Format("2006-01-02"))
		}
		_, _ = fmt.Fprintln(w, tbl)
		_, _ = fmt.Fprintln(w)
	}
}

func statusLabel(s model.ApprovalStatus) string {
	label := title.String(string(s))
	switch s {
	case model.ApprovalApproved:
		return color.GreenString(label)
	case model.ApprovalRejected:
		return color.RedString(label)
	default:
		return color.YellowString(label)
	}
}
