package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
)

func (r *runner) categoriesCmd() *cobra.Command {
	var incorrect bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List quiz categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, svc *Services) error {
				list := svc.Quizzes.ListCategories
				if incorrect {
					list = svc.Quizzes.ListCategoriesWithIncorrect
				}

				categories, err := list(ctx)
				if err != nil {
					return err
				}

				return r.render(cmd, dto.NewCategoryResponses(categories), func() ([]string, [][]string) {
					rows := make([][]string, 0, len(categories))
					for _, c := range categories {
						rows = append(rows, []string{c.ID, c.Name, strconv.Itoa(len(c.Quizzes))})
					}

					return []string{"ID", "CATEGORY", "QUIZZES"}, rows
				})
			})
		},
	}

	cmd.Flags().BoolVar(&incorrect, "incorrect", false, "only categories with quizzes answered wrong")

	return cmd
}

func (r *runner) quizzesCmd() *cobra.Command {
	var collected bool

	cmd := &cobra.Command{
		Use:   "quizzes <categoryID>",
		Short: "List the quizzes of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, svc *Services) error {
				quizzes, err := svc.Quizzes.ListQuizzes(ctx, args[0], collected)
				if err != nil {
					return err
				}

				return r.render(cmd, dto.NewQuizResponses(quizzes), func() ([]string, [][]string) {
					rows := make([][]string, 0, len(quizzes))
					for _, q := range quizzes {
						options := make([]string, 0, len(q.Options))
						for _, o := range q.Options {
							options = append(options, o.Text)
						}

						rows = append(rows, []string{
							q.ID, q.RenderedContent(), strings.Join(options, " / "), yesNo(q.IsCollected),
						})
					}

					return []string{"ID", "QUESTION", "OPTIONS", "COLLECTED"}, rows
				})
			})
		},
	}

	cmd.Flags().BoolVar(&collected, "collected", false, "only quizzes answered wrong")

	return cmd
}
