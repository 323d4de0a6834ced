// Package cli implements the flashcards command line: browsing tags, words,
// categories and quizzes, and adding words, over the same services as the API.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/flashcards/internal/app"
)

// Services are what the commands drive.
type Services struct {
	Words   *app.WordService
	Quizzes *app.QuizService
}

// Opener builds the services for a profile. The returned func releases them.
type Opener func(ctx context.Context, profile string) (*Services, func() error, error)

type runner struct {
	open    Opener
	profile string
	output  string
}

// NewRootCmd builds the command tree over open.
func NewRootCmd(open Opener) *cobra.Command {
	r := &runner{open: open}

	root := &cobra.Command{
		Use:           "flashcards",
		Short:         "Study words and quizzes stored in the content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch r.output {
			case outputTable, outputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output %q: use %s or %s", r.output, outputTable, outputJSON)
			}
		},
	}

	root.PersistentFlags().StringVar(&r.profile, "profile", "", "config profile (defaults to APP_ENVIRONMENT, then local)")
	root.PersistentFlags().StringVarP(&r.output, "output", "o", outputTable, "output format: table or json")

	root.AddCommand(
		r.tagsCmd(),
		r.wordsCmd(),
		r.addWordCmd(),
		r.categoriesCmd(),
		r.quizzesCmd(),
	)

	return root
}

// with opens the services for one command and closes them afterwards.
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, svc *Services) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, closeFn, err := r.open(ctx, r.profile)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, svc)
}
