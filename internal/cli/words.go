package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
	"github.com/jsamuelsen/flashcards/internal/domain"
)

func (r *runner) tagsCmd() *cobra.Command {
	var collected bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags with their words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, svc *Services) error {
				list := svc.Words.ListTags
				if collected {
					list = svc.Words.ListCollectedTags
				}

				tags, err := list(ctx)
				if err != nil {
					return err
				}

				return r.render(cmd, dto.NewTagResponses(tags), func() ([]string, [][]string) {
					rows := make([][]string, 0, len(tags))
					for _, t := range tags {
						rows = append(rows, []string{t.ID, t.Name, strconv.Itoa(len(t.WordItems))})
					}

					return []string{"ID", "TAG", "WORDS"}, rows
				})
			})
		},
	}

	cmd.Flags().BoolVar(&collected, "collected", false, "only tags with collected words")

	return cmd
}

func (r *runner) wordsCmd() *cobra.Command {
	var collected bool

	cmd := &cobra.Command{
		Use:   "words <tagID>",
		Short: "List the words of a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, svc *Services) error {
				words, err := svc.Words.ListWords(ctx, args[0], collected)
				if err != nil {
					return err
				}

				return r.render(cmd, dto.NewWordResponses(words), func() ([]string, [][]string) {
					rows := make([][]string, 0, len(words))
					for _, w := range words {
						rows = append(rows, []string{
							w.ID, w.Item, w.Meaning,
							yesNo(w.IsKnown), yesNo(w.IsCollected),
							strconv.Itoa(len(w.ViewTimes)),
						})
					}

					return []string{"ID", "ITEM", "MEANING", "KNOWN", "COLLECTED", "VIEWS"}, rows
				})
			})
		},
	}

	cmd.Flags().BoolVar(&collected, "collected", false, "only collected words")

	return cmd
}

type addWordFlags struct {
	item, meaning string
	tags, tagIDs  []string
	examples      []string
	images        []string
	known         bool
	collected     bool
}

func (r *runner) addWordCmd() *cobra.Command {
	var f addWordFlags

	cmd := &cobra.Command{
		Use:   "add-word",
		Short: "Create and publish a word item",
		Example: `  flashcards add-word --item cat --meaning "a small feline" \
    --tag Animals --example "The cat sleeps.|Le chat dort." --image cat.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, closeImages, err := f.input()
			if err != nil {
				return err
			}
			defer closeImages()

			return r.with(cmd, func(ctx context.Context, svc *Services) error {
				word, err := svc.Words.CreateWord(ctx, in)
				if err != nil {
					return err
				}

				return r.render(cmd, dto.NewWordResponse(word), func() ([]string, [][]string) {
					status := "published"
					if word.Draft {
						status = "draft"
					}

					return []string{"ID", "ITEM", "IMAGES", "STATUS"},
						[][]string{{word.ID, word.Item, strconv.Itoa(len(word.Images)), status}}
				})
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.item, "item", "", "the word or phrase")
	flags.StringVar(&f.meaning, "meaning", "", "its meaning")
	flags.StringArrayVar(&f.tags, "tag", nil, "new tag name (repeatable)")
	flags.StringArrayVar(&f.tagIDs, "tag-id", nil, "existing tag as id or id=name (repeatable)")
	flags.StringArrayVar(&f.examples, "example", nil, `example as "sentence|meaning" (repeatable)`)
	flags.StringArrayVar(&f.images, "image", nil, "image file to upload (repeatable)")
	flags.BoolVar(&f.known, "known", false, "mark the word as known")
	flags.BoolVar(&f.collected, "collected", false, "add the word to the collection")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("meaning")

	return cmd
}

// input builds the create input and opens the image files. The returned
// func closes them.
func (f *addWordFlags) input() (domain.CreateWordInput, func(), error) {
	in := domain.CreateWordInput{
		Item:        f.item,
		Meaning:     f.meaning,
		IsKnown:     f.known,
		IsCollected: f.collected,
	}

	for _, name := range f.tags {
		in.Tags = append(in.Tags, domain.TagRef{Name: name})
	}
	for _, ref := range f.tagIDs {
		id, name, ok := strings.Cut(ref, "=")
		if !ok {
			name = id
		}
		in.Tags = append(in.Tags, domain.TagRef{Name: name, Existing: true, TagID: id})
	}

	for _, ex := range f.examples {
		sentence, meaning, _ := strings.Cut(ex, "|")
		in.Examples = append(in.Examples, domain.ExampleInput{
			Sentence: strings.TrimSpace(sentence),
			Meaning:  strings.TrimSpace(meaning),
		})
	}

	var opened []*os.File
	closeAll := func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	for _, path := range f.images {
		file, err := os.Open(path)
		if err != nil {
			closeAll()
			return in, nil, fmt.Errorf("opening image: %w", err)
		}
		opened = append(opened, file)

		info, err := file.Stat()
		if err != nil {
			closeAll()
			return in, nil, fmt.Errorf("reading image %s: %w", path, err)
		}

		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		in.Images = append(in.Images, domain.Upload{
			FileName: filepath.Base(path),
			MimeType: mimeType,
			Size:     info.Size(),
			Content:  file,
		})
	}

	return in, closeAll, nil
}
