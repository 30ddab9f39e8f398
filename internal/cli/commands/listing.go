package commands

import (
	"context"
	"fmt"
	"strings"

	"ReWear/internal/catalog"
	"ReWear/internal/cli/service"
	"ReWear/internal/config"
)

type addCmd struct{}

func (addCmd) Name() string        { return "add" }
func (addCmd) Description() string { return "List a new item (upload images first)" }
func (addCmd) Usage() string {
	return "add -title t -category c -size s -condition c -points n -image url [-image url] [-desc d] [-type t] [-tags a,b]"
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func (addCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("add")
	var in service.NewListing
	var images multiFlag
	var tags string
	fs.StringVar(&in.Title, "title", "", "title")
	fs.StringVar(&in.Description, "desc", "", "description")
	fs.StringVar(&in.Category, "category", "", "category")
	fs.StringVar(&in.Type, "type", "", "type")
	fs.StringVar(&in.Size, "size", "", "size")
	fs.StringVar(&in.Condition, "condition", "", "condition")
	fs.Int64Var(&in.Points, "points", 0, "points value")
	fs.Var(&images, "image", "image url (repeatable)")
	fs.StringVar(&tags, "tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	if in.Title == "" || in.Category == "" || in.Size == "" || in.Condition == "" {
		return ErrUsage
	}
	// подсказки по словарю до похода на сервер
	if !catalog.Contains(catalog.Categories, in.Category) {
		return fmt.Errorf("unknown category %q, expected one of: %s", in.Category, strings.Join(catalog.Categories, "; "))
	}
	if !catalog.Contains(catalog.Conditions, in.Condition) {
		return fmt.Errorf("unknown condition %q, expected one of: %s", in.Condition, strings.Join(catalog.Conditions, "; "))
	}
	in.Images = images
	in.Tags = catalog.SplitTags(tags)

	it, err := service.NewClient(cfg).Create(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Listed %s (%s)\n", it.ID, itemStatus(*it))
	return nil
}

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload an item photo, prints its URL" }
func (uploadCmd) Usage() string       { return "upload <file>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	res, err := service.NewClient(cfg).Upload(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Uploaded %d bytes: %s\n", res.Size, res.URL)
	return nil
}

func init() {
	RegisterCmd(addCmd{})
	RegisterCmd(uploadCmd{})
}
