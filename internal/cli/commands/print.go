package commands

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"ReWear/internal/catalog"
	"ReWear/internal/model"
)

// newFlagSet — флаги подкоманды; ошибки разбора превращаются в ErrUsage.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseQuery разбирает флаги поиска по витрине: -category, -size, -condition, -sort и текст запроса.
func parseQuery(name string, args []string) (catalog.Query, error) {
	fs := newFlagSet(name)
	category := fs.String("category", "", "category filter")
	size := fs.String("size", "", "size filter")
	condition := fs.String("condition", "", "condition filter")
	sortKey := fs.String("sort", "", "newest|oldest|points-low|points-high")
	if err := fs.Parse(args); err != nil {
		return catalog.Query{}, ErrUsage
	}
	key, err := catalog.ParseSortKey(*sortKey)
	if err != nil {
		return catalog.Query{}, err
	}
	return catalog.Query{
		Search:    strings.Join(fs.Args(), " "),
		Category:  *category,
		Size:      *size,
		Condition: *condition,
		Sort:      key,
	}, nil
}

func printItems(items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(Out, "Ничего не найдено")
		return
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSIZE\tCONDITION\tPOINTS\tSTATUS")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			it.ID, it.Title, it.Category, it.Size, it.Condition, it.Points, itemStatus(it))
	}
	_ = tw.Flush()
	fmt.Fprintf(Out, "Всего: %d\n", len(items))
}

func itemStatus(it model.Item) string {
	s := string(it.Moderation) + "/" + string(it.Availability)
	if it.FlaggedAs != "" {
		s += " (" + it.FlaggedAs + ")"
	}
	return s
}

func printItem(it *model.Item) {
	fmt.Fprintf(Out, "%s\n", it.Title)
	fmt.Fprintf(Out, "  id:          %s\n", it.ID)
	fmt.Fprintf(Out, "  category:    %s\n", it.Category)
	if it.Type != "" {
		fmt.Fprintf(Out, "  type:        %s\n", it.Type)
	}
	fmt.Fprintf(Out, "  size:        %s\n", it.Size)
	fmt.Fprintf(Out, "  condition:   %s\n", it.Condition)
	fmt.Fprintf(Out, "  points:      %d\n", it.Points)
	fmt.Fprintf(Out, "  status:      %s\n", itemStatus(*it))
	if it.UploaderName != "" {
		fmt.Fprintf(Out, "  uploader:    %s\n", it.UploaderName)
	}
	if len(it.Tags) > 0 {
		fmt.Fprintf(Out, "  tags:        %s\n", strings.Join(it.Tags, ", "))
	}
	for _, img := range it.Images {
		fmt.Fprintf(Out, "  image:       %s\n", img)
	}
	if it.ModerationNotes != "" {
		fmt.Fprintf(Out, "  notes:       %s\n", it.ModerationNotes)
	}
	if it.Description != "" {
		fmt.Fprintf(Out, "\n%s\n", it.Description)
	}
}

func printSwaps(title string, swaps []model.SwapRecord) {
	fmt.Fprintf(Out, "%s (%d)\n", title, len(swaps))
	if len(swaps) == 0 {
		return
	}
	tw := tabwriter.NewWriter(Out, 0, 4, 2, ' ', 0)
	for _, s := range swaps {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", s.ID, s.Type, s.Status, s.ItemTitle, s.RequesterName)
	}
	_ = tw.Flush()
}
