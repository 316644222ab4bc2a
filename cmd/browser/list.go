package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"post_browser/internal/domain"
)

const listBodyTruncateLen = 60

func newListCmd(configPath *string) *cobra.Command {
	var (
		page   int
		sortBy string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := domain.ParseSortKey(sortBy)
			if err != nil {
				return err
			}

			a, err := newApp(*configPath, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.controller.SetSort(key); err != nil {
				return err
			}
			a.controller.SetSearch(search)

			var fetchErr *domain.FetchError
			if err := a.controller.LoadPage(cmd.Context(), page); err != nil && !errors.As(err, &fetchErr) {
				return err
			}

			return renderSnapshot(cmd, a.controller.Snapshot())
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number to fetch")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by field: title or body")
	cmd.Flags().StringVar(&search, "search", "", "keep posts whose title contains this text")
	return cmd
}

func renderSnapshot(cmd *cobra.Command, snap domain.Snapshot) error {
	out := cmd.OutOrStdout()

	switch snap.Empty {
	case domain.EmptyFailed:
		fmt.Fprintln(out, "Failed to load posts")
		return snap.Err
	case domain.EmptyNoPosts, domain.EmptyNoMatches:
		fmt.Fprintln(out, "Posts not found")
	default:
		rows := make([][]string, 0, len(snap.Visible))
		for _, p := range snap.Visible {
			rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Title, shorten(p.Body)})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "TITLE", "BODY").
			Rows(rows...)
		fmt.Fprintln(out, t.String())
	}

	fmt.Fprintf(out, "page %d of %d (%d posts)\n", snap.PageNumber, snap.TotalPages, snap.TotalCount)
	return nil
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= listBodyTruncateLen {
		return s
	}
	return string(r[:listBodyTruncateLen-3]) + "..."
}
