package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/scholarpath/internal/tui"
)

var (
	searchQuery string
	searchType  string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search source schools (interactive unless --query is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("client"); err != nil {
			return err
		}
		client := newAPIClient(cfg.Client)

		if searchQuery == "" {
			defer quietLogs()()
			return tui.Run(cmd.Context(), client, tui.PageSearch)
		}
		return runSearch(cmd.Context(), client, searchQuery, searchType, cmd.OutOrStdout())
	},
}

func runSearch(ctx context.Context, b tui.Backend, q, schoolType string, out io.Writer) error {
	schools, err := b.SearchSourceSchools(ctx, q, schoolType)
	if err != nil {
		return eris.Wrap(err, "search: source schools")
	}
	if len(schools) == 0 {
		_, err := fmt.Fprintln(out, "No matching schools")
		return err
	}
	for _, s := range schools {
		if _, err := fmt.Fprintln(out, tui.RenderSchool(s)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "name substring to search for")
	searchCmd.Flags().StringVar(&searchType, "type", "", "school type filter (HighSchool, CommunityCollege or Other)")
	rootCmd.AddCommand(searchCmd)
}
