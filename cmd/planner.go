package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/scholarpath/internal/tui"
)

var plannerCmd = &cobra.Command{
	Use:   "planner",
	Short: "Open the interactive admissions planner",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("client"); err != nil {
			return err
		}
		defer quietLogs()()
		return tui.Run(cmd.Context(), newAPIClient(cfg.Client), tui.PagePlanner)
	},
}

func init() {
	rootCmd.AddCommand(plannerCmd)
}
