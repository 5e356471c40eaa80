package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/tui"
)

var (
	evidenceSel    tui.Selection
	evidenceCohort string
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Print the profile and citations for one campus selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("client"); err != nil {
			return err
		}
		sel := evidenceSel
		sel.Cohort = model.Cohort(evidenceCohort)
		return runEvidence(cmd.Context(), newAPIClient(cfg.Client), sel, time.Now(), cmd.OutOrStdout())
	},
}

func runEvidence(ctx context.Context, b tui.Backend, sel tui.Selection, now time.Time, out io.Writer) error {
	if sel.Key() == "" {
		return eris.New("evidence: --campus, a valid --cohort and --focus are required")
	}
	ev, err := tui.LoadEvidence(ctx, b, sel)
	_, werr := fmt.Fprintln(out, tui.RenderDrawer(sel, ev, false, err, now))
	if err != nil {
		return eris.Wrap(err, "evidence: load")
	}
	return werr
}

func init() {
	f := evidenceCmd.Flags()
	f.StringVar(&evidenceSel.Campus, "campus", "", "campus name")
	f.StringVar(&evidenceCohort, "cohort", string(model.CohortTransfer), "transfer or freshman")
	f.StringVar(&evidenceSel.Focus, "focus", "", "major (transfer) or discipline (freshman)")
	f.IntSliceVar(&evidenceSel.Years, "years", nil, "years to include")
	rootCmd.AddCommand(evidenceCmd)
}
