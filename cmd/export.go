package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scholarpath/internal/export"
	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/pkg/scholarapi"
)

var (
	exportFormat string
	exportOut    string
	exportParams scholarapi.MetricParams
	exportYears  []int
	exportYear   int
	exportMin    int
	exportMax    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered metrics from the API to CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("client"); err != nil {
			return err
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		params := exportParams
		params.Years = exportYears
		if cmd.Flags().Changed("year") {
			params.Year = &exportYear
		}
		if cmd.Flags().Changed("year-min") {
			params.YearMin = &exportMin
		}
		if cmd.Flags().Changed("year-max") {
			params.YearMax = &exportMax
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", exportOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		n, err := runExport(ctx, newAPIClient(cfg.Client), params, format, out)
		if err != nil {
			return err
		}
		zap.L().Info("export complete",
			zap.Int("rows", n),
			zap.String("format", string(format)),
			zap.String("output", exportOut),
		)
		return nil
	},
}

// runExport pages through every metric matching params and writes them
// to out. It returns the number of rows written.
func runExport(ctx context.Context, client scholarapi.Client, params scholarapi.MetricParams, format export.Format, out io.Writer) (int, error) {
	w, err := export.New(format, out)
	if err != nil {
		return 0, err
	}

	n := 0
	if err := client.ListAllMetrics(ctx, params, func(m model.Metric) error {
		n++
		return w.Write(m)
	}); err != nil {
		return n, eris.Wrap(err, "export: list metrics")
	}

	if err := w.Close(); err != nil {
		return n, err
	}
	return n, nil
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	f.StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	f.StringVar(&exportParams.Campus, "campus", "", "filter by campus name")
	f.StringVar(&exportParams.Major, "major", "", "filter by major")
	f.StringVar(&exportParams.Discipline, "discipline", "", "filter by discipline")
	f.StringVar(&exportParams.Cohort, "cohort", "", "filter by cohort (transfer or freshman)")
	f.StringVar(&exportParams.StatName, "stat-name", "", "filter by stat name")
	f.StringVar(&exportParams.SourceSchool, "source-school", "", "filter by source school name")
	f.StringVar(&exportParams.SchoolType, "school-type", "", "filter by source school type")
	f.IntVar(&exportYear, "year", 0, "filter by exact year")
	f.IntVar(&exportMin, "year-min", 0, "minimum year (inclusive)")
	f.IntVar(&exportMax, "year-max", 0, "maximum year (inclusive)")
	f.IntSliceVar(&exportYears, "years", nil, "filter by any of these years")
	f.IntVar(&exportParams.Limit, "page-size", 50, "rows per API page")
	rootCmd.AddCommand(exportCmd)
}
