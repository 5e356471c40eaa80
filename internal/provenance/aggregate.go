// Package provenance groups metric citations into per-dataset bundles.
package provenance

import "github.com/sells-group/scholarpath/internal/model"

// MaxRows is the number of metric rows read before grouping. Datasets
// with more linked metrics than this are truncated.
const MaxRows = 25

// TermUnknown is reported for datasets without a term.
const TermUnknown = "N/A"

// Aggregate groups rows by dataset id, in the order datasets are first
// seen. Rows with no dataset are skipped. Each bundle takes its campus
// from the first row of its dataset, and citations are appended in row
// order without deduplication across rows.
func Aggregate(rows []model.ProvenanceRow) []model.ProvenanceBundle {
	bundles := make([]model.ProvenanceBundle, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		ds := row.Dataset
		if ds == nil {
			continue
		}

		i, ok := index[ds.ID]
		if !ok {
			term := TermUnknown
			if ds.Term != nil {
				term = *ds.Term
			}
			bundles = append(bundles, model.ProvenanceBundle{
				Dataset: model.BundleDataset{
					ID:     ds.ID,
					Title:  ds.Title,
					Year:   ds.Year,
					Term:   term,
					Cohort: ds.Cohort,
					Notes:  ds.Notes,
				},
				Campus:    row.Campus,
				Citations: []model.Citation{},
			})
			i = len(bundles) - 1
			index[ds.ID] = i
		}

		bundles[i].Citations = append(bundles[i].Citations, row.Citations...)
	}

	return bundles
}
