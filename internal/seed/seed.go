// Package seed parses catalog files used to populate a store.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/scholarpath/internal/model"
)

//go:embed demo.yaml
var demoYAML []byte

// MaxFileSize bounds catalog files read from disk.
const MaxFileSize = 16 << 20

// Demo returns the built-in demo catalog.
func Demo() (model.Catalog, error) {
	return Parse(demoYAML)
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (model.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Catalog{}, eris.Wrapf(err, "seed: stat %s", path)
	}
	if info.Size() > MaxFileSize {
		return model.Catalog{}, eris.Errorf("seed: %s is %d bytes, limit is %d", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return model.Catalog{}, eris.Wrapf(err, "seed: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog. Unknown fields are rejected, and every
// metric must carry a valid cohort and exactly one stat value.
func Parse(data []byte) (model.Catalog, error) {
	var c model.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return model.Catalog{}, eris.Wrap(err, "seed: parse catalog")
	}

	for i, m := range c.Metrics {
		if !m.Cohort.Valid() {
			return model.Catalog{}, eris.Errorf("seed: metric %d has unknown cohort %q", i, m.Cohort)
		}
		if (m.StatValueNumeric == nil) == (m.StatValueText == nil) {
			return model.Catalog{}, eris.Errorf("seed: metric %d (%s) needs exactly one of stat_value_numeric and stat_value_text", i, m.StatName)
		}
	}
	return c, nil
}
