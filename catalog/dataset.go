/*
dataset.go - JSON datasets and seeding

PURPOSE:
  Datasets bundle colleges, salaries and state tax rates into one JSON file
  so the lookup data can be replaced without code changes. Two datasets ship
  embedded in the binary.

AVAILABLE DATASETS:
  default:  twenty universities, fifteen majors, all state tax rates
  minimal:  two colleges, two majors (demos and tests)

JSON SCHEMA:
  {
    "name": "default",
    "description": "...",
    "colleges":    [{"name": "...", "state": "TX", "private": false,
                     "in_state_tuition": 11678, "out_of_state_tuition": 41070}],
    "salaries":    [{"major": "Computer Science", "state": "TX",
                     "data_year": 2024, "average_starting_salary": 80000}],
    "state_taxes": [{"state": "TX", "name": "Texas", "rate": 0}]
  }

SEE ALSO:
  - api/datasets.go: load endpoints
  - cmd/server/main.go: seeds the default dataset on an empty store
*/
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

//go:embed data/*.json
var embedded embed.FS

// DefaultDataset is the dataset seeded on first start.
const DefaultDataset = "default"

// ErrUnknownDataset is returned for a dataset name that is not embedded.
var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset is a complete set of lookup records.
type Dataset struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Colleges    []College  `json:"colleges"`
	Salaries    []Salary   `json:"salaries"`
	StateTaxes  []StateTax `json:"state_taxes"`
}

// DatasetInfo describes an embedded dataset without its records.
type DatasetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Colleges    int    `json:"colleges"`
	Salaries    int    `json:"salaries"`
	StateTaxes  int    `json:"state_taxes"`
}

// Info summarises the dataset.
func (d Dataset) Info() DatasetInfo {
	return DatasetInfo{
		Name:        d.Name,
		Description: d.Description,
		Colleges:    len(d.Colleges),
		Salaries:    len(d.Salaries),
		StateTaxes:  len(d.StateTaxes),
	}
}

// LoadDataset decodes and validates a dataset.
func LoadDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks every record.
func (d Dataset) Validate() error {
	for _, c := range d.Colleges {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, s := range d.Salaries {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, t := range d.StateTaxes {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Embedded returns the named embedded dataset.
func Embedded(name string) (Dataset, error) {
	f, err := embedded.Open("data/" + name + ".json")
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	defer f.Close()
	return LoadDataset(f)
}

// EmbeddedDatasets lists the embedded datasets, sorted by name.
func EmbeddedDatasets() ([]DatasetInfo, error) {
	entries, err := embedded.ReadDir("data")
	if err != nil {
		return nil, err
	}

	infos := make([]DatasetInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		ds, err := Embedded(name[:len(name)-len(".json")])
		if err != nil {
			return nil, err
		}
		infos = append(infos, ds.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Seed writes every record of ds to w.
func Seed(ctx context.Context, w Writer, ds Dataset) error {
	for _, c := range ds.Colleges {
		if err := w.SaveCollege(ctx, c); err != nil {
			return fmt.Errorf("seed college %q: %w", c.Name, err)
		}
	}
	for _, s := range ds.Salaries {
		if err := w.SaveSalary(ctx, s); err != nil {
			return fmt.Errorf("seed salary %q/%q: %w", s.Major, s.State, err)
		}
	}
	for _, t := range ds.StateTaxes {
		if err := w.SaveStateTax(ctx, t); err != nil {
			return fmt.Errorf("seed state tax %q: %w", t.State, err)
		}
	}
	return nil
}
