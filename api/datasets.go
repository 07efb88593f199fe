/*
datasets.go - Dataset loaders for demos and data refreshes

PURPOSE:

	Replaces the whole college/salary/tax dataset in one call, either with
	one of the datasets embedded in the binary or with a dataset posted in
	the request body.

HOW LOADING WORKS:
 1. Validate the dataset (nothing is written if a record is invalid)
 2. Reset the store (clear all data)
 3. Seed every record
 4. Invalidate the lookup cache

USAGE VIA API:

	POST /api/admin/datasets/load
	{"name": "minimal"}

	POST /api/admin/datasets/load
	{"dataset": {"name": "custom", "colleges": [...], "salaries": [...], "state_taxes": [...]}}

NOTE:

	Loading resets the store. Projections built concurrently may see a
	partially seeded dataset.

SEE ALSO:
  - catalog/dataset.go: Dataset format and embedded datasets
  - refresher.go: reloads a dataset file when it changes
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/loan-projection/catalog"
)

// ListDatasets returns the embedded datasets.
// GET /api/admin/datasets
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := catalog.EmbeddedDatasets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list datasets", err)
		return
	}

	writeJSON(w, http.StatusOK, DatasetsDTO{Current: h.CurrentDataset(), Datasets: infos})
}

// LoadDataset replaces the dataset.
// POST /api/admin/datasets/load
func (h *Handler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	var req LoadDatasetRequest
	if !h.decode(w, r, &req) {
		return
	}

	var ds catalog.Dataset
	switch {
	case req.Dataset != nil:
		if err := req.Dataset.Validate(); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		ds = *req.Dataset
	case req.Name != "":
		var err error
		ds, err = catalog.Embedded(req.Name)
		if errors.Is(err, catalog.ErrUnknownDataset) {
			writeError(w, http.StatusBadRequest, "Unknown dataset", err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read dataset", err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Either name or dataset is required", nil)
		return
	}

	if err := h.ReplaceDataset(r.Context(), ds); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load dataset: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, ds.Info())
}

// ReplaceDataset resets the store, seeds ds and invalidates the cache.
func (h *Handler) ReplaceDataset(ctx context.Context, ds catalog.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	// Invalidate even on failure: the store may be half written.
	defer h.Catalog.Invalidate()

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if err := catalog.Seed(ctx, h.Store, ds); err != nil {
		h.setCurrentDataset("")
		return err
	}
	h.setCurrentDataset(ds.Name)

	info := ds.Info()
	h.Logger.Info("dataset loaded",
		zap.String("dataset", ds.Name),
		zap.Int("colleges", info.Colleges),
		zap.Int("salaries", info.Salaries),
		zap.Int("state_taxes", info.StateTaxes),
	)
	return nil
}

// SeedIfEmpty loads ds when the store has no records. It reports whether
// anything was loaded.
func (h *Handler) SeedIfEmpty(ctx context.Context, ds catalog.Dataset) (bool, error) {
	counts, err := h.Store.Count(ctx)
	if err != nil {
		return false, err
	}
	if !counts.IsEmpty() {
		return false, nil
	}
	if err := h.ReplaceDataset(ctx, ds); err != nil {
		return false, err
	}
	return true, nil
}
