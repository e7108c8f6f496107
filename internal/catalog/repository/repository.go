package repository

import (
	"fmt"
	"sort"

	"carbot_backend/platform/textnorm"
)

// Index is the in-memory catalog built once at startup from a Source.
type Index struct {
	entries   []Entry
	byStockID map[int]Vehicle
	makes     map[string]string              // make key -> display form
	models    map[string]string              // model key -> display form
	makeModel map[string]map[string]struct{} // make key -> set of model keys
}

// New loads the inventory from the source and builds the index.
func New(source Source) (*Index, error) {
	vehicles, err := source.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("catalog source returned no vehicles")
	}

	idx := &Index{
		entries:   make([]Entry, 0, len(vehicles)),
		byStockID: make(map[int]Vehicle, len(vehicles)),
		makes:     make(map[string]string),
		models:    make(map[string]string),
		makeModel: make(map[string]map[string]struct{}),
	}

	for _, v := range vehicles {
		makeKey := textnorm.Fold(v.Make)
		modelKey := textnorm.Fold(v.Model)

		idx.entries = append(idx.entries, Entry{Vehicle: v, MakeKey: makeKey, ModelKey: modelKey})
		idx.byStockID[v.StockID] = v
		idx.makes[makeKey] = v.Make
		idx.models[modelKey] = v.Model

		if idx.makeModel[makeKey] == nil {
			idx.makeModel[makeKey] = make(map[string]struct{})
		}
		idx.makeModel[makeKey][modelKey] = struct{}{}
	}

	return idx, nil
}

// Entries returns all indexed vehicles.
func (i *Index) Entries() []Entry {
	return i.entries
}

// GetByStockID returns the vehicle with the given stock ID.
func (i *Index) GetByStockID(stockID int) (Vehicle, bool) {
	v, ok := i.byStockID[stockID]
	return v, ok
}

// Makes returns the distinct makes in display form, sorted.
func (i *Index) Makes() []string {
	makes := make([]string, 0, len(i.makes))
	for _, display := range i.makes {
		makes = append(makes, display)
	}
	sort.Strings(makes)
	return makes
}

// Models returns the distinct models for a make key, or all models when the
// key is empty, in display form, sorted.
func (i *Index) Models(makeKey string) []string {
	var keys map[string]struct{}
	if makeKey == "" {
		keys = make(map[string]struct{}, len(i.models))
		for k := range i.models {
			keys[k] = struct{}{}
		}
	} else {
		keys = i.makeModel[makeKey]
	}

	models := make([]string, 0, len(keys))
	for k := range keys {
		models = append(models, i.models[k])
	}
	sort.Strings(models)
	return models
}

// DisplayMake resolves a folded make key back to its display form.
func (i *Index) DisplayMake(makeKey string) (string, bool) {
	display, ok := i.makes[makeKey]
	return display, ok
}

// DisplayModel resolves a folded model key back to its display form.
func (i *Index) DisplayModel(modelKey string) (string, bool) {
	display, ok := i.models[modelKey]
	return display, ok
}

// Count returns the number of vehicles in the index.
func (i *Index) Count() int {
	return len(i.entries)
}
