// Package service implements vehicle inventory search.
package service

import (
	"fmt"
	"sort"
	"time"

	"carbot_backend/internal/catalog/repository"
	"carbot_backend/platform/apperr"
	"carbot_backend/platform/logger"
	"carbot_backend/platform/textnorm"

	"github.com/agnivade/levenshtein"
)

const (
	// maxResults caps how many vehicles a single search returns.
	maxResults = 5
	// fuzzyThreshold is the minimum normalized similarity for a misspelled
	// make or model to be corrected to a known catalog term.
	fuzzyThreshold = 0.7
	// minYear is the lowest model year accepted as a filter.
	minYear = 1900
)

// SearchParams are the caller-supplied inventory filters. Zero values mean
// the filter is absent.
type SearchParams struct {
	Make          string
	Model         string
	Year          int
	PriceMax      float64
	KilometersMax int
}

// SearchResult is the outcome of an inventory search. An empty Vehicles slice
// is a successful search with no matches.
type SearchResult struct {
	Vehicles       []repository.Vehicle `json:"vehicles"`
	FuzzyMatched   bool                 `json:"fuzzyMatched"`
	CorrectedMake  string               `json:"correctedMake,omitempty"`
	CorrectedModel string               `json:"correctedModel,omitempty"`
}

// Service exposes catalog queries over the immutable index.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Search filters the inventory by the given params. Text filters match on
// folded make/model; when the exact pass finds nothing, misspelled terms are
// corrected against the known makes and models and the search re-runs.
// Numeric filters are never fuzzy. Results are ordered by price, then
// kilometers, then stock ID, and capped at 5.
func (s *Service) Search(params SearchParams) (SearchResult, error) {
	if err := validateParams(params); err != nil {
		return SearchResult{}, err
	}

	makeKey := textnorm.Fold(params.Make)
	modelKey := textnorm.Fold(params.Model)

	vehicles := s.filter(makeKey, modelKey, params)
	result := SearchResult{Vehicles: vehicles}

	if len(vehicles) == 0 && (makeKey != "" || modelKey != "") {
		correctedMakeKey, correctedModelKey, corrected := s.correctTerms(makeKey, modelKey)
		if corrected {
			result.Vehicles = s.filter(correctedMakeKey, correctedModelKey, params)
			if len(result.Vehicles) > 0 {
				result.FuzzyMatched = true
				if correctedMakeKey != makeKey {
					result.CorrectedMake, _ = s.repo.DisplayMake(correctedMakeKey)
				}
				if correctedModelKey != modelKey {
					result.CorrectedModel, _ = s.repo.DisplayModel(correctedModelKey)
				}
			}
		}
	}

	sortVehicles(result.Vehicles)
	if len(result.Vehicles) > maxResults {
		result.Vehicles = result.Vehicles[:maxResults]
	}

	return result, nil
}

// GetByStockID returns a single vehicle or a not-found error.
func (s *Service) GetByStockID(stockID int) (repository.Vehicle, error) {
	vehicle, ok := s.repo.GetByStockID(stockID)
	if !ok {
		return repository.Vehicle{}, apperr.NotFound(fmt.Sprintf("no vehicle with stock ID %d", stockID)).WithOp("catalog.GetByStockID")
	}
	return vehicle, nil
}

// ListMakes returns the distinct makes in the inventory.
func (s *Service) ListMakes() []string {
	return s.repo.Makes()
}

// ListModels returns the distinct models, optionally narrowed to one make.
func (s *Service) ListModels(make string) []string {
	return s.repo.Models(textnorm.Fold(make))
}

func validateParams(params SearchParams) error {
	if params.Year != 0 && (params.Year < minYear || params.Year > time.Now().Year()+1) {
		return apperr.Validation(fmt.Sprintf("year must be between %d and %d", minYear, time.Now().Year()+1))
	}
	if params.PriceMax < 0 {
		return apperr.Validation("maximum price cannot be negative")
	}
	if params.KilometersMax < 0 {
		return apperr.Validation("maximum kilometers cannot be negative")
	}
	return nil
}

func (s *Service) filter(makeKey, modelKey string, params SearchParams) []repository.Vehicle {
	var matches []repository.Vehicle
	for _, entry := range s.repo.Entries() {
		if makeKey != "" && entry.MakeKey != makeKey {
			continue
		}
		if modelKey != "" && entry.ModelKey != modelKey {
			continue
		}
		if params.Year != 0 && entry.Year != params.Year {
			continue
		}
		if params.PriceMax > 0 && entry.PriceMXN > params.PriceMax {
			continue
		}
		if params.KilometersMax > 0 && entry.Kilometers > params.KilometersMax {
			continue
		}
		matches = append(matches, entry.Vehicle)
	}
	return matches
}

// correctTerms tries to map unknown make/model keys onto the closest known
// catalog terms. Terms already present in the catalog are kept as-is.
func (s *Service) correctTerms(makeKey, modelKey string) (string, string, bool) {
	corrected := false

	if makeKey != "" {
		if _, known := s.repo.DisplayMake(makeKey); !known {
			candidates := make([]string, 0)
			for _, display := range s.repo.Makes() {
				candidates = append(candidates, textnorm.Fold(display))
			}
			if best, ok := closestTerm(makeKey, candidates); ok {
				makeKey = best
				corrected = true
			}
		}
	}

	if modelKey != "" {
		if _, known := s.repo.DisplayModel(modelKey); !known {
			candidates := make([]string, 0)
			for _, display := range s.repo.Models("") {
				candidates = append(candidates, textnorm.Fold(display))
			}
			if best, ok := closestTerm(modelKey, candidates); ok {
				modelKey = best
				corrected = true
			}
		}
	}

	return makeKey, modelKey, corrected
}

// closestTerm returns the candidate with the highest normalized similarity to
// the term, provided it clears the fuzzy threshold. Ties resolve to the
// lexicographically smallest candidate so corrections are deterministic.
func closestTerm(term string, candidates []string) (string, bool) {
	sort.Strings(candidates)

	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		score := similarity(term, candidate)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if bestScore < fuzzyThreshold {
		return "", false
	}
	return best, true
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

func sortVehicles(vehicles []repository.Vehicle) {
	sort.Slice(vehicles, func(i, j int) bool {
		if vehicles[i].PriceMXN != vehicles[j].PriceMXN {
			return vehicles[i].PriceMXN < vehicles[j].PriceMXN
		}
		if vehicles[i].Kilometers != vehicles[j].Kilometers {
			return vehicles[i].Kilometers < vehicles[j].Kilometers
		}
		return vehicles[i].StockID < vehicles[j].StockID
	})
}
