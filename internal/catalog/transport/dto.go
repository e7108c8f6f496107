package transport

import "carbot_backend/internal/catalog/repository"

// SearchVehiclesRequest carries the inventory filters from the query string.
type SearchVehiclesRequest struct {
	Make     string  `form:"make" validate:"omitempty,min=1,max=50"`
	Model    string  `form:"model" validate:"omitempty,min=1,max=50"`
	Year     int     `form:"year" validate:"omitempty,min=1900,max=2100"`
	PriceMax float64 `form:"priceMax" validate:"omitempty,min=0"`
	KmMax    int     `form:"kmMax" validate:"omitempty,min=0"`
}

// SearchVehiclesResponse is the search endpoint payload.
type SearchVehiclesResponse struct {
	Vehicles       []repository.Vehicle `json:"vehicles"`
	Total          int                  `json:"total"`
	FuzzyMatched   bool                 `json:"fuzzyMatched"`
	CorrectedMake  string               `json:"correctedMake,omitempty"`
	CorrectedModel string               `json:"correctedModel,omitempty"`
}

// MakesResponse lists the distinct makes in the inventory.
type MakesResponse struct {
	Makes []string `json:"makes"`
}

// ModelsResponse lists the distinct models, optionally for one make.
type ModelsResponse struct {
	Make   string   `json:"make,omitempty"`
	Models []string `json:"models"`
}
