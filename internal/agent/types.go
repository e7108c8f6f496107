// Package agent implements the conversation decision engine: classifying
// user text into actions, dispatching them against the catalog and financing
// services, and orchestrating whole conversation turns.
package agent

import (
	"carbot_backend/internal/catalog/repository"
	"carbot_backend/internal/financing"
)

// Action is the classified intent of one user message.
type Action string

const (
	ActionSearchCars          Action = "search_cars"
	ActionGetCarDetails       Action = "get_car_details"
	ActionGetFinancingOptions Action = "get_financing_options"
	ActionGetCompanyInfo      Action = "get_kavak_info"
	ActionRespond             Action = "respond"
	ActionClarify             Action = "clarify"
	ActionOutOfScope          Action = "out_of_scope"
)

// Decision is the classifier's flattened output: one action tag plus the
// fields extracted for it. Unset numeric fields are zero.
type Decision struct {
	Action             Action   `json:"action"`
	Make               string   `json:"make,omitempty"`
	Model              string   `json:"model,omitempty"`
	Year               int      `json:"year,omitempty"`
	PriceMax           float64  `json:"price_max,omitempty"`
	KilometersMax      int      `json:"km_max,omitempty"`
	StockID            int      `json:"stock_id,omitempty"`
	DownPaymentPercent *float64 `json:"down_payment,omitempty"`
	AnnualRatePercent  *float64 `json:"annual_rate,omitempty"`
	TermMonths         int      `json:"duration,omitempty"`
	InfoQuery          string   `json:"info_query,omitempty"`
	Message            string   `json:"message,omitempty"`
	MissingFields      []string `json:"missing_information,omitempty"`
	Reason             string   `json:"reason,omitempty"`
}

// VehicleSummary is the agent-facing view of a catalog vehicle.
type VehicleSummary struct {
	StockID    int     `json:"stockId"`
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Year       int     `json:"year"`
	Kilometers int     `json:"kilometers"`
	PriceMXN   float64 `json:"price"`
	Version    string  `json:"version,omitempty"`
	Bluetooth  bool    `json:"bluetooth"`
	CarPlay    bool    `json:"carPlay"`
}

func summarize(v repository.Vehicle) VehicleSummary {
	return VehicleSummary{
		StockID:    v.StockID,
		Make:       v.Make,
		Model:      v.Model,
		Year:       v.Year,
		Kilometers: v.Kilometers,
		PriceMXN:   v.PriceMXN,
		Version:    v.Version,
		Bluetooth:  v.Bluetooth,
		CarPlay:    v.CarPlay,
	}
}

func summarizeAll(vehicles []repository.Vehicle) []VehicleSummary {
	if len(vehicles) == 0 {
		return nil
	}
	summaries := make([]VehicleSummary, 0, len(vehicles))
	for _, v := range vehicles {
		summaries = append(summaries, summarize(v))
	}
	return summaries
}

// FinancingInfo carries the financing outcome of a turn: the vehicle price
// quoted and one quote per offered term.
type FinancingInfo struct {
	VehiclePrice float64           `json:"vehiclePrice"`
	StockID      int               `json:"stockId"`
	Options      []financing.Quote `json:"options"`
}

// ActionResult is the normalized outcome of dispatching one Decision.
// Every failure path still produces a well-formed result: Success=false plus
// a Reason, never a panic or an escaped error.
type ActionResult struct {
	Success       bool             `json:"success"`
	Action        Action           `json:"action"`
	Message       string           `json:"message"`
	Vehicles      []VehicleSummary `json:"vehicles,omitempty"`
	Financing     *FinancingInfo   `json:"financing,omitempty"`
	FuzzyMatched  bool             `json:"fuzzyMatched,omitempty"`
	Clarify       bool             `json:"clarify,omitempty"`
	MissingFields []string         `json:"missingFields,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

// Reply is the orchestrator's terminal response for one turn.
type Reply struct {
	SessionID string           `json:"sessionId"`
	Message   string           `json:"message"`
	Success   bool             `json:"success"`
	Action    Action           `json:"action,omitempty"`
	Vehicles  []VehicleSummary `json:"vehicles,omitempty"`
	Financing *FinancingInfo   `json:"financing,omitempty"`
}
