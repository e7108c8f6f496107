package service

import (
	"reflect"
	"testing"

	"carbot_backend/internal/catalog/repository"
	"carbot_backend/platform/apperr"
	"carbot_backend/platform/logger"
)

type stubSource struct {
	vehicles []repository.Vehicle
}

func (s *stubSource) Load() ([]repository.Vehicle, error) {
	return s.vehicles, nil
}

func testVehicles() []repository.Vehicle {
	return []repository.Vehicle{
		{StockID: 101, Make: "Toyota", Model: "Corolla", Year: 2020, Kilometers: 45000, PriceMXN: 350000, Bluetooth: true, CarPlay: true},
		{StockID: 102, Make: "Toyota", Model: "Corolla", Year: 2019, Kilometers: 60000, PriceMXN: 310000, Bluetooth: true},
		{StockID: 103, Make: "Toyota", Model: "Yaris", Year: 2021, Kilometers: 20000, PriceMXN: 280000},
		{StockID: 104, Make: "Nissan", Model: "Versa", Year: 2020, Kilometers: 35000, PriceMXN: 255000},
		{StockID: 105, Make: "Nissan", Model: "Sentra", Year: 2021, Kilometers: 15000, PriceMXN: 390000},
		{StockID: 106, Make: "Volkswagen", Model: "Jetta", Year: 2018, Kilometers: 80000, PriceMXN: 265000},
		{StockID: 107, Make: "Volkswagen", Model: "Jetta", Year: 2020, Kilometers: 42000, PriceMXN: 320000},
		{StockID: 108, Make: "Nissan", Model: "Versa", Year: 2019, Kilometers: 50000, PriceMXN: 230000},
		{StockID: 109, Make: "Nissan", Model: "Versa", Year: 2021, Kilometers: 12000, PriceMXN: 295000},
		{StockID: 110, Make: "Nissan", Model: "Versa", Year: 2018, Kilometers: 95000, PriceMXN: 198000},
		{StockID: 111, Make: "Nissan", Model: "Versa", Year: 2017, Kilometers: 110000, PriceMXN: 180000},
		{StockID: 112, Make: "Nissan", Model: "Versa", Year: 2022, Kilometers: 8000, PriceMXN: 330000},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	idx, err := repository.New(&stubSource{vehicles: testVehicles()})
	if err != nil {
		t.Fatalf("building index: %v", err)
	}
	return New(idx, logger.New("development"))
}

func stockIDs(vehicles []repository.Vehicle) []int {
	ids := make([]int, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.StockID)
	}
	return ids
}

func TestSearchExactMatchOrdering(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(SearchParams{Make: "Toyota"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.FuzzyMatched {
		t.Error("exact match should not set FuzzyMatched")
	}

	// Price ascending: Yaris 280000, Corolla 310000, Corolla 350000.
	want := []int{103, 102, 101}
	if got := stockIDs(result.Vehicles); !reflect.DeepEqual(got, want) {
		t.Errorf("stock IDs = %v, want %v", got, want)
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	svc := newTestService(t)
	params := SearchParams{Make: "Nissan", PriceMax: 300000}

	first, err := svc.Search(params)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := svc.Search(params)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same params produced different results:\n%+v\n%+v", first, second)
	}
}

func TestSearchFuzzyCorrectsMisspellings(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(SearchParams{Make: "toyta", Model: "corola"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !result.FuzzyMatched {
		t.Fatal("expected FuzzyMatched for misspelled terms")
	}
	if result.CorrectedMake != "Toyota" {
		t.Errorf("CorrectedMake = %q, want Toyota", result.CorrectedMake)
	}
	if result.CorrectedModel != "Corolla" {
		t.Errorf("CorrectedModel = %q, want Corolla", result.CorrectedModel)
	}
	if got := stockIDs(result.Vehicles); !reflect.DeepEqual(got, []int{102, 101}) {
		t.Errorf("stock IDs = %v, want [102 101]", got)
	}
}

func TestSearchFuzzyNeverAppliesToNumbers(t *testing.T) {
	svc := newTestService(t)

	// Year 2023 has no inventory. The search must not bend the year filter.
	result, err := svc.Search(SearchParams{Make: "Toyota", Year: 2023})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Vehicles) != 0 {
		t.Errorf("expected no results for year 2023, got %v", stockIDs(result.Vehicles))
	}
	if result.FuzzyMatched {
		t.Error("numeric-only miss must not set FuzzyMatched")
	}
}

func TestSearchEmptyResultIsSuccess(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(SearchParams{Make: "Ferrari"})
	if err != nil {
		t.Fatalf("Search returned error for empty result: %v", err)
	}
	if len(result.Vehicles) != 0 {
		t.Errorf("expected empty result, got %v", stockIDs(result.Vehicles))
	}
}

func TestSearchCapsResults(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(SearchParams{Make: "Nissan"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Vehicles) != maxResults {
		t.Errorf("result count = %d, want %d", len(result.Vehicles), maxResults)
	}
	// The cheapest five Nissan vehicles survive the cap.
	want := []int{111, 110, 108, 104, 109}
	if got := stockIDs(result.Vehicles); !reflect.DeepEqual(got, want) {
		t.Errorf("stock IDs = %v, want %v", got, want)
	}
}

func TestSearchRejectsInvalidParams(t *testing.T) {
	svc := newTestService(t)

	cases := []SearchParams{
		{Year: 1800},
		{PriceMax: -1},
		{KilometersMax: -5},
	}
	for _, params := range cases {
		if _, err := svc.Search(params); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("Search(%+v) error = %v, want validation error", params, err)
		}
	}
}

func TestGetByStockID(t *testing.T) {
	svc := newTestService(t)

	vehicle, err := svc.GetByStockID(101)
	if err != nil {
		t.Fatalf("GetByStockID: %v", err)
	}
	if vehicle.Model != "Corolla" || vehicle.Year != 2020 {
		t.Errorf("unexpected vehicle: %+v", vehicle)
	}

	if _, err := svc.GetByStockID(999); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing stock ID error = %v, want not found", err)
	}
}

func TestListMakesAndModels(t *testing.T) {
	svc := newTestService(t)

	makes := svc.ListMakes()
	if !reflect.DeepEqual(makes, []string{"Nissan", "Toyota", "Volkswagen"}) {
		t.Errorf("ListMakes() = %v", makes)
	}

	models := svc.ListModels("Toyota")
	if !reflect.DeepEqual(models, []string{"Corolla", "Yaris"}) {
		t.Errorf(`ListModels("Toyota") = %v`, models)
	}
}
