package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVSource loads the inventory from a CSV file with a header row. Expected
// columns: stock_id, make, model, year, km, price, version, bluetooth,
// car_play. Boolean columns use the Spanish "sí"/"no" convention.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSV-backed catalog source.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads and parses the catalog file.
func (s *CSVSource) Load() ([]Vehicle, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file %s: %w", s.Path, err)
	}
	defer file.Close()

	return parseCSV(file)
}

func parseCSV(r io.Reader) ([]Vehicle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"stock_id", "make", "model", "year", "km", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("catalog header missing column %q", required)
		}
	}

	var vehicles []Vehicle
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		line++

		vehicle, err := parseRow(record, columns)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, nil
}

func parseRow(record []string, columns map[string]int) (Vehicle, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	stockID, err := strconv.Atoi(field("stock_id"))
	if err != nil {
		return Vehicle{}, fmt.Errorf("invalid stock_id %q", field("stock_id"))
	}
	year, err := strconv.Atoi(field("year"))
	if err != nil {
		return Vehicle{}, fmt.Errorf("invalid year %q", field("year"))
	}
	km, err := strconv.Atoi(field("km"))
	if err != nil {
		return Vehicle{}, fmt.Errorf("invalid km %q", field("km"))
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return Vehicle{}, fmt.Errorf("invalid price %q", field("price"))
	}

	return Vehicle{
		StockID:    stockID,
		Make:       field("make"),
		Model:      field("model"),
		Year:       year,
		Kilometers: km,
		PriceMXN:   price,
		Version:    field("version"),
		Bluetooth:  parseSpanishBool(field("bluetooth")),
		CarPlay:    parseSpanishBool(field("car_play")),
	}, nil
}

func parseSpanishBool(value string) bool {
	switch strings.ToLower(value) {
	case "sí", "si", "yes", "true", "1":
		return true
	default:
		return false
	}
}
