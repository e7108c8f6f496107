package repository

// Vehicle represents a single car in the sales inventory.
type Vehicle struct {
	StockID    int     `json:"stockId"`
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Year       int     `json:"year"`
	Kilometers int     `json:"kilometers"`
	PriceMXN   float64 `json:"price"`
	Version    string  `json:"version"`
	Bluetooth  bool    `json:"bluetooth"`
	CarPlay    bool    `json:"carPlay"`
}

// Entry is a vehicle with its pre-normalized make and model keys, computed
// once at load time so search never folds catalog text per request.
type Entry struct {
	Vehicle
	MakeKey  string
	ModelKey string
}

// Source loads the raw vehicle inventory from some backing format.
type Source interface {
	Load() ([]Vehicle, error)
}

// Repository is the read-only catalog index. The inventory is immutable after
// startup, so implementations need no locking.
type Repository interface {
	// Entries returns all indexed vehicles.
	Entries() []Entry
	// GetByStockID returns the vehicle with the given stock ID.
	GetByStockID(stockID int) (Vehicle, bool)
	// Makes returns the distinct makes in display form, sorted.
	Makes() []string
	// Models returns the distinct models for a make key (all models when the
	// key is empty), in display form, sorted.
	Models(makeKey string) []string
	// DisplayMake resolves a folded make key back to its display form.
	DisplayMake(makeKey string) (string, bool)
	// DisplayModel resolves a folded model key back to its display form.
	DisplayModel(modelKey string) (string, bool)
	// Count returns the number of vehicles in the index.
	Count() int
}
