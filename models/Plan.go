package models

// Plan is a named pricing tier. The set of plans is fixed at build time.
type Plan struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
}
