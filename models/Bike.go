package models

// Bike is a rentable bike shown on the map. Available is the only field that
// changes after the fleet is loaded, and only the reservation ledger flips it.
type Bike struct {
	ID        string  `json:"id" yaml:"id" gorm:"primaryKey;type:varchar(64)"`
	Model     string  `json:"model" yaml:"model"`
	Type      string  `json:"type" yaml:"type" gorm:"index"` // urbana, mountain, speed, eletrica
	WheelSize string  `json:"wheelSize" yaml:"wheel_size"`
	Lat       float64 `json:"lat" yaml:"lat"`
	Lng       float64 `json:"lng" yaml:"lng"`
	Available bool    `json:"available" yaml:"available"`
	Battery   int     `json:"battery" yaml:"battery"`
	Image     string  `json:"image" yaml:"image"`
}
