package models

// Coordinate places a NOC on a map.
type Coordinate struct {
	NOC       string  `json:"noc"`
	Country   string  `json:"country"`
	Capital   string  `json:"capital,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
