package models

// Location is a named place that can be a departure or arrival point.
type Location struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName"`
	Abbreviation string `json:"abbreviation"`
}
