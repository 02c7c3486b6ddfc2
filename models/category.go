package models

// Category is a reference category that imported rows must name exactly (case-insensitively).
type Category struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// Brand is a known brand the detector can resolve to an id.
type Brand struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}
