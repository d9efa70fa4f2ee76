package models

// Department is a catalog department, identified externally by its unique code.
type Department struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}
