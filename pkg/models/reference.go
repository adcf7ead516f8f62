package models

// Connection is an external messaging connection a trigger can send through.
// Read-only reference data; managed outside this service.
type Connection struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Category is a contact segment a trigger can target. Read-only reference
// data populated by the contact import pipeline.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactCount int    `json:"contact_count"`
}
