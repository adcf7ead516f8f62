package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zapflow/zapflow/pkg/models"
)

// ReferenceRepository serves connection and category picker data.
type ReferenceRepository struct {
	db *sql.DB
}

// NewReferenceRepository creates a new reference data repository.
func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Connections returns the available messaging connections.
func (r *ReferenceRepository) Connections(ctx context.Context) ([]*models.Connection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, status FROM connections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	defer func() { _ = rows.Close() }()

	connections := make([]*models.Connection, 0)

	for rows.Next() {
		var connection models.Connection
		if err := rows.Scan(&connection.ID, &connection.Name, &connection.Status); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}

		connections = append(connections, &connection)
	}

	return connections, rows.Err()
}

// Categories returns the available contact categories.
func (r *ReferenceRepository) Categories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, contact_count FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	defer func() { _ = rows.Close() }()

	categories := make([]*models.Category, 0)

	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.ContactCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		categories = append(categories, &category)
	}

	return categories, rows.Err()
}
