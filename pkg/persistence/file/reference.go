package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zapflow/zapflow/pkg/models"
)

// ReferenceRepository reads connections.json and categories.json from the
// persistence root. The files are provisioned by the messaging and contact
// import services; missing files mean empty pickers, not an error.
type ReferenceRepository struct {
	root string
}

// NewReferenceRepository creates a new reference data repository.
func NewReferenceRepository(root string) *ReferenceRepository {
	return &ReferenceRepository{root: root}
}

// Connections returns the available messaging connections.
func (rr *ReferenceRepository) Connections(_ context.Context) ([]*models.Connection, error) {
	var connections []*models.Connection
	if err := rr.load("connections.json", &connections); err != nil {
		return nil, err
	}

	if connections == nil {
		connections = []*models.Connection{}
	}

	return connections, nil
}

// Categories returns the available contact categories.
func (rr *ReferenceRepository) Categories(_ context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := rr.load("categories.json", &categories); err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []*models.Category{}
	}

	return categories, nil
}

func (rr *ReferenceRepository) load(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(rr.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	return json.Unmarshal(data, out)
}
