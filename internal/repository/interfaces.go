package repository

import (
	"burrowwatch/internal/dto"
	"burrowwatch/internal/model"
)

// SightingRepository defines the interface for archived sighting operations.
type SightingRepository interface {
	// Create operations
	Insert(s *model.Sighting) (int64, error)
	InsertBatch(sightings []model.Sighting) error

	// Read operations
	GetRecent(filter *dto.SightingFilter) ([]model.Sighting, error)
	GetAllLabels() ([]string, error)
	CountByLabel() (map[string]int, error)

	// Delete operations
	DeleteBySession(sessionID string) error
}
