package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"route-collection-service/internal/domain"
	"route-collection-service/internal/ports"
)

// SeedFromJSON loads route data from a JSON file and stores it as a named
// snapshot, so a fresh install has something to import.
func SeedFromJSON(ctx context.Context, repo ports.SnapshotRepository, jsonPath, snapshotName string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed snapshot: read %q: %w", jsonPath, err)
	}

	var routes []*domain.Route
	if err := json.Unmarshal(bytes, &routes); err != nil {
		return fmt.Errorf("seed snapshot: parse json: %w", err)
	}

	for i, r := range routes {
		r.Name = strings.TrimSpace(r.Name)
		for j, s := range r.Segments {
			if len(s.Latlngs) == 1 {
				return fmt.Errorf("seed snapshot: route %d segment %d: single-point segment", i+1, j+1)
			}
		}
	}

	if err := repo.Save(ctx, snapshotName, routes); err != nil {
		return fmt.Errorf("seed snapshot: %w", err)
	}
	return nil
}
