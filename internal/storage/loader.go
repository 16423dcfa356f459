package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

var ErrInvalidZone = errors.New("invalid zone")

// LoadZonesFromFile reads seed zones from a JSON file. The whole file is
// rejected if any zone fails validation.
func LoadZonesFromFile(path string) ([]domain.Zone, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}

	var zones []domain.Zone
	if err := json.Unmarshal(b, &zones); err != nil {
		return nil, fmt.Errorf("unmarshal zones: %w", err)
	}
	for i, z := range zones {
		if err := ValidateZone(z); err != nil {
			return nil, fmt.Errorf("zone %d (%s): %w", i, z.ID, err)
		}
	}
	return zones, nil
}

// ValidateZone checks that a snapshot can feed a projection.
func ValidateZone(z domain.Zone) error {
	switch {
	case strings.TrimSpace(z.ZoneName) == "":
		return fmt.Errorf("%w: zone_name is required", ErrInvalidZone)
	case z.AvgPricePerNight < 0:
		return fmt.Errorf("%w: avg_price_per_night must be >= 0", ErrInvalidZone)
	case z.EstimatedOccupancy < 0 || z.EstimatedOccupancy > 1:
		return fmt.Errorf("%w: estimated_occupancy_rate must be within [0,1]", ErrInvalidZone)
	case z.Bedrooms < 0:
		return fmt.Errorf("%w: bedrooms must be >= 0", ErrInvalidZone)
	}
	return nil
}
