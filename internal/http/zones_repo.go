package httpapi

import (
	"context"

	"github.com/glodyfimpa/str-analyzer/internal/cache"
	"github.com/glodyfimpa/str-analyzer/internal/domain"
	"github.com/glodyfimpa/str-analyzer/internal/storage"
)

type ListParams struct {
	City         string
	Zone         string
	Bedrooms     int
	MinOccupancy float64
	Sort         string
	Limit        int
	Offset       int
}

// ZoneRepo is what the API needs from zone storage.
type ZoneRepo interface {
	List(ctx context.Context, p ListParams) ([]domain.Zone, int, error)
	Get(ctx context.Context, id string) (domain.Zone, bool, error)
	Create(ctx context.Context, z domain.Zone) (domain.Zone, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SQLiteZonesRepo serves zones from SQLite, reading through the cache.
type SQLiteZonesRepo struct {
	Store *storage.SQLiteStore
	Cache cache.ZoneCache
}

func NewSQLiteZonesRepo(store *storage.SQLiteStore, c cache.ZoneCache) *SQLiteZonesRepo {
	return &SQLiteZonesRepo{Store: store, Cache: c}
}

func (r *SQLiteZonesRepo) List(ctx context.Context, p ListParams) ([]domain.Zone, int, error) {
	return r.Store.ListZones(storage.ZoneFilter{
		City:         p.City,
		Zone:         p.Zone,
		Bedrooms:     p.Bedrooms,
		MinOccupancy: p.MinOccupancy,
		Sort:         p.Sort,
		Limit:        p.Limit,
		Offset:       p.Offset,
	})
}

func (r *SQLiteZonesRepo) Get(ctx context.Context, id string) (domain.Zone, bool, error) {
	if r.Cache != nil {
		if z, ok := r.Cache.Get(id); ok {
			return z, true, nil
		}
	}
	z, ok, err := r.Store.GetZone(id)
	if err != nil || !ok {
		return z, ok, err
	}
	if r.Cache != nil {
		r.Cache.Set(z)
	}
	return z, true, nil
}

func (r *SQLiteZonesRepo) Create(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	created, err := r.Store.CreateZone(z)
	if err != nil {
		return domain.Zone{}, err
	}
	if r.Cache != nil {
		r.Cache.Set(created)
	}
	return created, nil
}

func (r *SQLiteZonesRepo) Delete(ctx context.Context, id string) (bool, error) {
	if r.Cache != nil {
		r.Cache.Delete(id)
	}
	return r.Store.DeleteZone(id)
}
