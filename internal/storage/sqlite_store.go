package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// SQLiteStore keeps zone market snapshots. Projections are never stored.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS zones (
  id TEXT PRIMARY KEY,
  city TEXT NOT NULL,
  zone_name TEXT NOT NULL,
  bedrooms INTEGER NOT NULL DEFAULT 0,
  avg_price REAL NOT NULL,
  median_price REAL NOT NULL DEFAULT 0,
  occupancy REAL NOT NULL,
  total_listings INTEGER NOT NULL DEFAULT 0,
  listings_per_type_json TEXT NOT NULL DEFAULT '{}',
  percentiles_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL
);
`
	if _, err := s.db.Exec(createTable); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_zones_city ON zones(city);`); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) CountZones() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM zones`).Scan(&n)
	return n, err
}

const insertZone = `
INSERT %s INTO zones
(id, city, zone_name, bedrooms, avg_price, median_price, occupancy, total_listings, listings_per_type_json, percentiles_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectZone = `
SELECT id, city, zone_name, bedrooms, avg_price, median_price, occupancy, total_listings, listings_per_type_json, percentiles_json, created_at
FROM zones
`

func zoneArgs(z domain.Zone) []any {
	types, _ := json.Marshal(z.ListingsPerType)
	pct, _ := json.Marshal(z.PricePercentiles)
	return []any{
		z.ID, z.City, z.ZoneName, z.Bedrooms, z.AvgPricePerNight, z.MedianPricePerNight,
		z.EstimatedOccupancy, z.TotalListings, string(types), string(pct),
		z.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func prepare(z domain.Zone) domain.Zone {
	if z.ID == "" {
		z.ID = uuid.New().String()
	}
	if z.CreatedAt.IsZero() {
		z.CreatedAt = time.Now().UTC()
	}
	return z
}

// UpsertMany inserts a seed dataset without duplicating by id.
func (s *SQLiteStore) UpsertMany(items []domain.Zone) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(fmt.Sprintf(insertZone, "OR IGNORE"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, z := range items {
		if _, err := stmt.Exec(zoneArgs(prepare(z))...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CreateZone(z domain.Zone) (domain.Zone, error) {
	z = prepare(z)
	_, err := s.db.Exec(fmt.Sprintf(insertZone, ""), zoneArgs(z)...)
	return z, err
}

func (s *SQLiteStore) DeleteZone(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM zones WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(r rowScanner) (domain.Zone, error) {
	var z domain.Zone
	var typesJSON, pctJSON, created string
	if err := r.Scan(
		&z.ID, &z.City, &z.ZoneName, &z.Bedrooms, &z.AvgPricePerNight, &z.MedianPricePerNight,
		&z.EstimatedOccupancy, &z.TotalListings, &typesJSON, &pctJSON, &created,
	); err != nil {
		return domain.Zone{}, err
	}
	_ = json.Unmarshal([]byte(typesJSON), &z.ListingsPerType)
	_ = json.Unmarshal([]byte(pctJSON), &z.PricePercentiles)
	z.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return z, nil
}

func (s *SQLiteStore) GetZone(id string) (domain.Zone, bool, error) {
	z, err := scanZone(s.db.QueryRow(selectZone+`WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return domain.Zone{}, false, nil
	}
	if err != nil {
		return domain.Zone{}, false, err
	}
	return z, true, nil
}

// ZoneFilter narrows ListZones. Zero values disable a condition.
type ZoneFilter struct {
	City         string
	Zone         string
	Bedrooms     int
	MinOccupancy float64
	Sort         string // occupancy_desc, price_asc, price_desc
	Limit        int
	Offset       int
}

func (s *SQLiteStore) ListZones(f ZoneFilter) ([]domain.Zone, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if strings.TrimSpace(f.City) != "" {
		where = append(where, "LOWER(city) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.City)
	}
	if strings.TrimSpace(f.Zone) != "" {
		where = append(where, "LOWER(zone_name) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.Zone)
	}
	if f.Bedrooms > 0 {
		where = append(where, "bedrooms = ?")
		args = append(args, f.Bedrooms)
	}
	if f.MinOccupancy > 0 {
		where = append(where, "occupancy >= ?")
		args = append(args, f.MinOccupancy)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY city, zone_name, id"
	switch f.Sort {
	case "occupancy_desc":
		orderSQL = "ORDER BY occupancy DESC, id"
	case "price_asc":
		orderSQL = "ORDER BY avg_price ASC, id"
	case "price_desc":
		orderSQL = "ORDER BY avg_price DESC, id"
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM zones "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rowsArgs := append(append([]any{}, args...), f.Limit, f.Offset)
	rows, err := s.db.Query(selectZone+whereSQL+"\n"+orderSQL+"\nLIMIT ? OFFSET ?", rowsArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
