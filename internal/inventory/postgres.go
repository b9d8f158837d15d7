package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/foliolab/foliage-platform/pkg/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store persists datasets in PostgreSQL across the datasets and trees
// tables.
type Store struct {
	pg     postgres.Client
	logger *slog.Logger
}

// NewStore creates a new dataset store.
func NewStore(pg postgres.Client, logger *slog.Logger) *Store {
	return &Store{
		pg:     pg,
		logger: logger,
	}
}

// DatasetInfo summarizes one stored dataset for listings.
type DatasetInfo struct {
	Name        string
	ImportID    uuid.UUID
	Seed        int64
	Species     []string
	EntityCount int
	LoadedAt    time.Time
}

// EnsureSchema creates the dataset tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			name TEXT PRIMARY KEY,
			import_id UUID NOT NULL,
			seed BIGINT NOT NULL,
			species TEXT[] NOT NULL,
			entity_count INTEGER NOT NULL,
			centroid_lng DOUBLE PRECISION NOT NULL,
			centroid_lat DOUBLE PRECISION NOT NULL,
			loaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS trees (
			dataset_name TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
			tree_id TEXT NOT NULL,
			species TEXT NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			diameter_cm DOUBLE PRECISION NOT NULL,
			offset_days INTEGER NOT NULL,
			PRIMARY KEY (dataset_name, tree_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pg.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure dataset schema: %w", err)
		}
	}

	return nil
}

// SaveDataset writes a dataset and all of its trees in one transaction,
// replacing any previous import under the same name.
func (s *Store) SaveDataset(ctx context.Context, ds *Dataset, seed int64) error {
	importID := uuid.New()

	err := s.pg.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO datasets (name, import_id, seed, species, entity_count, centroid_lng, centroid_lat, loaded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (name) DO UPDATE SET
				import_id = EXCLUDED.import_id,
				seed = EXCLUDED.seed,
				species = EXCLUDED.species,
				entity_count = EXCLUDED.entity_count,
				centroid_lng = EXCLUDED.centroid_lng,
				centroid_lat = EXCLUDED.centroid_lat,
				loaded_at = now()
		`

		_, err := tx.ExecContext(ctx, query,
			ds.Name,
			importID,
			seed,
			pq.Array(ds.Species),
			len(ds.Entities),
			ds.CentroidLng,
			ds.CentroidLat,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert dataset: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM trees WHERE dataset_name = $1`, ds.Name); err != nil {
			return fmt.Errorf("failed to clear previous trees: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO trees (dataset_name, tree_id, species, lng, lat, diameter_cm, offset_days)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare tree insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range ds.Entities {
			if _, err := stmt.ExecContext(ctx, ds.Name, e.ID, e.Species, e.Lng, e.Lat, e.DiameterCM, e.OffsetDays); err != nil {
				return fmt.Errorf("failed to insert tree %s: %w", e.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Saved dataset",
		"dataset", ds.Name,
		"import_id", importID,
		"entities", len(ds.Entities),
		"species", len(ds.Species))

	return nil
}

// LoadDataset reads a stored dataset back. Trees come out ordered by
// tree_id so repeated loads yield the same positional frame layout.
func (s *Store) LoadDataset(ctx context.Context, name string) (*Dataset, error) {
	var entityCount int
	err := s.pg.QueryRow(ctx, `SELECT entity_count FROM datasets WHERE name = $1`, name).Scan(&entityCount)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dataset not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}

	rows, err := s.pg.Query(ctx, `
		SELECT tree_id, species, lng, lat, diameter_cm, offset_days
		FROM trees
		WHERE dataset_name = $1
		ORDER BY tree_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query trees: %w", err)
	}
	defer rows.Close()

	entities := make([]Entity, 0, entityCount)
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Species, &e.Lng, &e.Lat, &e.DiameterCM, &e.OffsetDays); err != nil {
			return nil, fmt.Errorf("failed to scan tree row: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tree rows: %w", err)
	}

	return fromEntities(name, entities), nil
}

// ListDatasets returns a summary of every stored dataset, newest first.
func (s *Store) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT name, import_id, seed, species, entity_count, loaded_at
		FROM datasets
		ORDER BY loaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	var infos []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		if err := rows.Scan(&info.Name, &info.ImportID, &info.Seed, pq.Array(&info.Species), &info.EntityCount, &info.LoadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset rows: %w", err)
	}

	return infos, nil
}
