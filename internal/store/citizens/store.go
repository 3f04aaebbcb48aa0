// internal/store/citizens/store.go
package citizens

import (
	"context"
	"database/sql"
	"fmt"

	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
)

const selectColumns = `
	SELECT id, last_name, first_name, middle_name, extension_name,
	       birth_date, status, province_code, lgu_code, barangay_code
	FROM citizens`

// Store reads citizen records from the registry database. The scanner only
// ever reads; all mutation belongs to the surrounding CRUD application.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "citizens"}),
	}
}

// FetchByStatus returns one full partition, ordered by last name then first
// name (then id, so equal names stay deterministic). The result is a
// complete snapshot: the scanner never runs against a partial partition.
func (s *Store) FetchByStatus(ctx context.Context, filter models.StatusFilter) ([]models.CitizenRecord, error) {
	var query string
	switch filter {
	case models.FilterPending:
		query = selectColumns + `
	WHERE status = $1
	ORDER BY last_name, first_name, id`
	case models.FilterReference:
		query = selectColumns + `
	WHERE status <> $1
	ORDER BY last_name, first_name, id`
	default:
		return nil, fmt.Errorf("unknown status filter: %s", filter)
	}

	rows, err := s.db.QueryContext(ctx, query, string(models.StatusEncoded))
	if err != nil {
		return nil, fmt.Errorf("query citizens (%s): %w", filter, err)
	}
	defer rows.Close()

	var records []models.CitizenRecord
	for rows.Next() {
		var (
			rec       models.CitizenRecord
			middle    sql.NullString
			extension sql.NullString
			birthDate sql.NullTime
			status    string
		)
		if err := rows.Scan(
			&rec.ID, &rec.LastName, &rec.FirstName, &middle, &extension,
			&birthDate, &status, &rec.ProvinceCode, &rec.LguCode, &rec.BarangayCode,
		); err != nil {
			return nil, fmt.Errorf("scan citizen row: %w", err)
		}
		if middle.Valid {
			rec.MiddleName = &middle.String
		}
		if extension.Valid {
			rec.ExtensionName = &extension.String
		}
		if birthDate.Valid {
			rec.BirthDate = birthDate.Time
		}
		rec.Status = models.CitizenStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate citizen rows: %w", err)
	}

	s.logger.Debug("fetched citizen partition", map[string]interface{}{
		"filter": string(filter),
		"count":  len(records),
	})

	return records, nil
}
