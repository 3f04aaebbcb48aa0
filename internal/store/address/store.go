// internal/store/address/store.go
package address

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
)

// Store resolves address-hierarchy codes to display names. Resolution is
// cosmetic: it feeds the result presenter and never the matcher.
type Store struct {
	db       *sql.DB
	pageSize int
	logger   logger.Logger
}

func NewStore(db *sql.DB, pageSize int, log logger.Logger) *Store {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Store{
		db:       db,
		pageSize: pageSize,
		logger:   log.WithFields(map[string]interface{}{"store": "address"}),
	}
}

func tableFor(kind models.AddressKind) (string, error) {
	switch kind {
	case models.AddressProvince:
		return "provinces", nil
	case models.AddressLgu:
		return "lgus", nil
	case models.AddressBarangay:
		return "barangays", nil
	}
	return "", fmt.Errorf("unknown address kind: %s", kind)
}

// FetchNames returns a code -> display name map for the requested kind.
// Codes with no matching row are simply absent from the map; the presenter
// falls back to showing the raw code.
//
// Barangay lookups page through offset windows because the backend caps
// result sets at pageSize rows per call; paging stops at the first short
// page, so the accumulated map is complete before use.
func (s *Store) FetchNames(ctx context.Context, kind models.AddressKind, codes []string) (map[string]string, error) {
	names := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return names, nil
	}

	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	if kind == models.AddressBarangay {
		return s.fetchPaged(ctx, table, codes)
	}

	query := fmt.Sprintf(`SELECT code, name FROM %s WHERE code = ANY($1)`, table)
	rows, err := s.db.QueryContext(ctx, query, pq.Array(codes))
	if err != nil {
		return nil, fmt.Errorf("query %s names: %w", table, err)
	}
	defer rows.Close()

	if err := collect(rows, names); err != nil {
		return nil, fmt.Errorf("collect %s names: %w", table, err)
	}
	return names, nil
}

func (s *Store) fetchPaged(ctx context.Context, table string, codes []string) (map[string]string, error) {
	names := make(map[string]string, len(codes))
	query := fmt.Sprintf(
		`SELECT code, name FROM %s WHERE code = ANY($1) ORDER BY code LIMIT $2 OFFSET $3`,
		table,
	)

	for offset := 0; ; offset += s.pageSize {
		rows, err := s.db.QueryContext(ctx, query, pq.Array(codes), s.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("query %s page at offset %d: %w", table, offset, err)
		}

		before := len(names)
		if err := collect(rows, names); err != nil {
			rows.Close()
			return nil, fmt.Errorf("collect %s page: %w", table, err)
		}
		rows.Close()

		fetched := len(names) - before
		if fetched < s.pageSize {
			break
		}
	}

	s.logger.Debug("resolved address names", map[string]interface{}{
		"table":     table,
		"requested": len(codes),
		"resolved":  len(names),
	})

	return names, nil
}

func collect(rows *sql.Rows, into map[string]string) error {
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return err
		}
		into[code] = name
	}
	return rows.Err()
}
