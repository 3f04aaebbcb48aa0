// internal/store/address/store_test.go
package address

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
)

func TestStore_FetchNames_Province(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"code", "name"}).
		AddRow("PH-01", "Ilocos Norte").
		AddRow("PH-02", "Ilocos Sur")

	mock.ExpectQuery(`SELECT code, name FROM provinces WHERE code = ANY\(\$1\)`).
		WillReturnRows(rows)

	store := NewStore(db, 1000, logger.NewNop())
	names, err := store.FetchNames(context.Background(), models.AddressProvince, []string{"PH-01", "PH-02", "PH-99"})

	require.NoError(t, err)
	assert.Equal(t, "Ilocos Norte", names["PH-01"])
	assert.Equal(t, "Ilocos Sur", names["PH-02"])
	// Unknown codes are simply absent; the presenter falls back to the code.
	_, ok := names["PH-99"]
	assert.False(t, ok)
}

func TestStore_FetchNames_BarangayPagesThroughRowCap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	codes := []string{"B-1", "B-2", "B-3", "B-4", "B-5"}

	// Backend caps each call at pageSize rows; paging stops at the first
	// short page.
	mock.ExpectQuery(`SELECT code, name FROM barangays WHERE code = ANY\(\$1\) ORDER BY code LIMIT \$2 OFFSET \$3`).
		WithArgs(pq.Array(codes), 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).
			AddRow("B-1", "Bagong Silang").
			AddRow("B-2", "Poblacion"))
	mock.ExpectQuery(`SELECT code, name FROM barangays`).
		WithArgs(pq.Array(codes), 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).
			AddRow("B-3", "San Isidro").
			AddRow("B-4", "San Roque"))
	mock.ExpectQuery(`SELECT code, name FROM barangays`).
		WithArgs(pq.Array(codes), 2, 4).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).
			AddRow("B-5", "Santa Cruz"))

	store := NewStore(db, 2, logger.NewNop())
	names, err := store.FetchNames(context.Background(), models.AddressBarangay, codes)

	require.NoError(t, err)
	assert.Len(t, names, 5)
	assert.Equal(t, "Santa Cruz", names["B-5"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FetchNames_BarangayStopsOnExactPageBoundary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	codes := []string{"B-1", "B-2"}

	mock.ExpectQuery(`SELECT code, name FROM barangays`).
		WithArgs(pq.Array(codes), 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).
			AddRow("B-1", "Bagong Silang").
			AddRow("B-2", "Poblacion"))
	// A full page forces one more (empty) probe.
	mock.ExpectQuery(`SELECT code, name FROM barangays`).
		WithArgs(pq.Array(codes), 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}))

	store := NewStore(db, 2, logger.NewNop())
	names, err := store.FetchNames(context.Background(), models.AddressBarangay, codes)

	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FetchNames_EmptyCodes(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, 1000, logger.NewNop())
	names, err := store.FetchNames(context.Background(), models.AddressLgu, nil)

	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_FetchNames_UnknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, 1000, logger.NewNop())
	_, err = store.FetchNames(context.Background(), models.AddressKind("region"), []string{"X"})

	assert.ErrorContains(t, err, "unknown address kind")
}

func TestStore_FetchNames_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT code, name FROM lgus`).
		WillReturnError(errors.New("relation does not exist"))

	store := NewStore(db, 1000, logger.NewNop())
	_, err = store.FetchNames(context.Background(), models.AddressLgu, []string{"L-1"})

	assert.ErrorContains(t, err, "relation does not exist")
}
