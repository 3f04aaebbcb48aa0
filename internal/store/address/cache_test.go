// internal/store/address/cache_test.go
package address

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registry-matcher/internal/common/logger"
	"registry-matcher/internal/models"
)

type fakeNameSource struct {
	names map[string]string
	err   error
	calls int
}

func (f *fakeNameSource) FetchNames(_ context.Context, _ models.AddressKind, codes []string) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, c := range codes {
		if name, ok := f.names[c]; ok {
			out[c] = name
		}
	}
	return out, nil
}

func newTestCache(t *testing.T, source Source) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(source, client, time.Hour, logger.NewNop()), mr
}

func TestCache_FetchNames_MissThenHit(t *testing.T) {
	source := &fakeNameSource{names: map[string]string{"PH-01": "Ilocos Norte"}}
	cache, mr := newTestCache(t, source)

	first, err := cache.FetchNames(context.Background(), models.AddressProvince, []string{"PH-01"})
	require.NoError(t, err)
	assert.Equal(t, "Ilocos Norte", first["PH-01"])
	assert.Equal(t, 1, source.calls)

	// Second lookup is served from redis.
	second, err := cache.FetchNames(context.Background(), models.AddressProvince, []string{"PH-01"})
	require.NoError(t, err)
	assert.Equal(t, "Ilocos Norte", second["PH-01"])
	assert.Equal(t, 1, source.calls)

	cached, err := mr.Get("addr:province:PH-01")
	require.NoError(t, err)
	assert.Equal(t, "Ilocos Norte", cached)
}

func TestCache_FetchNames_PartialHit(t *testing.T) {
	source := &fakeNameSource{names: map[string]string{
		"B-1": "Poblacion",
		"B-2": "San Isidro",
	}}
	cache, _ := newTestCache(t, source)

	_, err := cache.FetchNames(context.Background(), models.AddressBarangay, []string{"B-1"})
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	names, err := cache.FetchNames(context.Background(), models.AddressBarangay, []string{"B-1", "B-2"})
	require.NoError(t, err)
	assert.Equal(t, "Poblacion", names["B-1"])
	assert.Equal(t, "San Isidro", names["B-2"])
	// Only the missing code goes back to the store.
	assert.Equal(t, 2, source.calls)
}

func TestCache_FetchNames_RedisDownFallsBackToStore(t *testing.T) {
	source := &fakeNameSource{names: map[string]string{"PH-01": "Ilocos Norte"}}
	cache, mr := newTestCache(t, source)
	mr.Close()

	names, err := cache.FetchNames(context.Background(), models.AddressProvince, []string{"PH-01"})

	require.NoError(t, err)
	assert.Equal(t, "Ilocos Norte", names["PH-01"])
	assert.Equal(t, 1, source.calls)
}

func TestCache_FetchNames_SourceErrorPropagates(t *testing.T) {
	source := &fakeNameSource{err: errors.New("relation does not exist")}
	cache, _ := newTestCache(t, source)

	_, err := cache.FetchNames(context.Background(), models.AddressProvince, []string{"PH-01"})

	assert.ErrorContains(t, err, "relation does not exist")
}

func TestCache_FetchNames_NilRedisQueriesDirectly(t *testing.T) {
	source := &fakeNameSource{names: map[string]string{"L-1": "Laoag City"}}
	cache := NewCache(source, nil, time.Hour, logger.NewNop())

	names, err := cache.FetchNames(context.Background(), models.AddressLgu, []string{"L-1"})

	require.NoError(t, err)
	assert.Equal(t, "Laoag City", names["L-1"])
}
