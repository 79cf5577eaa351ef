package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("cache.capacity", 512))
	require.NoError(t, store.Set("rules.pack", "/tmp/pack.yaml"))
	require.NoError(t, store.Set("classifier.min_confidence", 0.4))

	val, ok := store.Get("cache.capacity")
	assert.True(t, ok)
	assert.Equal(t, 512, val)

	_, ok = store.Get("engine.max_passes")
	assert.False(t, ok)

	require.NoError(t, store.Set("cache.capacity", 64))
	assert.Equal(t, 64, store.GetInt("cache.capacity"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("int", 42)
	_ = store.Set("int64", int64(7))
	_ = store.Set("float", 0.25)
	_ = store.Set("string", "value")
	_ = store.Set("bool", true)
	_ = store.Set("slice", []any{"a", 1, "b"})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int", store.GetInt("int"), 42},
		{"int from int64", store.GetInt("int64"), 7},
		{"int from float", store.GetInt("float"), 0},
		{"int from string", store.GetInt("string"), 0},
		{"int missing", store.GetInt("missing"), 0},
		{"float", store.GetFloat("float"), 0.25},
		{"float from int", store.GetFloat("int"), 42.0},
		{"float from int64", store.GetFloat("int64"), 7.0},
		{"float from string", store.GetFloat("string"), 0.0},
		{"float missing", store.GetFloat("missing"), 0.0},
		{"string", store.GetString("string"), "value"},
		{"string wrong type", store.GetString("int"), ""},
		{"bool", store.GetBool("bool"), true},
		{"bool wrong type", store.GetBool("string"), false},
		{"slice filters non-strings", store.GetStringSlice("slice"), []string{"a", "b"}},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	assert.Empty(t, store.Keys())

	_ = store.Set("timeout.max_ms", 5000)
	_ = store.Set("cache.capacity", 10)
	assert.Equal(t, []string{"cache.capacity", "timeout.max_ms"}, store.Keys())
}

func TestConfigStore_PersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("engine.max_depth", 8)

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, 8, store.GetInt("engine.max_depth"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", id%10)
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}
