package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
)

func TestNewConfigStore(t *testing.T) {
	t.Run("creates store in given directory", func(t *testing.T) {
		tmpDir := t.TempDir()

		store, err := NewConfigStore(tmpDir)

		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	})

	t.Run("creates nested directories", func(t *testing.T) {
		nested := filepath.Join(t.TempDir(), "nested", "deep")

		store, err := NewConfigStore(nested)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(nested, "config.toml"), store.Path())

		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("fails when directory cannot be created", func(t *testing.T) {
		store, err := NewConfigStore("/dev/null/cannot/create")

		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("fails on corrupted config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{["), 0600)
		require.NoError(t, err)

		store, err := NewConfigStore(tmpDir)

		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(driven.ConfigOutputRoot, "/data/brimr"))

	val, ok := store.Get(driven.ConfigOutputRoot)
	assert.True(t, ok)
	assert.Equal(t, "/data/brimr", val)

	_, ok = store.Get("nonexistent")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(driven.ConfigOutputRoot, "/data/brimr"))
	require.NoError(t, store.Set(driven.ConfigDownloadTimeoutSeconds, 120))
	require.NoError(t, store.Set(driven.ConfigHeadless, true))

	assert.Equal(t, "/data/brimr", store.GetString(driven.ConfigOutputRoot))
	assert.Equal(t, 120, store.GetInt(driven.ConfigDownloadTimeoutSeconds))
	assert.True(t, store.GetBool(driven.ConfigHeadless))

	// Missing keys yield zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))

	// Wrong types yield zero values too.
	assert.Equal(t, "", store.GetString(driven.ConfigDownloadTimeoutSeconds))
	assert.Equal(t, 0, store.GetInt(driven.ConfigOutputRoot))
	assert.False(t, store.GetBool(driven.ConfigOutputRoot))
}

func TestConfigStore_GetInt_Int64(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// TOML unmarshals integers as int64.
	store.mu.Lock()
	store.data[driven.ConfigFallbackLastYear] = int64(2024)
	store.mu.Unlock()

	assert.Equal(t, 2024, store.GetInt(driven.ConfigFallbackLastYear))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set(driven.ConfigOutputRoot, "/data/brimr"))
	require.NoError(t, store1.Set(driven.ConfigFallbackFirstYear, 2006))
	require.NoError(t, store1.Set(driven.ConfigHeadless, false))

	// A fresh instance loads what the first one persisted.
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/data/brimr", store2.GetString(driven.ConfigOutputRoot))
	assert.Equal(t, 2006, store2.GetInt(driven.ConfigFallbackFirstYear))
	assert.False(t, store2.GetBool(driven.ConfigHeadless))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("[fetch]\noutput_root = \"/data/brimr\"\nheadless = true\n\n[probe]\nfallback_first_year = 2006\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/data/brimr", store.GetString(driven.ConfigOutputRoot))
	assert.True(t, store.GetBool(driven.ConfigHeadless))
	assert.Equal(t, 2006, store.GetInt(driven.ConfigFallbackFirstYear))
}

func TestConfigStore_Load_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(driven.ConfigHeadless, true))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(driven.ConfigOutputRoot, "/first"))
	require.NoError(t, store.Set(driven.ConfigOutputRoot, "/second"))

	assert.Equal(t, "/second", store.GetString(driven.ConfigOutputRoot))
}

func TestConfigStore_Concurrency(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
