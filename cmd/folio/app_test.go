package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/pkg/adapters/file"
	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	store, locker, closeFn, err := openStore(config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.Nil(t, locker)
	assert.NoError(t, closeFn())

	store, _, _, err = openStore(config.StoreConfig{Driver: config.DriverFile, Dir: t.TempDir(), Format: "yaml"})
	require.NoError(t, err)
	require.IsType(t, &file.Store{}, store)
	assert.Equal(t, file.FormatYAML, store.(*file.Store).Format)

	store, locker, closeFn, err = openStore(config.StoreConfig{Driver: config.DriverRedis, RedisAddr: "localhost:0"})
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.NotNil(t, locker)
	assert.NoError(t, closeFn())

	_, _, _, err = openStore(config.StoreConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestOpenProducer(t *testing.T) {
	p, err := openProducer(config.ProducerConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = openProducer(config.ProducerConfig{Command: "cat"})
	require.NoError(t, err)
	assert.NotNil(t, p)

	registry := filepath.Join(t.TempDir(), "producers.yaml")
	require.NoError(t, os.WriteFile(registry, []byte("producers:\n  - name: echo\n    command: echo\n"), 0644))

	p, err = openProducer(config.ProducerConfig{Name: "echo", Registry: registry})
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = openProducer(config.ProducerConfig{Name: "ghost", Registry: registry})
	assert.ErrorContains(t, err, "ghost")
}

func TestOpenStore_Middleware(t *testing.T) {
	key := strings.Repeat("ab", 32)
	store, _, _, err := openStore(config.StoreConfig{
		Driver:        config.DriverMemory,
		EncryptionKey: key,
		Redact:        []string{"secret"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, "*memory.Store", fmt.Sprintf("%T", store))

	_, _, _, err = openStore(config.StoreConfig{Driver: config.DriverMemory, Redact: []string{"("}})
	assert.Error(t, err)
}

func TestLockTTL(t *testing.T) {
	assert.Equal(t, session.DefaultLockTTL, lockTTL(config.ProducerConfig{}))
	assert.Equal(t, session.DefaultLockTTL, lockTTL(config.ProducerConfig{Timeout: 5 * time.Second}))
	assert.Equal(t, 2*time.Minute+10*time.Second, lockTTL(config.ProducerConfig{Timeout: 2 * time.Minute}))
}
