package keystore

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	key := testKey(t)

	store, err := Open(path, key)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyOpenAIAPIKey, "sk-secret"))
	require.NoError(t, store.Set(KeyGitHubToken, "ghp_token"))

	reopened, err := Open(path, key)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", reopened.APIKey())

	token, ok := reopened.Get(KeyGitHubToken)
	assert.True(t, ok)
	assert.Equal(t, "ghp_token", token)
}

func TestStoreValuesEncryptedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")

	store, err := Open(path, testKey(t))
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyOpenAIAPIKey, "sk-plaintext-secret"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-plaintext-secret")

	var sealed map[string]string
	require.NoError(t, json.Unmarshal(raw, &sealed))
	assert.Contains(t, sealed, KeyOpenAIAPIKey)
}

func TestStoreWrongKeyFailsToOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")

	store, err := Open(path, testKey(t))
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyOpenAIAPIKey, "sk-secret"))

	_, err = Open(path, testKey(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt")
}

func TestStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")
	key := testKey(t)

	store, err := Open(path, key)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyGitHubToken, "ghp_token"))
	require.NoError(t, store.Delete(KeyGitHubToken))

	reopened, err := Open(path, key)
	require.NoError(t, err)
	_, ok := reopened.Get(KeyGitHubToken)
	assert.False(t, ok)
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "absent.json"), testKey(t))
	require.NoError(t, err)
	assert.Equal(t, "", store.APIKey())
}

func TestStoreFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.json")

	store, err := Open(path, testKey(t))
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyOpenAIAPIKey, "sk-secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMachineKeyGeneratesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.key")

	first, err := MachineKey(path)
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := MachineKey(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMachineKeyCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.key")
	require.NoError(t, os.WriteFile(path, []byte("%%% not base64 %%%"), 0o600))

	_, err := MachineKey(path)
	require.Error(t, err)
}

func TestOpenRejectsShortKey(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "keystore.json"), []byte("short"))
	require.Error(t, err)
}
