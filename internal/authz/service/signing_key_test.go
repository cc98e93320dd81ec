package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKeeper decrypts by returning a fixed key or a canned error.
type fakeKeeper struct {
	key []byte
	err error
}

func (f *fakeKeeper) Decrypt(_ context.Context, _ []byte) ([]byte, error) {
	return f.key, f.err
}

func (f *fakeKeeper) Close() error { return nil }

type fakeKMSService struct {
	keeper *fakeKeeper
	err    error
}

func (f *fakeKMSService) OpenKeeper(_ context.Context, _ string) (KMSKeeper, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keeper, nil
}

func TestSigningKeyLoader_PlainKey(t *testing.T) {
	loader := NewSigningKeyLoader(&fakeKMSService{})

	rawKey := []byte("0123456789abcdef0123456789abcdef")
	encoded := base64.StdEncoding.EncodeToString(rawKey)

	key, err := loader.Load(context.Background(), encoded, "", "")
	require.NoError(t, err)
	assert.Equal(t, rawKey, key)
}

func TestSigningKeyLoader_PlainKeyInvalidBase64(t *testing.T) {
	loader := NewSigningKeyLoader(&fakeKMSService{})

	_, err := loader.Load(context.Background(), "not base64!!", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signing key")
}

func TestSigningKeyLoader_MissingKey(t *testing.T) {
	loader := NewSigningKeyLoader(&fakeKMSService{})

	_, err := loader.Load(context.Background(), "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token signing key configured")
}

func TestSigningKeyLoader_EncryptedKey(t *testing.T) {
	rawKey := []byte("0123456789abcdef0123456789abcdef")
	loader := NewSigningKeyLoader(&fakeKMSService{keeper: &fakeKeeper{key: rawKey}})

	ciphertext := base64.StdEncoding.EncodeToString([]byte("wrapped-key-material"))

	key, err := loader.Load(context.Background(), "", ciphertext, "base64key://unused")
	require.NoError(t, err)
	assert.Equal(t, rawKey, key)
}

func TestSigningKeyLoader_EncryptedKeyInvalidBase64(t *testing.T) {
	loader := NewSigningKeyLoader(&fakeKMSService{keeper: &fakeKeeper{}})

	_, err := loader.Load(context.Background(), "", "not base64!!", "base64key://unused")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid encrypted signing key")
}

func TestSigningKeyLoader_DecryptFailure(t *testing.T) {
	loader := NewSigningKeyLoader(&fakeKMSService{keeper: &fakeKeeper{err: assert.AnError}})

	ciphertext := base64.StdEncoding.EncodeToString([]byte("wrapped-key-material"))

	_, err := loader.Load(context.Background(), "", ciphertext, "base64key://unused")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unwrap signing key")
}

func TestSigningKeyLoader_EncryptedTakesPrecedence(t *testing.T) {
	kmsKey := []byte("kms-unwrapped-signing-key-bytes!")
	loader := NewSigningKeyLoader(&fakeKMSService{keeper: &fakeKeeper{key: kmsKey}})

	plain := base64.StdEncoding.EncodeToString([]byte("plain-key"))
	ciphertext := base64.StdEncoding.EncodeToString([]byte("wrapped"))

	key, err := loader.Load(context.Background(), plain, ciphertext, "base64key://unused")
	require.NoError(t, err)
	assert.Equal(t, kmsKey, key)
}
