package service

import (
	"context"
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
	"gocloud.dev/secrets"

	apperrors "github.com/gtedge/aegis/internal/errors"
	appValidation "github.com/gtedge/aegis/internal/validation"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSKeeper is the subset of *secrets.Keeper used to unwrap the token
// signing key. Defined as an interface so tests can substitute a fake.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens secret keepers for the configured KMS provider.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the given key URI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// SigningKeyLoader resolves the token signing key material at startup.
// The key is either supplied directly as base64 plaintext, or as a
// KMS-wrapped base64 ciphertext that is unwrapped through a keeper so the
// plaintext key never lives in the environment.
type SigningKeyLoader struct {
	kms KMSService
}

// NewSigningKeyLoader creates a SigningKeyLoader backed by the given KMS
// service.
func NewSigningKeyLoader(kms KMSService) *SigningKeyLoader {
	return &SigningKeyLoader{kms: kms}
}

// Load returns the raw signing key bytes. When encryptedKey and kmsKeyURI
// are both set, the ciphertext is decrypted through the KMS keeper;
// otherwise plainKey is used directly. Exactly one source must yield a key.
func (l *SigningKeyLoader) Load(
	ctx context.Context,
	plainKey string,
	encryptedKey string,
	kmsKeyURI string,
) ([]byte, error) {
	if encryptedKey != "" && kmsKeyURI != "" {
		if err := validation.Validate(encryptedKey, appValidation.Base64); err != nil {
			return nil, apperrors.Wrap(err, "invalid encrypted signing key")
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encryptedKey)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decode encrypted signing key")
		}

		keeper, err := l.kms.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return nil, err
		}
		defer keeper.Close()

		key, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unwrap signing key via KMS")
		}
		return key, nil
	}

	if plainKey == "" {
		return nil, apperrors.New("no token signing key configured")
	}

	if err := validation.Validate(plainKey, appValidation.Base64); err != nil {
		return nil, apperrors.Wrap(err, "invalid signing key")
	}
	key, err := base64.StdEncoding.DecodeString(plainKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode signing key")
	}
	return key, nil
}
