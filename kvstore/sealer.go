package kvstore

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2id parameters for deriving the file key from a passphrase.
const (
	argonTime    = 2
	argonMemory  = 19 * 1024 // KiB
	argonThreads = 1
	saltLength   = 16
	sealVersion  = 1
)

// sealedEnvelope is the on-disk form of an encrypted store document.
type sealedEnvelope struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// sealer encrypts store documents with XChaCha20-Poly1305 under a key
// derived from a passphrase. A fresh salt and nonce are used per write.
type sealer struct {
	passphrase []byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{passphrase: []byte(passphrase)}
}

func (s *sealer) key(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.key(salt))
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305.NewX: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return json.Marshal(sealedEnvelope{
		Version: sealVersion,
		Salt:    salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, plaintext, nil),
	})
}

func (s *sealer) open(raw []byte) ([]byte, error) {
	var env sealedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrStoreCorrupt, "decode envelope: %v", err)
	}
	if env.Version != sealVersion {
		return nil, autherrors.Wrapf(autherrors.ErrStoreCorrupt, "unsupported envelope version %d", env.Version)
	}
	aead, err := chacha20poly1305.NewX(s.key(env.Salt))
	if err != nil {
		return nil, fmt.Errorf("chacha20poly1305.NewX: %w", err)
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, autherrors.Wrapf(autherrors.ErrStoreCorrupt, "bad nonce length %d", len(env.Nonce))
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Data, nil)
	if err != nil {
		return nil, autherrors.Wrapf(autherrors.ErrStoreCorrupt, "wrong passphrase or tampered file")
	}
	return plaintext, nil
}
