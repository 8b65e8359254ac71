package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/ports"
)

// envelopeKey marks the single data entry of an encrypted envelope spec.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.FlowStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts specs using
// AES-GCM envelope encryption. Flow documents carry customer-authored copy
// and field names, so at-rest protection is expected by the tenants.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.FlowStore) ports.FlowStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, flowID string, spec domain.Spec) error {
	plainText, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt spec: %w", err)
	}

	// The envelope is an opaque single-screen spec: nothing about the real
	// graph (titles, field names, rules) is visible to the backing store.
	envelope := domain.Spec{
		Screens: []domain.Screen{{
			ID:       "SCREEN_A",
			Title:    domain.LiteralText("encrypted"),
			Terminal: true,
			Data: map[string]any{
				envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
			},
			Action: domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish},
		}},
		RoutingModel: map[string][]string{"SCREEN_A": {}},
		DefaultNext:  map[string]string{"SCREEN_A": ""},
	}

	return m.next.Save(ctx, flowID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, flowID string) (domain.Spec, error) {
	envelope, err := m.next.Load(ctx, flowID)
	if err != nil {
		return domain.Spec{}, err
	}

	if len(envelope.Screens) == 0 {
		return domain.Spec{}, errors.New("flow is missing encrypted data envelope")
	}
	encryptedStr, ok := envelope.Screens[0].Data[envelopeKey].(string)
	if !ok {
		// Fail secure: with encryption configured, a plain spec in the store
		// is treated as corruption, not silently passed through.
		return domain.Spec{}, errors.New("flow is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return domain.Spec{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Spec{}, fmt.Errorf("failed to decrypt spec: %w", err)
	}

	var spec domain.Spec
	if err := json.Unmarshal(plainText, &spec); err != nil {
		return domain.Spec{}, fmt.Errorf("failed to unmarshal decrypted spec: %w", err)
	}
	return spec, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, flowID string) error {
	return m.next.Delete(ctx, flowID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
