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

	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/ports"
)

// SealedNodeID names the single node of an encrypted envelope story.
const SealedNodeID = "sealed"

// ErrNotSealed is returned when an encrypted store loads a story that was saved in the clear.
var ErrNotSealed = errors.New("story is missing encrypted data envelope")

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
	next   ports.StoryStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals whole stories with AES-GCM.
// The wrapped store only ever sees an envelope story with the original ID and one node
// holding the ciphertext, so listing and deletion keep working unchanged.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StoryStore) ports.StoryStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, story *domain.Story) error {
	if err := story.Validate(); err != nil {
		return err
	}
	plainText, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt story: %w", err)
	}

	envelope := &domain.Story{
		ID:          story.ID,
		StartNodeID: SealedNodeID,
		Nodes: map[string]*domain.Node{
			SealedNodeID: {
				ID:      SealedNodeID,
				Text:    base64.StdEncoding.EncodeToString(ciphertext),
				Choices: []domain.Choice{},
			},
		},
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, storyID string) (*domain.Story, error) {
	envelope, err := m.next.Load(ctx, storyID)
	if err != nil {
		return nil, err
	}

	sealed := envelope.Node(SealedNodeID)
	if sealed == nil || len(envelope.Nodes) != 1 {
		// Fail secure: a configured key means every stored story must be sealed.
		return nil, fmt.Errorf("story %q: %w", storyID, ErrNotSealed)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt story %q: %w", storyID, err)
	}

	var story domain.Story
	if err := json.Unmarshal(plainText, &story); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted story: %w", err)
	}
	return &story, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, storyID string) error {
	return m.next.Delete(ctx, storyID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

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
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
