package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/dsl"
	"github.com/aretw0/folio/pkg/persistence/middleware"
	"github.com/aretw0/folio/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretStory() *domain.Story {
	b := dsl.New("diary").Title("Diary").Prompt("Write to jane@example.com")
	b.Add("start").Text("The secret is in the attic.").Go("up", "Climb", "attic", domain.OutcomeFavorable)
	b.Add("attic").Text("Dust, and a letter to jane@example.com.").Ending()
	return b.MustBuild()
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	ports.RunStoryStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secure := mw(underlying)
	ctx := context.Background()
	story := secretStory()

	require.NoError(t, secure.Save(ctx, story))

	stored, err := underlying.Load(ctx, "diary")
	require.NoError(t, err)
	require.Len(t, stored.Nodes, 1)
	assert.NotContains(t, stored.Node(middleware.SealedNodeID).Text, "attic")
	assert.Empty(t, stored.Title)

	loaded, err := secure.Load(ctx, "diary")
	require.NoError(t, err)
	assert.Equal(t, story, loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldMW, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	require.NoError(t, oldMW(underlying).Save(ctx, secretStory()))

	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	loaded, err := rotated(underlying).Load(ctx, "diary")
	require.NoError(t, err)
	assert.Equal(t, "Diary", loaded.Title)

	strict, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})
	require.NoError(t, err)
	_, err = strict(underlying).Load(ctx, "diary")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptionMiddleware_RejectsPlainStories(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, secretStory()))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	_, err = mw(underlying).Load(ctx, "diary")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestRedactMiddleware(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{middleware.EmailPattern})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	story := secretStory()
	require.NoError(t, store.Save(ctx, story))
	assert.Contains(t, story.Prompt, "jane@example.com", "caller's copy is untouched")

	loaded, err := store.Load(ctx, "diary")
	require.NoError(t, err)
	assert.Equal(t, "Write to ***", loaded.Prompt)
	assert.Equal(t, "Dust, and a letter to ***.", loaded.Node("attic").Text)

	punctuated := dsl.New("notes").Prompt("Mail a.b@mail.example.org, or x@y.io!")
	punctuated.Add("start").Text("(ask jane@example.com.)").Ending()
	require.NoError(t, store.Save(ctx, punctuated.MustBuild()))
	loaded, err = store.Load(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "Mail ***, or ***!", loaded.Prompt)
	assert.Equal(t, "(ask ***.)", loaded.Node("start").Text)

	_, err = middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactMiddleware([]string{"attic"})
	require.NoError(t, err)
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, redact, seal)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, secretStory()))

	loaded, err := store.Load(ctx, "diary")
	require.NoError(t, err)
	assert.Equal(t, "The secret is in the ***.", loaded.Node("start").Text)
}
