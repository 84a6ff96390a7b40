package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtrove/internal/models"
	"rtrove/internal/observability"
)

func TestAddChat_OptimisticRollback(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.store
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	rollbacks := testutil.ToFloat64(observability.ChatRollbacks)

	entered, release := env.kv.holdNext()
	env.kv.fail.Store(true)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.AddChat(ctx, p.ID, alice.ID, "hello")
		errCh <- err
	}()

	<-entered
	visible := s.GetProjectChats(p.ID)
	require.Len(t, visible, 1)
	assert.Equal(t, "hello", visible[0].Content)

	release()
	err := <-errCh
	assertAppError(t, err, models.CodeStorage, "Failed to add chat")
	assert.Empty(t, s.GetProjectChats(p.ID))
	assert.Equal(t, rollbacks+1, testutil.ToFloat64(observability.ChatRollbacks))
}

func TestAddChat_PessimisticWhenFlagOff(t *testing.T) {
	env := newTestEnv(t, "optimistic_chat=off")
	s := env.store
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	entered, release := env.kv.holdNext()
	errCh := make(chan error, 1)
	go func() {
		_, err := s.AddChat(ctx, p.ID, alice.ID, "hello")
		errCh <- err
	}()

	<-entered
	assert.Empty(t, s.GetProjectChats(p.ID))

	release()
	require.NoError(t, <-errCh)
	assert.Len(t, s.GetProjectChats(p.ID), 1)
}

func TestChat_DeleteAndValidation(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.store
	ctx := context.Background()
	alice := mustRegister(t, s, "alice")
	p := mustProject(t, s, alice, "Album")

	chat, err := s.AddChat(ctx, p.ID, alice.ID, "hello")
	require.NoError(t, err)
	assert.Len(t, env.reload(t).GetProjectChats(p.ID), 1)

	require.NoError(t, s.DeleteChat(ctx, chat.ID))
	assert.Empty(t, s.GetProjectChats(p.ID))
	assertAppError(t, s.DeleteChat(ctx, chat.ID), models.CodeNotFound, "Chat not found")

	_, err = s.AddChat(ctx, p.ID, alice.ID, "  ")
	assertAppError(t, err, models.CodeValidation, "")
	_, err = s.AddChat(ctx, "missing", alice.ID, "hi")
	assertAppError(t, err, models.CodeNotFound, "Project not found")
}
