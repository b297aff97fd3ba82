package service

import (
	"Rendezvous/internal/pkg/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstPage() util.Page {
	return util.Page{Page: 1, PageSize: 20, SortField: util.SortUpdatedAt, Desc: true}
}

func TestCreateConversation_Idempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	second, err := env.conversation.CreateConversation(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.convRepo.convs, 1)
	assert.Nil(t, first.LastMessageID)
	assert.Empty(t, first.LastMessage)
	require.NotNil(t, first.Sender)
	assert.Equal(t, uint64(1), first.Sender.UserID)
}

func TestCreateConversation_InvalidRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.conversation.CreateConversation(ctx, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = env.conversation.CreateConversation(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetConversation_NotFound(t *testing.T) {
	env := newTestEnv()
	_, err := env.conversation.GetConversation(context.Background(), 42)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListConversations_BlockFilter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, peer := range []uint64{2, 3, 4} {
		_, err := env.conversation.CreateConversation(ctx, 1, peer)
		require.NoError(t, err)
	}
	env.blocks.blocked[1] = []uint64{3}

	res, err := env.conversation.ListConversations(ctx, 1, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalItems)
	assert.Equal(t, 1, res.TotalPages)
	require.Len(t, res.Items, 2)
	for _, item := range res.Items {
		assert.NotEqual(t, uint64(3), item.ReceiverID)
		assert.NotNil(t, item.Sender)
		assert.NotNil(t, item.Receiver)
	}

	// 被拉黑的一方仍能看到会话
	res, err = env.conversation.ListConversations(ctx, 3, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalItems)
}

func TestListConversations_ResolvesLastMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	sent, err := env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, "hey"), nil)
	require.NoError(t, err)

	res, err := env.conversation.ListConversations(ctx, 2, firstPage())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	item := res.Items[0]
	require.NotNil(t, item.LastMessageInfo)
	assert.Equal(t, sent.ID, item.LastMessageInfo.ID)
	assert.Equal(t, "hey", item.LastMessageInfo.Content.TranslationEn)
}

func TestUpdateLastMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, env.conversation.UpdateLastMessage(ctx, conv.ID, "abc", ""))
	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessageID)
	assert.Equal(t, "abc", *got.LastMessageID)
	assert.Equal(t, "[attachment]", got.LastMessage)

	err = env.conversation.UpdateLastMessage(ctx, 999, "abc", "x")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
