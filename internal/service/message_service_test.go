package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/pkg/mongo"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textReq(convID, sender, receiver uint64, text string) *dto.CreateMessageReq {
	return &dto.CreateMessageReq{
		ConversationID: convID,
		SenderID:       sender,
		ReceiverID:     receiver,
		Text:           &text,
	}
}

func pngFile(t *testing.T, name string, w, h int) *UploadFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &UploadFile{FileName: name, Size: int64(buf.Len()), Reader: bytes.NewReader(buf.Bytes())}
}

func rawFile(name, body string) *UploadFile {
	return &UploadFile{FileName: name, Size: int64(len(body)), Reader: bytes.NewReader([]byte(body))}
}

func TestSendThenFetch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	_, err = env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, "hi"), nil)
	require.NoError(t, err)

	page, err := env.messages.FindByConversationID(ctx, conv.ID, firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.TotalItems)
	item := page.Items[0]
	assert.Equal(t, "hi", item.Content.TranslationEn)
	assert.Equal(t, mongo.MessageTypeText, item.MessageType)
	assert.Equal(t, mongo.MessageStatusSent, item.Status)
	assert.False(t, item.IsDeleted)
	assert.Empty(t, item.Attachments)
	assert.Zero(t, env.engine.calls)
}

func TestCreateMessage_UpdatesLastMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	sent, err := env.messages.CreateMessage(ctx, textReq(conv.ID, 2, 1, "see you"), nil)
	require.NoError(t, err)

	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessageID)
	assert.Equal(t, sent.ID, *got.LastMessageID)
	assert.Equal(t, "see you", got.LastMessage)
}

func TestCreateMessage_LastMessageKeepsFullText(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	text := "  " + strings.Repeat("长", 300) + "  "
	_, err = env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, text), nil)
	require.NoError(t, err)

	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, text, got.LastMessage)

	tooLong := strings.Repeat("x", 4001)
	_, err = env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, tooLong), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 1, env.messageRepo.count())

	msgID := *got.LastMessageID
	_, err = env.messages.UpdateContent(ctx, msgID, tooLong, false)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateMessage_AttachmentPlaceholder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	req := &dto.CreateMessageReq{ConversationID: conv.ID, SenderID: 1, ReceiverID: 2}
	sent, err := env.messages.CreateMessage(ctx, req, []*UploadFile{pngFile(t, "a.png", 4, 3)})
	require.NoError(t, err)

	assert.Nil(t, sent.Content)
	assert.Equal(t, mongo.MessageTypeImage, sent.MessageType)
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "image/png", sent.Attachments[0].MimeType)
	assert.Equal(t, 4, sent.Attachments[0].Width)
	assert.Equal(t, 3, sent.Attachments[0].Height)

	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "[attachment]", got.LastMessage)
	assert.Equal(t, sent.ID, *got.LastMessageID)
}

func TestCreateMessage_UsesExistingAttachmentIDs(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	media, err := env.attachments.Upload(ctx, 1, rawFile("notes.txt", "plain text body"))
	require.NoError(t, err)
	uploaded := env.blobs.size()

	req := textReq(conv.ID, 1, 2, "file for you")
	req.AttachmentIDs = []uint64{media.ID}
	sent, err := env.messages.CreateMessage(ctx, req, nil)
	require.NoError(t, err)

	assert.Equal(t, uploaded, env.blobs.size())
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, media.ID, sent.Attachments[0].ID)
	assert.Equal(t, mongo.MessageTypeText, sent.MessageType)
}

func TestCreateMessage_RejectsForeignOrUnknownAttachmentIDs(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	bobs, err := env.attachments.Upload(ctx, 2, rawFile("bob.txt", "bob only"))
	require.NoError(t, err)

	req := textReq(conv.ID, 1, 2, "not mine")
	req.AttachmentIDs = []uint64{bobs.ID}
	_, err = env.messages.CreateMessage(ctx, req, nil)
	assert.ErrorIs(t, err, UnauthorizedError)

	req.AttachmentIDs = []uint64{404}
	_, err = env.messages.CreateMessage(ctx, req, nil)
	assert.ErrorIs(t, err, ErrAttachmentNotFound)
	assert.Zero(t, env.messageRepo.count())
}

func TestCreateMessage_UploadFailureAbortsWholeSend(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.blobs.failName = "broken"

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	req := textReq(conv.ID, 1, 2, "two files")
	_, err = env.messages.CreateMessage(ctx, req, []*UploadFile{rawFile("ok.txt", "fine"), rawFile("bad.txt", "broken")})
	assert.ErrorIs(t, err, ErrDependencyFailure)

	assert.Zero(t, env.messageRepo.count())
	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastMessageID)
	assert.Zero(t, env.blobs.size())
}

func TestCreateMessage_TranslationFailureNotPersisted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.engine.err = errors.New("engine down")

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	req := textReq(conv.ID, 1, 2, "bonjour")
	req.NeedsTranslation = true
	_, err = env.messages.CreateMessage(ctx, req, nil)
	assert.ErrorIs(t, err, ErrTranslationUnavailable)
	assert.Zero(t, env.messageRepo.count())
}

func TestCreateMessage_Translated(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	req := textReq(conv.ID, 1, 2, "bonjour")
	req.NeedsTranslation = true
	sent, err := env.messages.CreateMessage(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "fr", sent.Content.SourceLanguage)
	assert.Equal(t, "hello", sent.Content.TranslationEn)
	assert.Equal(t, "hola", sent.Content.TranslationEs)
}

func TestCreateMessage_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)

	_, err = env.messages.CreateMessage(ctx, &dto.CreateMessageReq{ConversationID: conv.ID, SenderID: 1, ReceiverID: 2}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 3, "hi"), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.messages.CreateMessage(ctx, textReq(404, 1, 2, "hi"), nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	req := textReq(conv.ID, 1, 2, "hi")
	req.MessageType = "sticker"
	_, err = env.messages.CreateMessage(ctx, req, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFindByID_DanglingReplyResolvesToNil(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	original, err := env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, "question"), nil)
	require.NoError(t, err)

	req := textReq(conv.ID, 2, 1, "answer")
	req.RepliedToMessageID = &original.ID
	reply, err := env.messages.CreateMessage(ctx, req, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.RepliedToMessage)
	assert.Equal(t, original.ID, reply.RepliedToMessage.ID)

	env.messageRepo.mu.Lock()
	delete(env.messageRepo.msgs, original.ID)
	env.messageRepo.mu.Unlock()

	got, err := env.messages.FindByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, original.ID, *got.RepliedToMessageID)
	assert.Nil(t, got.RepliedToMessage)
}

func TestFindByID_Absent(t *testing.T) {
	env := newTestEnv()
	got, err := env.messages.FindByID(context.Background(), "65f000000000000000000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateContent_RefreshesLastMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	sent, err := env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, "typo"), nil)
	require.NoError(t, err)

	updated, err := env.messages.UpdateContent(ctx, sent.ID, "fixed", false)
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content.TranslationEn)

	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.LastMessage)

	_, err = env.messages.UpdateContent(ctx, "65f000000000000000000000", "x", false)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestUpdateDeletionStatus_IsPureFlag(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	req := &dto.CreateMessageReq{ConversationID: conv.ID, SenderID: 1, ReceiverID: 2}
	sent, err := env.messages.CreateMessage(ctx, req, []*UploadFile{rawFile("a.txt", "aaa")})
	require.NoError(t, err)

	deleted, err := env.messages.UpdateDeletionStatus(ctx, sent.ID, true)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Len(t, deleted.Attachments, 1)

	restored, err := env.messages.UpdateDeletionStatus(ctx, sent.ID, false)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)

	got, err := env.conversation.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, sent.ID, *got.LastMessageID)

	_, err = env.messages.UpdateDeletionStatus(ctx, "65f000000000000000000000", true)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestMarkConversationRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conv, err := env.conversation.CreateConversation(ctx, 1, 2)
	require.NoError(t, err)
	for _, text := range []string{"a", "b"} {
		_, err = env.messages.CreateMessage(ctx, textReq(conv.ID, 1, 2, text), nil)
		require.NoError(t, err)
	}
	_, err = env.messages.CreateMessage(ctx, textReq(conv.ID, 2, 1, "c"), nil)
	require.NoError(t, err)

	res, err := env.messages.MarkConversationRead(ctx, conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Count)

	res, err = env.messages.MarkConversationRead(ctx, conv.ID, 2)
	require.NoError(t, err)
	assert.Zero(t, res.Count)

	_, err = env.messages.MarkConversationRead(ctx, conv.ID, 9)
	assert.ErrorIs(t, err, UnauthorizedError)
}
