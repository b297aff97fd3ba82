package handler

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/model"
	"Rendezvous/internal/pkg/consts"
	"Rendezvous/internal/pkg/util"
	"Rendezvous/internal/service"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type fakeConversationService struct {
	convs   map[uint64]*dto.ConversationDTO
	updated []string
	page    util.Page
}

func (s *fakeConversationService) CreateConversation(_ context.Context, a, b uint64) (*dto.ConversationDTO, error) {
	conv := &dto.ConversationDTO{ID: 99, SenderID: a, ReceiverID: b}
	s.convs[conv.ID] = conv
	return conv, nil
}

func (s *fakeConversationService) ListConversations(_ context.Context, userID uint64, page util.Page) (*dto.PageResult[*dto.ConversationDTO], error) {
	s.page = page
	items := make([]*dto.ConversationDTO, 0)
	for _, c := range s.convs {
		if c.SenderID == userID || c.ReceiverID == userID {
			items = append(items, c)
		}
	}
	return &dto.PageResult[*dto.ConversationDTO]{Items: items, TotalItems: int64(len(items)), Page: page.Page, PageSize: page.PageSize, TotalPages: 1}, nil
}

func (s *fakeConversationService) GetConversation(_ context.Context, id uint64) (*dto.ConversationDTO, error) {
	conv, ok := s.convs[id]
	if !ok {
		return nil, service.ErrConversationNotFound
	}
	return conv, nil
}

func (s *fakeConversationService) UpdateLastMessage(_ context.Context, convID uint64, messageID string, preview string) error {
	conv, ok := s.convs[convID]
	if !ok {
		return service.ErrConversationNotFound
	}
	conv.LastMessageID = &messageID
	conv.LastMessage = preview
	s.updated = append(s.updated, messageID)
	return nil
}

type fakeMessageService struct {
	msgs     map[string]*dto.MessageDTO
	created  *dto.CreateMessageReq
	files    []string
	removed  []uint64
	readConv uint64
}

func (s *fakeMessageService) CreateMessage(_ context.Context, req *dto.CreateMessageReq, files []*service.UploadFile) (*dto.MessageDTO, error) {
	s.created = req
	for _, f := range files {
		body, _ := io.ReadAll(f.Reader)
		s.files = append(s.files, f.FileName+":"+string(body))
	}
	return &dto.MessageDTO{ID: "new", ConversationID: req.ConversationID, SenderID: req.SenderID, ReceiverID: req.ReceiverID}, nil
}

func (s *fakeMessageService) FindByID(_ context.Context, id string) (*dto.MessageDTO, error) {
	return s.msgs[id], nil
}

func (s *fakeMessageService) FindByConversationID(_ context.Context, convID uint64, page util.Page) (*dto.PageResult[*dto.MessageDTO], error) {
	items := make([]*dto.MessageDTO, 0)
	for _, m := range s.msgs {
		if m.ConversationID == convID {
			items = append(items, m)
		}
	}
	return &dto.PageResult[*dto.MessageDTO]{Items: items, TotalItems: int64(len(items)), Page: page.Page, PageSize: page.PageSize, TotalPages: 1}, nil
}

func (s *fakeMessageService) UpdateContent(_ context.Context, id string, text string, _ bool) (*dto.MessageDTO, error) {
	msg, ok := s.msgs[id]
	if !ok {
		return nil, service.ErrMessageNotFound
	}
	msg.Content = &dto.MessageContentDTO{OriginalText: text}
	return msg, nil
}

func (s *fakeMessageService) UpdateDeletionStatus(_ context.Context, id string, isDeleted bool) (*dto.MessageDTO, error) {
	msg, ok := s.msgs[id]
	if !ok {
		return nil, service.ErrMessageNotFound
	}
	msg.IsDeleted = isDeleted
	return msg, nil
}

func (s *fakeMessageService) RemoveAttachment(_ context.Context, mediaID uint64) error {
	s.removed = append(s.removed, mediaID)
	return nil
}

func (s *fakeMessageService) MarkConversationRead(_ context.Context, convID uint64, readerID uint64) (*dto.MessagesReadDTO, error) {
	s.readConv = convID
	return &dto.MessagesReadDTO{ConversationID: convID, ReaderID: readerID, Count: 2}, nil
}

type fakeAttachmentService struct {
	media map[uint64]*dto.MediaDTO
}

func (s *fakeAttachmentService) Upload(_ context.Context, uploaderID uint64, file *service.UploadFile) (*dto.MediaDTO, error) {
	return &dto.MediaDTO{ID: 7, FileName: file.FileName, Size: file.Size, UploaderID: uploaderID}, nil
}

func (s *fakeAttachmentService) UploadAll(context.Context, uint64, []*service.UploadFile) ([]*model.Media, error) {
	return nil, nil
}

func (s *fakeAttachmentService) Resolve(context.Context, []uint64) ([]*dto.MediaDTO, error) {
	return nil, nil
}

func (s *fakeAttachmentService) GetAttachment(_ context.Context, id uint64) (*dto.MediaDTO, error) {
	m, ok := s.media[id]
	if !ok {
		return nil, service.ErrAttachmentNotFound
	}
	return m, nil
}

func (s *fakeAttachmentService) RemoveAttachment(context.Context, uint64) error { return nil }

func (s *fakeAttachmentService) SweepOrphans(context.Context, int) (int, error) { return 0, nil }

type fakeBlockService struct {
	blocked map[uint64][]uint64
}

func (s *fakeBlockService) GetBlockedIDs(_ context.Context, userID uint64) ([]uint64, error) {
	return s.blocked[userID], nil
}

func (s *fakeBlockService) Block(_ context.Context, blockerID, blockedID uint64) error {
	if blockerID == blockedID {
		return service.ErrBlockSelf
	}
	s.blocked[blockerID] = append(s.blocked[blockerID], blockedID)
	return nil
}

func (s *fakeBlockService) Unblock(_ context.Context, blockerID, blockedID uint64) error {
	kept := s.blocked[blockerID][:0]
	for _, id := range s.blocked[blockerID] {
		if id != blockedID {
			kept = append(kept, id)
		}
	}
	s.blocked[blockerID] = kept
	return nil
}

func (s *fakeBlockService) InvalidateCache(context.Context, ...uint64) error { return nil }

// newTestRouter 以 userID 身份挂载路由，跳过 JWT
func newTestRouter(userID uint64, register func(r gin.IRoutes)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(consts.CtxUserID, userID)
		c.Next()
	})
	register(r)
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func perform(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, &body
}
