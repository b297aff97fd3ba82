package service

import (
	"Rendezvous/internal/api/dto"
	"Rendezvous/internal/model"
	"Rendezvous/internal/pkg/mongo"
	"Rendezvous/internal/pkg/translate"
	"Rendezvous/internal/pkg/util"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) add(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

// ---- conversation repo ----

type fakeConvRepo struct {
	mu     sync.Mutex
	nextID uint64
	convs  map[uint64]*model.Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[uint64]*model.Conversation)}
}

func (r *fakeConvRepo) CreateConversation(_ context.Context, conv *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv.PeerKey = model.BuildPeerKey(conv.SenderID, conv.ReceiverID)
	for _, c := range r.convs {
		if c.PeerKey == conv.PeerKey {
			return errors.New("duplicate")
		}
	}
	r.nextID++
	conv.ID = r.nextID
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	cp := *conv
	r.convs[conv.ID] = &cp
	return nil
}

func (r *fakeConvRepo) GetConversation(_ context.Context, id uint64) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConvRepo) GetConversationByPair(_ context.Context, a, b uint64) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if (c.SenderID == a && c.ReceiverID == b) || (c.SenderID == b && c.ReceiverID == a) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeConvRepo) ListByUser(_ context.Context, userID uint64, page util.Page) ([]*model.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*model.Conversation, 0)
	for _, c := range r.convs {
		if c.HasMember(userID) {
			cp := *c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PageSize
	if page.PageSize <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeConvRepo) UpdateLastMessage(_ context.Context, convID uint64, messageID string, preview string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[convID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	id := messageID
	c.LastMessageID = &id
	c.LastMessage = preview
	c.UpdatedAt = time.Now()
	return nil
}

// ---- message repo ----

type fakeMessageRepo struct {
	mu       sync.Mutex
	msgs     map[string]*mongo.Message
	order    []string
	saveErr  error
	recorder *recorder
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*mongo.Message)}
}

func cloneMessage(m *mongo.Message) *mongo.Message {
	cp := *m
	cp.Attachments = append([]uint64{}, m.Attachments...)
	if m.Content != nil {
		content := *m.Content
		cp.Content = &content
	}
	return &cp
}

func (r *fakeMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.Attachments == nil {
		msg.Attachments = []uint64{}
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	r.msgs[msg.Hex()] = cloneMessage(msg)
	r.order = append(r.order, msg.Hex())
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id string) (*mongo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return nil, nil
	}
	return cloneMessage(m), nil
}

func (r *fakeMessageRepo) GetByIDs(_ context.Context, ids []string) ([]*mongo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*mongo.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.msgs[id]; ok {
			res = append(res, cloneMessage(m))
		}
	}
	return res, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, convID uint64, page util.Page) ([]*mongo.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*mongo.Message, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		m, ok := r.msgs[r.order[i]]
		if ok && m.ConversationID == convID {
			res = append(res, cloneMessage(m))
		}
	}
	total := int64(len(res))
	start := page.Offset()
	if start > len(res) {
		start = len(res)
	}
	end := start + page.PageSize
	if page.PageSize <= 0 || end > len(res) {
		end = len(res)
	}
	return res[start:end], total, nil
}

func (r *fakeMessageRepo) update(id string, fn func(m *mongo.Message)) *mongo.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return nil
	}
	fn(m)
	m.UpdatedAt = time.Now()
	return cloneMessage(m)
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, id string, content *mongo.MessageContent) (*mongo.Message, error) {
	return r.update(id, func(m *mongo.Message) { m.Content = content }), nil
}

func (r *fakeMessageRepo) UpdateDeletion(_ context.Context, id string, isDeleted bool) (*mongo.Message, error) {
	return r.update(id, func(m *mongo.Message) { m.IsDeleted = isDeleted }), nil
}

func (r *fakeMessageRepo) RemoveAttachment(_ context.Context, mediaID uint64) (int64, error) {
	if r.recorder != nil {
		r.recorder.add("scrub")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		kept := m.Attachments[:0]
		removed := false
		for _, id := range m.Attachments {
			if id == mediaID {
				removed = true
				continue
			}
			kept = append(kept, id)
		}
		m.Attachments = kept
		if removed {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, convID uint64, readerID uint64, readAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.ConversationID == convID && m.ReceiverID == readerID && m.Status != mongo.MessageStatusRead {
			at := readAt
			m.Status = mongo.MessageStatusRead
			m.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// ---- media repo ----

type fakeMediaRepo struct {
	mu      sync.Mutex
	nextID  uint64
	medias  map[uint64]*model.Media
	markErr error
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{medias: make(map[uint64]*model.Media)}
}

func (r *fakeMediaRepo) CreateMedia(_ context.Context, media *model.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	media.ID = r.nextID
	if media.Status == 0 {
		media.Status = model.MediaStatusActive
	}
	cp := *media
	r.medias[media.ID] = &cp
	return nil
}

func (r *fakeMediaRepo) GetMediaByID(_ context.Context, id uint64) (*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.medias[id]
	if !ok || m.Status != model.MediaStatusActive {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMediaRepo) GetMediaByIDs(_ context.Context, ids []uint64) ([]*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*model.Media, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.medias[id]; ok && m.Status == model.MediaStatusActive {
			cp := *m
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r *fakeMediaRepo) MarkOrphaned(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	if m, ok := r.medias[id]; ok {
		m.Status = model.MediaStatusOrphaned
	}
	return nil
}

func (r *fakeMediaRepo) ListOrphaned(_ context.Context, limit int) ([]*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*model.Media, 0)
	for _, m := range r.medias {
		if m.Status == model.MediaStatusOrphaned && len(res) < limit {
			cp := *m
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r *fakeMediaRepo) DeleteMedia(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.medias, id)
	return nil
}

func (r *fakeMediaRepo) exists(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.medias[id]
	return ok
}

// ---- blob store ----

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	removeErr error
	failName  string
	recorder  *recorder
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (b *fakeBlobStore) Put(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	if b.putErr != nil {
		return "", b.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if b.failName != "" && string(data) == b.failName {
		return "", errors.New("upload rejected")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectName] = data
	return objectName, nil
}

func (b *fakeBlobStore) Remove(_ context.Context, objectName string) error {
	if b.recorder != nil {
		b.recorder.add("blob")
	}
	if b.removeErr != nil {
		return b.removeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectName)
	return nil
}

func (b *fakeBlobStore) URL(objectName string) string {
	return "https://media.test/" + objectName
}

func (b *fakeBlobStore) has(objectName string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[objectName]
	return ok
}

func (b *fakeBlobStore) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// ---- translation engine ----

type fakeEngine struct {
	result *translate.Result
	err    error
	calls  int
}

func (e *fakeEngine) Translate(_ context.Context, _ string) (*translate.Result, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

// ---- user / block services ----

type fakeUserService struct{}

func (fakeUserService) GetProfilesByIDs(_ context.Context, ids []uint64) ([]*dto.UserProfileDTO, error) {
	res := make([]*dto.UserProfileDTO, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		res = append(res, &dto.UserProfileDTO{UserID: id, Nickname: "user"})
	}
	return res, nil
}

func (fakeUserService) InvalidateProfile(context.Context, ...uint64) error { return nil }

type fakeBlockService struct {
	blocked map[uint64][]uint64
}

func (s *fakeBlockService) GetBlockedIDs(_ context.Context, userID uint64) ([]uint64, error) {
	return s.blocked[userID], nil
}

func (s *fakeBlockService) Block(_ context.Context, blockerID, blockedID uint64) error {
	s.blocked[blockerID] = append(s.blocked[blockerID], blockedID)
	return nil
}

func (s *fakeBlockService) Unblock(context.Context, uint64, uint64) error { return nil }

func (s *fakeBlockService) InvalidateCache(context.Context, ...uint64) error { return nil }

// ---- wiring ----

type testEnv struct {
	convRepo     *fakeConvRepo
	messageRepo  *fakeMessageRepo
	mediaRepo    *fakeMediaRepo
	blobs        *fakeBlobStore
	engine       *fakeEngine
	blocks       *fakeBlockService
	attachments  AttachmentService
	conversation ConversationService
	messages     MessageService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		convRepo:    newFakeConvRepo(),
		messageRepo: newFakeMessageRepo(),
		mediaRepo:   newFakeMediaRepo(),
		blobs:       newFakeBlobStore(),
		engine: &fakeEngine{result: &translate.Result{
			DetectedLanguage: "fr", En: "hello", Fr: "bonjour", Es: "hola",
		}},
		blocks: &fakeBlockService{blocked: make(map[uint64][]uint64)},
	}
	env.attachments = NewAttachmentService(env.mediaRepo, env.messageRepo, env.blobs)
	env.conversation = NewConversationService(env.convRepo, env.messageRepo, fakeUserService{}, env.blocks, env.attachments)
	env.messages = NewMessageService(env.messageRepo, env.convRepo, env.conversation, env.attachments, NewContentBuilder(env.engine))
	return env
}
