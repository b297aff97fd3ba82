package mongo

import (
	"Rendezvous/internal/pkg/util"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollection = "message"

var messageSortFields = map[string]string{
	util.SortCreatedAt: "created_at",
	util.SortUpdatedAt: "updated_at",
}

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Message, error)
	ListByConversation(ctx context.Context, convID uint64, page util.Page) ([]*Message, int64, error)
	UpdateContent(ctx context.Context, id string, content *MessageContent) (*Message, error)
	UpdateDeletion(ctx context.Context, id string, isDeleted bool) (*Message, error)
	RemoveAttachment(ctx context.Context, mediaID uint64) (int64, error)
	MarkRead(ctx context.Context, convID uint64, readerID uint64, readAt time.Time) (int64, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection(messageCollection),
	}
}

// SaveMessage 将消息存入 MongoDB，并回填 ObjectID
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.Attachments == nil {
		msg.Attachments = []uint64{}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.UpdatedAt = msg.CreatedAt
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetByID 精确查询，不存在或 ID 非法时返回 nil, nil
func (s *messageRepoImpl) GetByID(ctx context.Context, id string) (*Message, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var msg Message
	err = s.col.FindOne(ctx, bson.M{"_id": objectID}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetByIDs 批量查询，非法 ID 直接忽略
func (s *messageRepoImpl) GetByIDs(ctx context.Context, ids []string) ([]*Message, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return []*Message{}, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*Message, 0, len(objectIDs))
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByConversation 会话内分页查询，返回当页数据与总数
func (s *messageRepoImpl) ListByConversation(ctx context.Context, convID uint64, page util.Page) ([]*Message, int64, error) {
	filter := bson.M{"conversation_id": convID}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*Message{}, 0, nil
	}

	field, ok := messageSortFields[page.SortField]
	if !ok {
		field = "created_at"
	}
	order := 1
	if page.Desc {
		order = -1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.PageSize))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*Message, 0, page.PageSize)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// UpdateContent 覆盖消息体，返回更新后的文档
func (s *messageRepoImpl) UpdateContent(ctx context.Context, id string, content *MessageContent) (*Message, error) {
	return s.findOneAndSet(ctx, id, bson.M{"content": content})
}

// UpdateDeletion 软删除/恢复
func (s *messageRepoImpl) UpdateDeletion(ctx context.Context, id string, isDeleted bool) (*Message, error) {
	return s.findOneAndSet(ctx, id, bson.M{"is_deleted": isDeleted})
}

// RemoveAttachment 从所有引用该附件的消息中移除附件 ID
func (s *messageRepoImpl) RemoveAttachment(ctx context.Context, mediaID uint64) (int64, error) {
	filter := bson.M{"attachments": mediaID}
	update := bson.M{
		"$pull": bson.M{"attachments": mediaID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	result, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// MarkRead 将会话中发给 readerID 的未读消息置为已读
func (s *messageRepoImpl) MarkRead(ctx context.Context, convID uint64, readerID uint64, readAt time.Time) (int64, error) {
	filter := bson.M{
		"conversation_id": convID,
		"receiver_id":     readerID,
		"status":          bson.M{"$ne": MessageStatusRead},
	}
	update := bson.M{"$set": bson.M{
		"status":     MessageStatusRead,
		"read_at":    readAt,
		"updated_at": readAt,
	}}
	result, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (s *messageRepoImpl) findOneAndSet(ctx context.Context, id string, set bson.M) (*Message, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var msg Message
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}
