package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Message, error)
	// ListByThread returns a reverse-chronological page (newest first) by seq.
	ListByThread(dbc dbctx.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
	// CountUnreadAfter counts messages newer than after and not authored by
	// userID (system entries count as unread).
	CountUnreadAfter(dbc dbctx.Context, threadID, userID uuid.UUID, after time.Time) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error) {
	if len(rows) == 0 {
		return []*domain.Message{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Message, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Message
	if err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *messageRepo) ListByThread(dbc dbctx.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Message
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("thread_id = ?", threadID).
		Order("seq DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *messageRepo) CountUnreadAfter(dbc dbctx.Context, threadID, userID uuid.UUID, after time.Time) (int64, error) {
	if threadID == uuid.Nil || userID == uuid.Nil {
		return 0, fmt.Errorf("missing thread_id or user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("thread_id = ? AND created_at > ?", threadID, after).
		Where("sender_id IS NULL OR sender_id <> ?", userID).
		Where("is_deleted = ?", false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
