package chat

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

type TypingRepo interface {
	// Upsert is last-write-wins per (thread_id, user_id).
	Upsert(dbc dbctx.Context, row *domain.TypingStatus) error
	ListByThread(dbc dbctx.Context, threadID uuid.UUID) ([]*domain.TypingStatus, error)
}

type typingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTypingRepo(db *gorm.DB, log *logger.Logger) TypingRepo {
	return &typingRepo{db: db, log: log.With("repo", "TypingRepo")}
}

func (r *typingRepo) Upsert(dbc dbctx.Context, row *domain.TypingStatus) error {
	if row == nil || row.ThreadID == uuid.Nil || row.UserID == uuid.Nil {
		return fmt.Errorf("missing typing row")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_typing", "updated_at"}),
		}).
		Create(row).Error
}

func (r *typingRepo) ListByThread(dbc dbctx.Context, threadID uuid.UUID) ([]*domain.TypingStatus, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.TypingStatus
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.TypingStatus{}).
		Where("thread_id = ?", threadID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
