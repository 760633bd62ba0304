package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

type ThreadRepo interface {
	// OpenOrCreate resolves the context tuple to exactly one thread.
	// Concurrent calls with the same tuple race on the unique index; the
	// loser's insert is a no-op and both read back the same row. The bool
	// reports whether this call created the thread.
	OpenOrCreate(dbc dbctx.Context, row *domain.Thread) (*domain.Thread, bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Thread, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Thread, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.Thread, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type threadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThreadRepo(db *gorm.DB, log *logger.Logger) ThreadRepo {
	return &threadRepo{db: db, log: log.With("repo", "ThreadRepo")}
}

func (r *threadRepo) OpenOrCreate(dbc dbctx.Context, row *domain.Thread) (*domain.Thread, bool, error) {
	if row == nil {
		return nil, false, fmt.Errorf("missing thread row")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}

	res := txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "context_type"},
				{Name: "context_id"},
				{Name: "party_a"},
				{Name: "party_b"},
			},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0
	if created {
		return row, true, nil
	}

	// Lost the race (or the thread already existed): read the winner back.
	var out domain.Thread
	if err := txx.WithContext(dbc.Ctx).
		Where("context_type = ? AND context_id = ? AND party_a = ? AND party_b = ?",
			row.ContextType, row.ContextID, row.PartyA, row.PartyB,
		).
		Take(&out).Error; err != nil {
		return nil, false, err
	}
	return &out, false, nil
}

func (r *threadRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Thread, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.Thread
	if err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *threadRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*domain.Thread, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Thread
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Thread{}).
		Where("party_a = ? OR party_b = ? OR support_user = ?", userID, userID, userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *threadRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.Thread, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out domain.Thread
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *threadRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&domain.Thread{}).
		Where("id = ?", id).
		Updates(updates).Error
}
