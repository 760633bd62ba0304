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

type ReadMarkerRepo interface {
	// Advance moves the marker forward, never backward. An at value older
	// than the stored marker is a no-op.
	Advance(dbc dbctx.Context, threadID, userID uuid.UUID, at time.Time) error
	Get(dbc dbctx.Context, threadID, userID uuid.UUID) (*domain.ReadMarker, error)
}

type readMarkerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadMarkerRepo(db *gorm.DB, log *logger.Logger) ReadMarkerRepo {
	return &readMarkerRepo{db: db, log: log.With("repo", "ReadMarkerRepo")}
}

func (r *readMarkerRepo) Advance(dbc dbctx.Context, threadID, userID uuid.UUID, at time.Time) error {
	if threadID == uuid.Nil || userID == uuid.Nil {
		return fmt.Errorf("missing thread_id or user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}

	res := txx.WithContext(dbc.Ctx).
		Model(&domain.ReadMarker{}).
		Where("thread_id = ? AND user_id = ? AND last_read_at < ?", threadID, userID, at).
		Update("last_read_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Either no row yet or the stored marker is already newer. Insert-if-absent
	// covers the first case; conflict means the monotonic guard already held.
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&domain.ReadMarker{ThreadID: threadID, UserID: userID, LastReadAt: at}).Error
}

func (r *readMarkerRepo) Get(dbc dbctx.Context, threadID, userID uuid.UUID) (*domain.ReadMarker, error) {
	if threadID == uuid.Nil || userID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id or user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out domain.ReadMarker
	if err := txx.WithContext(dbc.Ctx).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
