package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/domain/chat"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/dbctx"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/requestdata"
)

func testLogger(t interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func dbcOf(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:    userID,
		SessionID: uuid.New(),
	})
}

// fakeTxRunner executes the closure immediately with no real transaction.
type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	return fn(dbctx.Context{Ctx: ctx})
}

type fakeThreadRepo struct {
	threads map[uuid.UUID]*chat.Thread
	byTuple map[string]uuid.UUID
	locks   int
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{
		threads: make(map[uuid.UUID]*chat.Thread),
		byTuple: make(map[string]uuid.UUID),
	}
}

func tupleKey(t *chat.Thread) string {
	return t.ContextType + "|" + t.ContextID + "|" + t.PartyA.String() + "|" + t.PartyB.String()
}

func (r *fakeThreadRepo) put(t *chat.Thread) {
	r.threads[t.ID] = t
	r.byTuple[tupleKey(t)] = t.ID
}

func (r *fakeThreadRepo) OpenOrCreate(dbc dbctx.Context, row *chat.Thread) (*chat.Thread, bool, error) {
	if id, ok := r.byTuple[tupleKey(row)]; ok {
		return r.threads[id], false, nil
	}
	cp := *row
	r.put(&cp)
	return &cp, true, nil
}

// GetByID returns a detached copy, like a real database read would.
func (r *fakeThreadRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*chat.Thread, error) {
	t, ok := r.threads[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeThreadRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*chat.Thread, error) {
	var out []*chat.Thread
	for _, t := range r.threads {
		if t.Participant(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeThreadRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*chat.Thread, error) {
	r.locks++
	return r.GetByID(dbc, id)
}

func (r *fakeThreadRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t, ok := r.threads[id]
	if !ok {
		return chat.ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		t.Status = v.(string)
	}
	if v, ok := updates["next_seq"]; ok {
		t.NextSeq = v.(int64)
	}
	if v, ok := updates["last_message_at"]; ok {
		t.LastMessageAt = v.(time.Time)
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeMessageRepo struct {
	messages map[uuid.UUID]*chat.Message
	created  []*chat.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]*chat.Message)}
}

func (r *fakeMessageRepo) Create(dbc dbctx.Context, rows []*chat.Message) ([]*chat.Message, error) {
	for _, m := range rows {
		r.messages[m.ID] = m
		r.created = append(r.created, m)
	}
	return rows, nil
}

func (r *fakeMessageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*chat.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) ListByThread(dbc dbctx.Context, threadID uuid.UUID, limit, offset int) ([]*chat.Message, error) {
	var out []*chat.Message
	for _, m := range r.created {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	m, ok := r.messages[id]
	if !ok {
		return chat.ErrNotFound
	}
	m.IsDeleted = true
	return nil
}

func (r *fakeMessageRepo) CountUnreadAfter(dbc dbctx.Context, threadID, userID uuid.UUID, after time.Time) (int64, error) {
	var n int64
	for _, m := range r.created {
		if m.ThreadID != threadID || m.IsDeleted {
			continue
		}
		if m.SenderID != nil && *m.SenderID == userID {
			continue
		}
		if m.CreatedAt.After(after) {
			n++
		}
	}
	return n, nil
}

type fakeTypingRepo struct {
	rows map[string]*chat.TypingStatus
}

func newFakeTypingRepo() *fakeTypingRepo {
	return &fakeTypingRepo{rows: make(map[string]*chat.TypingStatus)}
}

func (r *fakeTypingRepo) Upsert(dbc dbctx.Context, row *chat.TypingStatus) error {
	r.rows[row.ThreadID.String()+"|"+row.UserID.String()] = row
	return nil
}

func (r *fakeTypingRepo) ListByThread(dbc dbctx.Context, threadID uuid.UUID) ([]*chat.TypingStatus, error) {
	var out []*chat.TypingStatus
	for _, row := range r.rows {
		if row.ThreadID == threadID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeMarkerRepo struct {
	rows map[string]*chat.ReadMarker
}

func newFakeMarkerRepo() *fakeMarkerRepo {
	return &fakeMarkerRepo{rows: make(map[string]*chat.ReadMarker)}
}

func (r *fakeMarkerRepo) Advance(dbc dbctx.Context, threadID, userID uuid.UUID, at time.Time) error {
	key := threadID.String() + "|" + userID.String()
	if existing, ok := r.rows[key]; ok {
		if at.After(existing.LastReadAt) {
			existing.LastReadAt = at
		}
		return nil
	}
	r.rows[key] = &chat.ReadMarker{ThreadID: threadID, UserID: userID, LastReadAt: at}
	return nil
}

func (r *fakeMarkerRepo) Get(dbc dbctx.Context, threadID, userID uuid.UUID) (*chat.ReadMarker, error) {
	return r.rows[threadID.String()+"|"+userID.String()], nil
}

type notifierCall struct {
	kind     string
	threadID uuid.UUID
	msg      *chat.Message
	reason   string
}

type spyNotifier struct {
	calls []notifierCall
}

func (n *spyNotifier) MessageCreated(threadID uuid.UUID, msg *chat.Message) {
	n.calls = append(n.calls, notifierCall{kind: "message_created", threadID: threadID, msg: msg})
}

func (n *spyNotifier) ThreadUpdated(thread *chat.Thread, reason string) {
	n.calls = append(n.calls, notifierCall{kind: "thread_updated", threadID: thread.ID, reason: reason})
}

func (n *spyNotifier) TypingChanged(threadID uuid.UUID, row *chat.TypingStatus) {
	n.calls = append(n.calls, notifierCall{kind: "typing_changed", threadID: threadID})
}

type bridgeCall struct {
	kind  string
	actor uuid.UUID
}

type spyBridge struct {
	calls []bridgeCall
}

func (b *spyBridge) MessageCreated(ctx context.Context, thread *chat.Thread, msg *chat.Message, actor uuid.UUID) {
	b.calls = append(b.calls, bridgeCall{kind: "message_created", actor: actor})
}

func (b *spyBridge) StatusChanged(ctx context.Context, thread *chat.Thread, actor uuid.UUID) {
	b.calls = append(b.calls, bridgeCall{kind: "status_changed", actor: actor})
}

func (b *spyBridge) SupportRequested(ctx context.Context, thread *chat.Thread, actor uuid.UUID) {
	b.calls = append(b.calls, bridgeCall{kind: "support_requested", actor: actor})
}

// activeThread seeds a thread between two parties for tests.
func activeThread(repo *fakeThreadRepo, partyA, partyB uuid.UUID, contextType string) *chat.Thread {
	t := &chat.Thread{
		ID:            uuid.New(),
		ContextType:   contextType,
		ContextID:     "ORD-1001",
		ContextTitle:  "Order #1001",
		PartyA:        partyA,
		PartyB:        partyB,
		Status:        chat.StatusActive,
		LastMessageAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt:     time.Now().UTC().Add(-time.Minute),
		UpdatedAt:     time.Now().UTC().Add(-time.Minute),
	}
	repo.put(t)
	return t
}
