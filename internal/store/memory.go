package store

import (
	"context"
	"sync"
	"time"

	"smart-inventory-backend/internal/model"
)

// memoryStore keeps all state in process memory. It is reset on restart.
type memoryStore struct {
	mu     sync.Mutex
	lots   map[string]*model.Lot
	order  []string // lot uids in first-insertion order
	logs   []model.HardwareLog
	nextID int64
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{
		lots:   make(map[string]*model.Lot),
		nextID: 1,
		now:    now,
	}
}

func (s *memoryStore) RecordLot(ctx context.Context, in RecordLotParams) error {
	in, err := validateLot(in)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lots[in.UID]; !exists {
		s.order = append(s.order, in.UID)
	}
	s.lots[in.UID] = &model.Lot{
		UID:               in.UID,
		LotCode:           in.LotCode,
		Name:              in.Name,
		RemainingQuantity: in.Quantity,
		ReceivedAt:        s.now().UTC(),
		Status:            model.LotInStock,
		ReceivedBy:        in.ReceivedBy,
	}
	return nil
}

func (s *memoryStore) AdjustLotQuantity(ctx context.Context, uid string, qty float64, issuedBy string) (float64, error) {
	uid, issuedBy, err := validateAdjust(uid, qty, issuedBy)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[uid]
	if !ok {
		return 0, ErrNotFound
	}
	lot.RemainingQuantity = remainingAfter(lot.RemainingQuantity, qty)
	lot.Status = model.StatusFor(lot.RemainingQuantity)
	lot.LastIssuedBy = issuedBy
	return lot.RemainingQuantity, nil
}

func (s *memoryStore) ListLots(ctx context.Context) ([]model.Lot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lots := make([]model.Lot, 0, len(s.order))
	for _, uid := range s.order {
		lots = append(lots, *s.lots[uid])
	}
	return lots, nil
}

func (s *memoryStore) AppendHardwareLog(ctx context.Context, uid string, value float64) (model.HardwareLog, error) {
	uid, err := validateHardwareLog(uid, value)
	if err != nil {
		return model.HardwareLog{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.HardwareLog{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.HardwareLog{
		ID:        s.nextID,
		UID:       uid,
		Value:     value,
		CreatedAt: s.now().UTC(),
	}
	s.nextID++
	s.logs = append(s.logs, entry)
	return entry, nil
}

func (s *memoryStore) ListHardwareLogs(ctx context.Context, limit int) ([]model.HardwareLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = clamp(limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(limit, len(s.logs))
	out := make([]model.HardwareLog, 0, n)
	for i := len(s.logs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}
