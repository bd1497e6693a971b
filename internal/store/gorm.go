package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-inventory-backend/internal/model"
)

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store. The schema must already exist (see db.Migrate).
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

// RecordLot inserts the lot or overwrites the one already stored under the same uid.
func (s *gormStore) RecordLot(ctx context.Context, in RecordLotParams) error {
	in, err := validateLot(in)
	if err != nil {
		return err
	}

	lot := model.Lot{
		UID:               in.UID,
		LotCode:           in.LotCode,
		Name:              in.Name,
		RemainingQuantity: in.Quantity,
		ReceivedAt:        s.now().UTC(),
		Status:            model.LotInStock,
		ReceivedBy:        in.ReceivedBy,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lot_code", "name", "remaining_quantity", "received_at", "status", "received_by", "last_issued_by",
		}),
	}).Create(&lot).Error; err != nil {
		return fmt.Errorf("record lot %s: %w", in.UID, err)
	}
	return nil
}

// AdjustLotQuantity decrements in a single UPDATE so concurrent stock-outs
// cannot lose updates, then reads back the remaining quantity.
func (s *gormStore) AdjustLotQuantity(ctx context.Context, uid string, qty float64, issuedBy string) (float64, error) {
	uid, issuedBy, err := validateAdjust(uid, qty, issuedBy)
	if err != nil {
		return 0, err
	}

	var remaining float64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Lot{}).
			Where("uid = ?", uid).
			Updates(map[string]any{
				"remaining_quantity": gorm.Expr("CASE WHEN remaining_quantity - ? > 0 THEN remaining_quantity - ? ELSE 0 END", qty, qty),
				"status":             gorm.Expr("CASE WHEN remaining_quantity - ? > 0 THEN ? ELSE ? END", qty, string(model.LotInStock), string(model.LotDepleted)),
				"last_issued_by":     issuedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		var lot model.Lot
		if err := tx.Select("remaining_quantity").Where("uid = ?", uid).Take(&lot).Error; err != nil {
			return err
		}
		remaining = lot.RemainingQuantity
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust lot %s: %w", uid, err)
	}
	return remaining, nil
}

func (s *gormStore) ListLots(ctx context.Context) ([]model.Lot, error) {
	var lots []model.Lot
	if err := s.db.WithContext(ctx).Order("uid").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

func (s *gormStore) AppendHardwareLog(ctx context.Context, uid string, value float64) (model.HardwareLog, error) {
	uid, err := validateHardwareLog(uid, value)
	if err != nil {
		return model.HardwareLog{}, err
	}

	entry := model.HardwareLog{
		UID:       uid,
		Value:     value,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return model.HardwareLog{}, fmt.Errorf("append hardware log: %w", err)
	}
	return entry, nil
}

func (s *gormStore) ListHardwareLogs(ctx context.Context, limit int) ([]model.HardwareLog, error) {
	var logs []model.HardwareLog
	if err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(clamp(limit)).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list hardware logs: %w", err)
	}
	return logs, nil
}
