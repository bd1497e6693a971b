package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"smart-inventory-backend/config"
	"smart-inventory-backend/internal/db"
	"smart-inventory-backend/internal/model"
)

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no lot exists for the given uid.
	ErrNotFound = errors.New("lot not found")
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500

	unknownActor = "unknown"
)

// Store defines the stock and hardware-log operations. Both implementations
// must behave identically; callers never need to know which one is active.
type Store interface {
	RecordLot(ctx context.Context, in RecordLotParams) error
	AdjustLotQuantity(ctx context.Context, uid string, qty float64, issuedBy string) (float64, error)
	ListLots(ctx context.Context) ([]model.Lot, error)
	AppendHardwareLog(ctx context.Context, uid string, value float64) (model.HardwareLog, error)
	ListHardwareLogs(ctx context.Context, limit int) ([]model.HardwareLog, error)
}

// RecordLotParams carries the fields of a stock-in.
type RecordLotParams struct {
	UID        string
	LotCode    string
	Name       string
	Quantity   float64
	ReceivedBy string
}

// Open selects the backing store once, at startup. An empty DSN means the
// in-memory store; otherwise a failure to reach the database is returned as is.
func Open(cfg *config.DatabaseConfig) (Store, error) {
	if cfg.DSN == "" {
		log.Println("No DATABASE_URL; using in-memory store (data is reset on restart)")
		return NewMemoryStore(), nil
	}

	gormDB, err := db.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("open persistent store: %w", err)
	}
	log.Println("DATABASE_URL detected; using PostgreSQL store")
	return NewGormStore(gormDB), nil
}

// ClampLimit parses a raw limit query value. Missing or non-numeric values
// give DefaultLogLimit; everything else is clamped into [1, MaxLogLimit].
func ClampLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLogLimit
	}
	return clamp(n)
}

func clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLogLimit {
		return MaxLogLimit
	}
	return n
}

func validateLot(in RecordLotParams) (RecordLotParams, error) {
	in.UID = strings.TrimSpace(in.UID)
	in.LotCode = strings.TrimSpace(in.LotCode)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.UID == "":
		return in, fmt.Errorf("%w: uid is required", ErrValidation)
	case in.LotCode == "":
		return in, fmt.Errorf("%w: lot code is required", ErrValidation)
	case in.Name == "":
		return in, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := positive("quantity", in.Quantity); err != nil {
		return in, err
	}
	in.ReceivedBy = actorOrUnknown(in.ReceivedBy)
	return in, nil
}

func validateAdjust(uid string, qty float64, issuedBy string) (string, string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", "", fmt.Errorf("%w: uid is required", ErrValidation)
	}
	if err := positive("qty", qty); err != nil {
		return "", "", err
	}
	return uid, actorOrUnknown(issuedBy), nil
}

func validateHardwareLog(uid string, value float64) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", fmt.Errorf("%w: uid is required", ErrValidation)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", fmt.Errorf("%w: value must be a finite number", ErrValidation)
	}
	return uid, nil
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number", ErrValidation, field)
	}
	return nil
}

func actorOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknownActor
	}
	return s
}

// remainingAfter floors the decrement at zero.
func remainingAfter(current, qty float64) float64 {
	return math.Max(0, current-qty)
}
