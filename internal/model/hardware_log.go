package model

import "time"

// HardwareLog is one telemetry sample reported by a device.
type HardwareLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UID       string    `gorm:"type:text;not null;index" json:"uid"`
	Value     float64   `gorm:"type:double precision;not null" json:"value"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
