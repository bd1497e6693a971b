package model

import "time"

// LotStatus is the stock state of a lot as shown to clients.
type LotStatus string

const (
	LotInStock  LotStatus = "tồn kho"
	LotDepleted LotStatus = "đã xuất hết"
)

// Lot represents an inventory batch identified by the tag scanned at stock-in.
type Lot struct {
	UID               string    `gorm:"primaryKey;size:128" json:"uid"`
	LotCode           string    `gorm:"size:128;not null" json:"ma_lo"`
	Name              string    `gorm:"size:256;not null" json:"ten"`
	RemainingQuantity float64   `gorm:"type:double precision;not null" json:"so_luong_con_lai"`
	ReceivedAt        time.Time `gorm:"not null" json:"ngay_nhap"`
	Status            LotStatus `gorm:"size:32;not null" json:"trang_thai"`
	ReceivedBy        string    `gorm:"size:128" json:"nguoi_nhap"`
	LastIssuedBy      string    `gorm:"size:128" json:"nguoi_xuat_cuoi,omitempty"`
}

// StatusFor derives the lot status from a remaining quantity.
func StatusFor(remaining float64) LotStatus {
	if remaining <= 0 {
		return LotDepleted
	}
	return LotInStock
}
