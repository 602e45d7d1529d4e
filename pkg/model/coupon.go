package model

import "time"

// Coupon is a redeemable discount code.
type Coupon struct {
	ID              string     `db:"id" json:"id"`
	Code            string     `db:"code" json:"code"`
	DiscountPercent int        `db:"discount_percent" json:"discount_percent"`
	IsFreeMonth     bool       `db:"is_free_month" json:"is_free_month"`
	IsPermanent     bool       `db:"is_permanent" json:"is_permanent"`
	MaxUses         int        `db:"max_uses" json:"max_uses"`
	CurrentUses     int        `db:"current_uses" json:"current_uses"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// UserCoupon records one redemption. The (user_id, coupon_id) pair is unique
// at the storage layer, which is what makes redemption race-free.
type UserCoupon struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CouponID   string    `db:"coupon_id" json:"coupon_id"`
	Code       string    `db:"code" json:"code"`
	RedeemedAt time.Time `db:"redeemed_at" json:"redeemed_at"`
}

// IsExpired reports whether the coupon is past its expiry date.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// IsExhausted reports whether the coupon hit its redemption cap.
// MaxUses <= 0 means unlimited.
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses > 0 && c.CurrentUses >= c.MaxUses
}
