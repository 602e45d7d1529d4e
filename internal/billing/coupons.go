// Package billing covers coupon validation, redemption and trial status.
//
// Redemption does not trust a client-side existence check: the decisive
// write is a conditional insert against the unique (user_id, coupon_id)
// index, so two concurrent redemptions of the same code by the same user
// cannot both land.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/faro-app/faro/internal/logger"
	"github.com/faro-app/faro/internal/tables"
	"github.com/faro-app/faro/pkg/backend"
	"github.com/faro-app/faro/pkg/model"
)

// TrialPeriod is how long a fresh account runs before checkout.
const TrialPeriod = 14 * 24 * time.Hour

// FreeMonth is the extension granted by one free-month coupon.
const FreeMonth = 30 * 24 * time.Hour

// ErrAlreadyRedeemed reports a second redemption of the same coupon by the
// same user.
var ErrAlreadyRedeemed = errors.New("coupon already used")

// ErrExhausted reports a coupon past its global redemption cap.
var ErrExhausted = errors.New("coupon exhausted")

// Validation is the outcome of checking a code before checkout.
type Validation struct {
	Valid  bool
	Reason string
	Coupon *model.Coupon
}

// Service runs coupon and trial operations.
type Service struct {
	db          *sqlx.DB
	coupons     *backend.Resource[model.Coupon]
	userCoupons *backend.Resource[model.UserCoupon]
	now         func() time.Time
	log         *slog.Logger
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:          db,
		coupons:     backend.NewResource[model.Coupon](db, tables.Coupons),
		userCoupons: backend.NewResource[model.UserCoupon](db, tables.UserCoupons),
		now:         time.Now,
		log:         logger.Billing(),
	}
}

func (s *Service) findByCode(ctx context.Context, code string) (*model.Coupon, error) {
	rows, err := s.coupons.List(ctx, backend.Column[string]{Name: "code"}.Eq(strings.ToUpper(code)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ValidateCoupon checks a code for display before checkout. The answer is
// advisory: only Redeem decides, atomically, whether a redemption lands.
func (s *Service) ValidateCoupon(ctx context.Context, userID, code string) (*Validation, error) {
	coupon, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return &Validation{Reason: "unknown coupon code"}, nil
	}
	if coupon.IsExpired(s.now()) {
		return &Validation{Reason: "coupon expired", Coupon: coupon}, nil
	}
	if coupon.IsExhausted() {
		return &Validation{Reason: "coupon exhausted", Coupon: coupon}, nil
	}

	redeemed, err := s.userCoupons.List(ctx,
		backend.Column[string]{Name: "user_id"}.Eq(userID),
		backend.Column[string]{Name: "coupon_id"}.Eq(coupon.ID))
	if err != nil {
		return nil, err
	}
	if len(redeemed) > 0 {
		return &Validation{Reason: "coupon already used", Coupon: coupon}, nil
	}
	return &Validation{Valid: true, Coupon: coupon}, nil
}

// Redeem records one redemption. The insert carries the uniqueness
// decision; the use counter is bumped in the same transaction and enforces
// the global cap.
func (s *Service) Redeem(ctx context.Context, userID, code string) (*model.UserCoupon, error) {
	coupon, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, fmt.Errorf("billing: unknown coupon code %q", code)
	}
	if coupon.IsExpired(s.now()) {
		return nil, fmt.Errorf("billing: coupon %s expired", coupon.Code)
	}

	var redemption *model.UserCoupon
	err = backend.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.Insert("user_coupons").
			Columns("id", "user_id", "coupon_id", "code").
			Values(uuid.NewString(), userID, coupon.ID, coupon.Code).
			Suffix("ON CONFLICT (user_id, coupon_id) DO NOTHING RETURNING id, user_id, coupon_id, code, redeemed_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		rows, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return ErrAlreadyRedeemed
		}
		var rec model.UserCoupon
		if err := rows.StructScan(&rec); err != nil {
			return err
		}
		rows.Close()
		redemption = &rec

		res, err := tx.ExecContext(ctx,
			`UPDATE coupons SET current_uses = current_uses + 1
			 WHERE id = $1 AND (max_uses <= 0 OR current_uses < max_uses)`,
			coupon.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrExhausted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("coupon redeemed", "user_id", userID, "code", coupon.Code)
	return redemption, nil
}

// Redemptions returns the user's redeemed coupons, newest first.
func (s *Service) Redemptions(ctx context.Context, userID string) ([]model.UserCoupon, error) {
	return s.userCoupons.List(ctx, backend.Column[string]{Name: "user_id"}.Eq(userID))
}

// Trial describes where an account stands relative to its trial window.
type Trial struct {
	EndsAt    time.Time
	Active    bool
	Permanent bool
}

// TrialStatus computes the trial window from the account age and redeemed
// coupons: 14 days base, 30 more per free-month coupon, unlimited with a
// permanent coupon. Pure; redemptions must be joined with their coupons by
// the caller.
func TrialStatus(user *model.User, coupons []model.Coupon, now time.Time) Trial {
	ends := user.CreatedAt.Add(TrialPeriod)
	for _, c := range coupons {
		if c.IsPermanent {
			return Trial{Permanent: true, Active: true}
		}
		if c.IsFreeMonth {
			ends = ends.Add(FreeMonth)
		}
	}
	return Trial{EndsAt: ends, Active: now.Before(ends)}
}

// Discount applies a coupon's percentage to a price in cents.
func Discount(coupon *model.Coupon, cents int64) int64 {
	if coupon == nil || coupon.DiscountPercent <= 0 {
		return cents
	}
	d := cents * int64(coupon.DiscountPercent) / 100
	if d > cents {
		return 0
	}
	return cents - d
}
