package services

import (
	"context"
	"math"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/logger"
	"github.com/bistroboss/bistro/pkg/payment"
)

// AdminStats is the dashboard summary. Counts come from collection metadata
// and may lag; Revenue is exact.
type AdminStats struct {
	Revenue   float64 `json:"revenue"`
	Customers int64   `json:"customers"`
	Products  int64   `json:"products"`
	Orders    int64   `json:"orders"`
}

// OrderRow is one menu reference of one payment, joined with the menu.
// MenuItem is nil when the item no longer exists.
type OrderRow struct {
	PaymentID     string           `json:"paymentId"`
	Email         string           `json:"email"`
	TransactionID string           `json:"transactionId"`
	MenuItemID    string           `json:"menuItemId"`
	MenuItem      *models.MenuItem `json:"menuItem"`
}

type StatsService struct {
	users    *repositories.UserRepository
	menu     *repositories.MenuRepository
	payments *repositories.PaymentRepository
}

func NewStatsService(users *repositories.UserRepository, menu *repositories.MenuRepository, payments *repositories.PaymentRepository) *StatsService {
	return &StatsService{users: users, menu: menu, payments: payments}
}

func (s *StatsService) AdminStats(ctx context.Context) (AdminStats, error) {
	var (
		st  AdminStats
		err error
	)
	if st.Customers, err = s.users.Count(ctx); err != nil {
		return AdminStats{}, apperr.Internal(err)
	}
	if st.Products, err = s.menu.Count(ctx); err != nil {
		return AdminStats{}, apperr.Internal(err)
	}
	if st.Orders, err = s.payments.Count(ctx); err != nil {
		return AdminStats{}, apperr.Internal(err)
	}

	all, err := s.payments.All(ctx)
	if err != nil {
		return AdminStats{}, apperr.Internal(err)
	}
	// summed in cents so 0.1+0.2 stays 0.3
	var cents int64
	for _, p := range all {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			logger.WithCtx(ctx).Warn("payment left out of revenue", "payment_id", p.ID.Hex(), "price", p.Price)
			continue
		}
		cents += int64(math.Round(p.Price * 100))
	}
	st.Revenue = payment.FromMinorUnits(cents)
	return st, nil
}

// OrderStats expands every payment into one row per referenced menu item.
func (s *StatsService) OrderStats(ctx context.Context) ([]OrderRow, error) {
	all, err := s.payments.All(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	items, err := s.menu.All(ctx, "")
	if err != nil {
		return nil, apperr.Internal(err)
	}

	byID := make(map[string]models.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID.Hex()] = it
	}

	rows := []OrderRow{}
	for _, p := range all {
		for _, ref := range p.MenuItemIDs {
			row := OrderRow{
				PaymentID:     p.ID.Hex(),
				Email:         p.Email,
				TransactionID: p.TransactionID,
				MenuItemID:    ref,
			}
			if it, ok := byID[ref]; ok {
				row.MenuItem = &it
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
