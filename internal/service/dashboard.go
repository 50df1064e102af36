package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gatherly/gatherly-api/internal/domain"
)

const defaultTopOrganizers = 5

type DashboardUserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
}

type DashboardEventRepository interface {
	FindAll(ctx context.Context) ([]domain.Event, error)
}

type DashboardPaymentRepository interface {
	FindAll(ctx context.Context) ([]domain.Payment, error)
}

// DashboardService computes the dashboard read model on demand from the full
// collections; nothing is maintained incrementally.
type DashboardService struct {
	users    DashboardUserRepository
	events   DashboardEventRepository
	payments DashboardPaymentRepository
}

func NewDashboardService(users DashboardUserRepository, events DashboardEventRepository, payments DashboardPaymentRepository) *DashboardService {
	return &DashboardService{
		users:    users,
		events:   events,
		payments: payments,
	}
}

func (s *DashboardService) Stats(ctx context.Context, topLimit int) (domain.DashboardStats, error) {
	if topLimit < 1 {
		topLimit = defaultTopOrganizers
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("s.users.FindAll -> %w", err)
	}

	events, err := s.events.FindAll(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("s.events.FindAll -> %w", err)
	}

	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("s.payments.FindAll -> %w", err)
	}

	stats := domain.DashboardStats{
		UserGrowth:           monthlyCounts(users, func(u domain.User) string { return u.CreatedAt.Format("2006-01") }),
		EventGrowth:          monthlyCounts(events, func(e domain.Event) string { return e.CreatedAt.Format("2006-01") }),
		RevenueGrowth:        revenueGrowth(payments),
		TopOrganizers:        topOrganizers(users, events, payments, topLimit),
		CategoryDistribution: categoryDistribution(events),
	}

	return stats, nil
}

// monthlyCounts buckets records by "YYYY-MM" creation month, ascending.
func monthlyCounts[T any](records []T, monthOf func(T) string) []domain.MonthlyCount {
	byMonth := make(map[string]int)
	for _, record := range records {
		byMonth[monthOf(record)]++
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	counts := make([]domain.MonthlyCount, len(months))
	for i, month := range months {
		counts[i] = domain.MonthlyCount{Month: month, Count: byMonth[month]}
	}

	return counts
}

// revenueGrowth buckets COMPLETED payment amounts by creation month.
func revenueGrowth(payments []domain.Payment) []domain.MonthlyAmount {
	byMonth := make(map[string]decimal.Decimal)
	for _, p := range payments {
		if p.Status != domain.PaymentCompleted {
			continue
		}
		month := p.CreatedAt.Format("2006-01")
		byMonth[month] = byMonth[month].Add(p.Amount)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	amounts := make([]domain.MonthlyAmount, len(months))
	for i, month := range months {
		amounts[i] = domain.MonthlyAmount{Month: month, Amount: byMonth[month]}
	}

	return amounts
}

// topOrganizers ranks organizers strictly by descending COMPLETED revenue.
// Equal-revenue organizers keep their encounter order (stable sort), and the
// result is truncated to limit.
func topOrganizers(users []domain.User, events []domain.Event, payments []domain.Payment, limit int) []domain.OrganizerRevenue {
	organizerByEvent := make(map[uint]uint, len(events))
	for _, e := range events {
		organizerByEvent[e.ID] = e.OrganizerID
	}

	nameByUser := make(map[uint]string, len(users))
	for _, u := range users {
		nameByUser[u.ID] = u.Name
	}

	revenue := make(map[uint]decimal.Decimal)
	var order []uint
	for _, p := range payments {
		if p.Status != domain.PaymentCompleted {
			continue
		}
		organizerID, ok := organizerByEvent[p.EventID]
		if !ok {
			continue
		}
		if _, seen := revenue[organizerID]; !seen {
			order = append(order, organizerID)
		}
		revenue[organizerID] = revenue[organizerID].Add(p.Amount)
	}

	ranked := make([]domain.OrganizerRevenue, len(order))
	for i, organizerID := range order {
		ranked[i] = domain.OrganizerRevenue{
			OrganizerID: organizerID,
			Name:        nameByUser[organizerID],
			Revenue:     revenue[organizerID],
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// categoryDistribution counts events per category, descending by count.
func categoryDistribution(events []domain.Event) []domain.CategoryCount {
	byCategory := make(map[string]int)
	var order []string
	for _, e := range events {
		if _, seen := byCategory[e.Category]; !seen {
			order = append(order, e.Category)
		}
		byCategory[e.Category]++
	}

	counts := make([]domain.CategoryCount, len(order))
	for i, category := range order {
		counts[i] = domain.CategoryCount{Category: category, Count: byCategory[category]}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}
