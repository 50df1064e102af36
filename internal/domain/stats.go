package domain

import "github.com/shopspring/decimal"

// MonthlyAmount is one "YYYY-MM" revenue bucket. Buckets sort
// lexicographically, which matches chronological order for this key format.
type MonthlyAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// PaymentStats aggregates the payment collection on demand. Revenue figures
// only count COMPLETED payments.
type PaymentStats struct {
	TotalRevenue   decimal.Decimal         `json:"total_revenue"`
	TotalCount     int64                   `json:"total_count"`
	CountByStatus  map[PaymentStatus]int64 `json:"count_by_status"`
	RevenueByMonth []MonthlyAmount         `json:"revenue_by_month"`
}

type OrganizerRevenue struct {
	OrganizerID uint            `json:"organizer_id"`
	Name        string          `json:"name,omitempty"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type DashboardStats struct {
	UserGrowth           []MonthlyCount     `json:"user_growth"`
	EventGrowth          []MonthlyCount     `json:"event_growth"`
	RevenueGrowth        []MonthlyAmount    `json:"revenue_growth"`
	TopOrganizers        []OrganizerRevenue `json:"top_organizers"`
	CategoryDistribution []CategoryCount    `json:"category_distribution"`
}
