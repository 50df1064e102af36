package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uint            `json:"id"`
	OrganizerID uint            `json:"organizer_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Location    string          `json:"location"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
