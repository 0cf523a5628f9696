package enrollment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Payment is a ledger row for one checkout attempt of a user on a course.
// SessionID and Link stay empty until the checkout session gets attached.
type Payment struct {
	ID          int             `json:"id"`
	UserID      int             `json:"user_id"`
	CourseID    null.Int        `json:"course_id"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"payment_method"`
	Link        string          `json:"payment_link"`
	SessionID   string          `json:"payment_id"`
	Amount      decimal.Decimal `json:"summ"`
}

// HasSession reports whether a checkout session is attached to the payment.
func (p Payment) HasSession() bool {
	return p.SessionID != ""
}

// PaymentFilter narrows down payment queries. Zero values are ignored.
type PaymentFilter struct {
	UserID   int
	CourseID int
}
