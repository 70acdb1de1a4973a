package service

// SaleState is the position of the wall clock relative to the configured sale
// window. Always derived, never stored.
type SaleState string

const (
	StateUpcoming SaleState = "upcoming"
	StateActive   SaleState = "active"
	StateEnded    SaleState = "ended"
)

// PurchaseOutcome tags the result of a purchase attempt. Rejections are
// ordinary outcomes rather than errors; errors are reserved for store
// failures and script protocol violations.
type PurchaseOutcome int

const (
	OutcomeSuccess PurchaseOutcome = iota
	OutcomeInvalidUserID
	OutcomeSaleNotActive
	OutcomeAlreadyPurchased
	OutcomeOutOfStock
)

// String returns the wire-format tag for the outcome. Rejected outcomes use
// the reason strings the HTTP surface publishes.
func (o PurchaseOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidUserID:
		return "invalid_user_id"
	case OutcomeSaleNotActive:
		return "sale_not_active"
	case OutcomeAlreadyPurchased:
		return "already_purchased"
	case OutcomeOutOfStock:
		return "out_of_stock"
	default:
		return "unknown"
	}
}

// IsSuccess reports whether the attempt committed a purchase.
func (o PurchaseOutcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

// PurchaseResult is the tagged result of AttemptPurchase.
type PurchaseResult struct {
	Outcome     PurchaseOutcome
	Message     string
	PurchasedAt string // set on success and, with the original instant, on already_purchased
	Remaining   int64  // stock left after a successful commit
}
