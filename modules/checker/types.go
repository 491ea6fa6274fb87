package checker

import (
	"fmt"
	"time"
)

// Status is the terminal classification of a verified handle.
type Status string

const (
	// StatusAvailable means no data source showed an owner, listing, or ban.
	StatusAvailable Status = "available"

	// StatusTaken means the handle is assigned to an account.
	StatusTaken Status = "taken"

	// StatusForSale means the handle is listed on the marketplace with a price.
	StatusForSale Status = "for_sale"

	// StatusBanned means the handle is banned by the platform or reserved
	// and cannot be registered.
	StatusBanned Status = "banned_or_reserved"

	// StatusInvalid means the handle failed local format or heuristic checks
	// and was never sent to a remote data source.
	StatusInvalid Status = "invalid_format"

	// StatusIndeterminate means verification could not reach a conclusion.
	// Indeterminate outcomes are never cached.
	StatusIndeterminate Status = "indeterminate"
)

// OwnerKind describes what kind of account holds a taken handle.
type OwnerKind string

const (
	KindUser        OwnerKind = "user"
	KindPremiumUser OwnerKind = "premium_user"
	KindBot         OwnerKind = "bot"
	KindChannel     OwnerKind = "channel"
	KindGroup       OwnerKind = "group"
)

// Outcome is the result of verifying a single handle. Status is always set;
// Owner is set only for StatusTaken and Price only for StatusForSale.
type Outcome struct {
	Status Status    `json:"status"`
	Owner  OwnerKind `json:"owner,omitempty"`
	Price  int       `json:"price,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Available reports a handle no data source could tie to an owner or listing.
func Available() Outcome {
	return Outcome{Status: StatusAvailable}
}

// TakenBy reports a handle held by the given kind of account.
func TakenBy(kind OwnerKind) Outcome {
	return Outcome{Status: StatusTaken, Owner: kind}
}

// ForSale reports a marketplace listing at the given price.
func ForSale(price int) Outcome {
	return Outcome{Status: StatusForSale, Price: price}
}

// BannedOrReserved reports a handle the platform refuses to serve.
func BannedOrReserved(detail string) Outcome {
	return Outcome{Status: StatusBanned, Detail: detail}
}

// InvalidFormat reports a handle rejected by local screening.
func InvalidFormat(detail string) Outcome {
	return Outcome{Status: StatusInvalid, Detail: detail}
}

// Indeterminate reports a verification that could not conclude.
func Indeterminate(detail string) Outcome {
	return Outcome{Status: StatusIndeterminate, Detail: detail}
}

// Conclusive reports whether the outcome is terminal and safe to cache.
func (o Outcome) Conclusive() bool {
	return o.Status != StatusIndeterminate
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusTaken:
		return fmt.Sprintf("taken by %s", o.Owner)
	case StatusForSale:
		return fmt.Sprintf("for sale (%d)", o.Price)
	default:
		return string(o.Status)
	}
}

// BatchResult aggregates a single orchestrator run over one base name.
type BatchResult struct {
	RunID       string             `json:"run_id"`
	BaseName    string             `json:"base_name"`
	Outcomes    map[string]Outcome `json:"outcomes"`
	Skipped     []string           `json:"skipped,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
}

// Aggregated groups the run's handles by status. Slice order is not
// guaranteed; callers needing order should sort.
func (r *BatchResult) Aggregated() map[Status][]string {
	grouped := make(map[Status][]string)
	for name, out := range r.Outcomes {
		grouped[out.Status] = append(grouped[out.Status], name)
	}
	return grouped
}
