/*
ledger.go - The unified payment ledger query engine

PURPOSE:
  Presents company payments, candidate payments and placement-income
  installments as one logically homogeneous, time-ordered feed. Each source
  is projected by the store into the common LedgerEntry shape; this file
  owns the merge, filtering, ordering and pagination.

  The three kinds keep their own tables and write paths (they have
  different cardinality: company payments carry no balance, candidate
  payments are free-standing, installments reduce a receivable). Unifying
  happens here as an explicit merge step, not as a SQL UNION the target
  store may or may not support.

ORDERING:
  payment_date descending, ties broken by created_at descending, then by
  id for full determinism. Stable order is what makes pagination sane.
*/
package placement

import (
	"context"
	"sort"
	"time"
)

// LedgerEntry is the common projection of one payment row from any source.
// Fields that do not apply to a source are nil.
type LedgerEntry struct {
	ID          string
	Source      PaymentSource
	PaymentDate time.Time
	Amount      int64
	CreatedAt   time.Time
	IsActive    bool

	PlacementIncomeID *ReceivableID

	CompanyID   *CompanyID
	CompanyName *string

	CandidateID   *CandidateID
	CandidateName *string

	JobID    *JobID
	JobTitle *string

	InterviewID *InterviewID

	Remarks *string
}

// LedgerFilter narrows the unified feed. Date and amount bounds are
// inclusive on both ends. Inactive rows are excluded unless
// IncludeInactive is set.
type LedgerFilter struct {
	Sources         []PaymentSource
	StartDate       *time.Time
	EndDate         *time.Time
	CompanyID       *CompanyID
	CandidateID     *CandidateID
	JobID           *JobID
	MinAmount       *int64
	MaxAmount       *int64
	IncludeInactive bool
	PageRequest
}

// LedgerPage is the pagination envelope returned to API consumers.
// Total counts all rows matching the filter, independent of page/limit.
type LedgerPage struct {
	Items []LedgerEntry
	Total int
	Page  int
	Limit int
}

// Ledger merges the three payment sources into one view.
type Ledger struct {
	store Store
}

// NewLedger creates the query engine over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

var allSources = []PaymentSource{
	SourceCompanyPayment,
	SourceCandidatePayment,
	SourcePlacementIncome,
}

// Query returns one page of the unified ledger plus the total match count.
func (l *Ledger) Query(ctx context.Context, f LedgerFilter) (*LedgerPage, error) {
	page := f.PageRequest.Normalize()

	sources := f.Sources
	if len(sources) == 0 {
		sources = allSources
	}

	// Union preserving duplicates across sources, then one in-memory pass.
	var merged []LedgerEntry
	for _, src := range sources {
		entries, err := l.store.LedgerEntries(ctx, src)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if f.matches(e) {
				merged = append(merged, e)
			}
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.PaymentDate.Equal(b.PaymentDate) {
			return a.PaymentDate.After(b.PaymentDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	total := len(merged)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	items := make([]LedgerEntry, end-start)
	copy(items, merged[start:end])

	return &LedgerPage{
		Items: items,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}, nil
}

func (f LedgerFilter) matches(e LedgerEntry) bool {
	if !f.IncludeInactive && !e.IsActive {
		return false
	}
	if f.StartDate != nil && e.PaymentDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.PaymentDate.After(*f.EndDate) {
		return false
	}
	if f.CompanyID != nil && (e.CompanyID == nil || *e.CompanyID != *f.CompanyID) {
		return false
	}
	if f.CandidateID != nil && (e.CandidateID == nil || *e.CandidateID != *f.CandidateID) {
		return false
	}
	if f.JobID != nil && (e.JobID == nil || *e.JobID != *f.JobID) {
		return false
	}
	if f.MinAmount != nil && e.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && e.Amount > *f.MaxAmount {
		return false
	}
	return true
}
