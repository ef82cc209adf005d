/*
store.go - Persistence interfaces consumed by the placement core

PURPOSE:
  Defines the contract between the domain logic and the database. The core
  never holds entity state across calls; every operation re-reads current
  rows before mutating, inside the transaction that mutates them.

KEY INTERFACES:
  Store:   all reads and writes for the back-office entities
  TxStore: Store plus WithTx for all-or-nothing units of work

TRANSACTIONAL CONTRACT:
  WithTx(ctx, fn) runs fn against a Store view bound to one database
  transaction. If fn returns an error the transaction rolls back and no
  partial state survives. MarkJoined applies its five effects through a
  single WithTx call.

CONSTRAINT BACKSTOPS (declared here, enforced by implementations):
  - candidates.email and candidates.mobile_number are unique
  - joinings(job_id, candidate_id) is unique over active rows
  Implementations must translate violations into ConflictError.

IMPLEMENTATIONS:
  - store/sqlite:          production SQLite
  - placement/store (mem): in-memory, for domain tests
*/
package placement

import (
	"context"
	"time"
)

// =============================================================================
// FILTERS - list-query parameters, all optional unless noted
// =============================================================================

// PageRequest is the common pagination input. Pages are 1-indexed and the
// limit is clamped to [1,100] by Normalize.
type PageRequest struct {
	Page  int
	Limit int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Normalize returns a PageRequest with page >= 1 and limit in [1,100].
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Offset returns the row offset for the normalized request.
func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

// CandidateFilter narrows candidate lists.
type CandidateFilter struct {
	Query             string // matches name, email or mobile, case-insensitive
	Qualification     string
	ExpectedSalaryMin *int64
	ExpectedSalaryMax *int64
	ExperienceMin     *float64
	ExperienceMax     *float64
	Status            *CandidateStatus
	IsActive          *bool // nil means active only
	PageRequest
}

// JobFilter narrows job lists. Inactive jobs are always excluded.
type JobFilter struct {
	CompanyID *CompanyID
	Status    *JobStatus
	SalaryMin *int64
	SalaryMax *int64
	Query     string // matches title or description
	PageRequest
}

// InterviewFilter narrows interview lists. Inactive interviews are excluded.
type InterviewFilter struct {
	Status      *InterviewStatus
	FromDate    *time.Time
	ToDate      *time.Time
	JobID       *JobID
	CandidateID *CandidateID
	CompanyID   *CompanyID
	PageRequest
}

// ReceivableFilter narrows receivable lists.
type ReceivableFilter struct {
	CandidateID *CandidateID
	JobID       *JobID
	Outstanding bool // only receivables with balance > 0
	PageRequest
}

// =============================================================================
// STORE - all entity persistence
// =============================================================================

// Store is the relational persistence contract for the placement core.
// List methods return the matching page plus the total count under the
// same filter, computed independent of page/limit.
type Store interface {
	// Companies
	InsertCompany(ctx context.Context, c Company) error
	GetCompany(ctx context.Context, id CompanyID) (*Company, error)
	UpdateCompany(ctx context.Context, c Company) error
	ListCompanies(ctx context.Context, q string, page PageRequest) ([]Company, int, error)

	// Candidates
	InsertCandidate(ctx context.Context, c Candidate) error
	GetCandidate(ctx context.Context, id CandidateID) (*Candidate, error)
	GetCandidateDetail(ctx context.Context, id CandidateID) (*CandidateDetail, error)
	UpdateCandidate(ctx context.Context, c Candidate) error
	ListCandidates(ctx context.Context, f CandidateFilter) ([]Candidate, int, error)

	// Fee structures (at most one active per candidate)
	FeeStructureByCandidate(ctx context.Context, id CandidateID) (*FeeStructure, error)
	InsertFeeStructure(ctx context.Context, fs FeeStructure) error
	UpdateFeeStructure(ctx context.Context, fs FeeStructure) error

	// Candidate payments
	InsertCandidatePayment(ctx context.Context, p CandidatePayment) error
	CandidatePayments(ctx context.Context, id CandidateID) ([]CandidatePayment, error)

	// Jobs
	InsertJob(ctx context.Context, j Job) error
	GetJob(ctx context.Context, id JobID) (*Job, error)
	UpdateJob(ctx context.Context, j Job) error
	ListJobs(ctx context.Context, f JobFilter) ([]Job, int, error)

	// Interviews
	InsertInterview(ctx context.Context, iv Interview) error
	GetInterview(ctx context.Context, id InterviewID) (*Interview, error)
	UpdateInterview(ctx context.Context, iv Interview) error
	ListInterviews(ctx context.Context, f InterviewFilter) ([]Interview, int, error)
	CountInterviews(ctx context.Context, jobID *JobID, candidateID *CandidateID) (int, error)

	// Joinings
	HasActiveJoining(ctx context.Context, jobID JobID, candidateID CandidateID) (bool, error)
	InsertJoining(ctx context.Context, j Joining) error

	// Receivables and installments
	InsertReceivable(ctx context.Context, r Receivable) error
	GetReceivable(ctx context.Context, id ReceivableID) (*Receivable, error)
	ActiveReceivableByInterview(ctx context.Context, id InterviewID) (*Receivable, error)
	UpdateReceivable(ctx context.Context, r Receivable) error
	ListReceivables(ctx context.Context, f ReceivableFilter) ([]Receivable, int, error)
	InsertInstallment(ctx context.Context, ins Installment) error
	Installments(ctx context.Context, id ReceivableID) ([]Installment, error)

	// Company payments
	InsertCompanyPayment(ctx context.Context, p CompanyPayment) error
	GetCompanyPayment(ctx context.Context, id string) (*CompanyPayment, error)
	UpdateCompanyPayment(ctx context.Context, p CompanyPayment) error

	// Ledger projections: every row of one payment source, already joined
	// with the names the unified view needs. Filtering, merging, ordering
	// and pagination happen in Ledger, not in SQL.
	LedgerEntries(ctx context.Context, source PaymentSource) ([]LedgerEntry, error)
}

// TxStore wraps Store with transaction support. The view passed to fn is
// only valid for the duration of the call.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. A non-nil error from fn
	// rolls everything back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
