/*
Package placement is the core of the recruitment back office: the entities
tracked by the agency (companies, jobs, candidates, interviews, joinings,
fee structures, placement-income receivables and the payments against all of
them) plus the three pieces of logic that make the money side correct:

  - Engine:  the interview -> JOINED transition with its atomic side effects
  - Fees:    candidate fee-structure/payment lifecycle rules
  - Ledger:  the unified, time-ordered payment view across all three sources

KEY CONCEPTS IN THIS FILE (types.go):
  - Typed IDs for the main aggregates (CandidateID, JobID, ...)
  - Status enums with a single parse/serialize boundary per enum
  - Entity structs mirroring the relational rows, no ORM magic

DESIGN PRINCIPLES:
  1. Money is an int64 in the smallest currency unit. Display conversion
     lives in money.go; arithmetic never touches floats.
  2. Soft deletion: entities carry IsActive; "deleted" rows stay queryable.
  3. Enum storage values are converted exactly once, at the Parse* boundary.
     Call sites never compare raw strings.

SEE ALSO:
  - store.go:  persistence interfaces consumed by the logic above
  - engine.go: the placement transition engine
  - ledger.go: the unified ledger query engine
*/
package placement

import (
	"fmt"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CompanyID string
type CandidateID string
type JobID string
type InterviewID string
type ReceivableID string

// =============================================================================
// ENUMS - one parse/serialize boundary per enum
// =============================================================================

// CandidateStatus is the registration/fee track of a candidate.
type CandidateStatus string

const (
	CandidateRegistered CandidateStatus = "REGISTERED"
	CandidateCAPS       CandidateStatus = "CAPS"
	CandidateJOC        CandidateStatus = "JOC"
	CandidateFree       CandidateStatus = "FREE"
)

// ParseCandidateStatus converts a stored/wire value into a CandidateStatus.
func ParseCandidateStatus(s string) (CandidateStatus, error) {
	switch CandidateStatus(s) {
	case CandidateRegistered, CandidateCAPS, CandidateJOC, CandidateFree:
		return CandidateStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown candidate status %q", s)}
}

// EmploymentStatus tracks whether a candidate currently holds a placement.
// Transitions to EMPLOYED happen only through Engine.MarkJoined.
type EmploymentStatus string

const (
	Employed   EmploymentStatus = "EMPLOYED"
	Unemployed EmploymentStatus = "UNEMPLOYED"
)

func ParseEmploymentStatus(s string) (EmploymentStatus, error) {
	switch EmploymentStatus(s) {
	case Employed, Unemployed:
		return EmploymentStatus(s), nil
	}
	return "", &ValidationError{Field: "employment_status", Message: fmt.Sprintf("unknown employment status %q", s)}
}

// JobStatus is the lifecycle of a job opening.
type JobStatus string

const (
	JobOpen      JobStatus = "OPEN"
	JobFulfilled JobStatus = "FULFILLED"
	JobDropped   JobStatus = "DROPPED"
)

func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobOpen, JobFulfilled, JobDropped:
		return JobStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown job status %q", s)}
}

// JobType distinguishes engagement kinds. Informational only.
type JobType string

const (
	FullTime   JobType = "FULL_TIME"
	PartTime   JobType = "PART_TIME"
	Internship JobType = "INTERNSHIP"
)

func ParseJobType(s string) (JobType, error) {
	switch JobType(s) {
	case FullTime, PartTime, Internship:
		return JobType(s), nil
	}
	return "", &ValidationError{Field: "job_type", Message: fmt.Sprintf("unknown job type %q", s)}
}

// InterviewStatus is the interview pipeline state. Only JOINED carries
// side effects (see engine.go); every other value is plain assignment.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "SCHEDULED"
	InterviewCompleted InterviewStatus = "COMPLETED"
	InterviewSelected  InterviewStatus = "SELECTED"
	InterviewRejected  InterviewStatus = "REJECTED"
	InterviewJoined    InterviewStatus = "JOINED"
	InterviewCancelled InterviewStatus = "CANCELLED"
)

func ParseInterviewStatus(s string) (InterviewStatus, error) {
	switch InterviewStatus(s) {
	case InterviewScheduled, InterviewCompleted, InterviewSelected,
		InterviewRejected, InterviewJoined, InterviewCancelled:
		return InterviewStatus(s), nil
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown interview status %q", s)}
}

// PaymentSource tags which table a unified-ledger row came from.
type PaymentSource string

const (
	SourceCompanyPayment   PaymentSource = "COMPANY_PAYMENT"
	SourceCandidatePayment PaymentSource = "CANDIDATE_PAYMENT"
	SourcePlacementIncome  PaymentSource = "PLACEMENT_INCOME"
)

func ParsePaymentSource(s string) (PaymentSource, error) {
	switch PaymentSource(s) {
	case SourceCompanyPayment, SourceCandidatePayment, SourcePlacementIncome:
		return PaymentSource(s), nil
	}
	return "", &ValidationError{Field: "source", Message: fmt.Sprintf("unknown payment source %q", s)}
}

// =============================================================================
// ENTITIES
// =============================================================================

// Company is a client of the agency. Referenced by jobs and interviews,
// never duplicated into them.
type Company struct {
	ID            CompanyID
	Name          string
	Email         string
	Phone         string
	ContactPerson string
	Address       string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Candidate is a person the agency represents. At most one active fee
// structure; any number of payments.
type Candidate struct {
	ID               CandidateID
	FullName         string
	Email            string
	MobileNumber     string
	Qualification    string
	ExperienceYears  float64
	Skills           []string
	ResumeURL        string
	PhotoURL         string
	ExpectedSalary   int64
	Notes            string
	Status           CandidateStatus
	EmploymentStatus EmploymentStatus
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FeeStructure is the JOC-track fee schedule for a candidate (1:1).
// Balance decreases as payments post; it is never recomputed from TotalFee.
type FeeStructure struct {
	ID          string
	CandidateID CandidateID
	TotalFee    int64
	Balance     int64
	DueDate     *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CandidatePayment is a free-standing payment received from a candidate.
// It is not tied to the fee structure and never adjusts its balance.
type CandidatePayment struct {
	ID          string
	CandidateID CandidateID
	Amount      int64
	PaymentDate time.Time
	Remarks     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job is an opening at a company. NumVacancies only decreases, via
// successful joinings; hitting zero forces status FULFILLED.
type Job struct {
	ID            JobID
	CompanyID     CompanyID
	Title         string
	Qualification string
	Experience    string
	SalaryMin     *int64
	SalaryMax     *int64
	NumVacancies  int
	JobType       JobType
	Description   string
	Skills        []string
	ContactPerson string
	Status        JobStatus
	Attachments   []string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Interview links a candidate to a job at a company.
type Interview struct {
	ID            InterviewID
	CompanyID     CompanyID
	JobID         JobID
	CandidateID   CandidateID
	InterviewDate time.Time
	Status        InterviewStatus
	Remarks       string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Joining is the append-only fact that a candidate joined a job.
// At most one active row per (job, candidate) pair; the store enforces
// this with a partial unique index, which is the correctness backstop
// under concurrent MarkJoined calls.
type Joining struct {
	ID            string
	JobID         JobID
	CandidateID   CandidateID
	DateOfJoining time.Time
	Salary        int64
	Remarks       string
	IsActive      bool
	CreatedAt     time.Time
}

// Receivable is a placement-income receivable: money owed to the agency
// for a successful placement. Created at most once per interview.
// Invariant: TotalReceived + Balance == TotalReceivable at all times.
type Receivable struct {
	ID              ReceivableID
	InterviewID     InterviewID
	CandidateID     CandidateID
	JobID           JobID
	TotalReceivable int64
	TotalReceived   int64
	Balance         int64
	DueDate         time.Time
	Remarks         string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Installment is a payment applied against a receivable.
type Installment struct {
	ID           string
	ReceivableID ReceivableID
	Amount       int64
	PaidDate     time.Time
	Remarks      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompanyPayment is a payment received from a company. Company payments
// carry no running balance; they exist for the cash-flow ledger only.
type CompanyPayment struct {
	ID          string
	CompanyID   CompanyID
	Amount      int64
	PaymentDate time.Time
	Remarks     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// AGGREGATE READS - explicit about which related rows load together
// =============================================================================

// CandidateDetail is the aggregate read for a candidate: the candidate row
// plus its fee structure, payments and interview count, loaded together.
// This replaces lazy relationship traversal with one explicit shape.
type CandidateDetail struct {
	Candidate
	FeeStructure   *FeeStructure
	Payments       []CandidatePayment
	InterviewCount int
}

// JoinResult is what MarkJoined returns: the updated interview plus the id
// of the receivable that was created (or reused) for it.
type JoinResult struct {
	Interview    Interview
	ReceivableID ReceivableID
}
