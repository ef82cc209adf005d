/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts travel as integers in the smallest currency unit, mirroring the
  domain. Responses additionally carry *_display strings produced by
  placement.DisplayAmount for direct rendering.

VALIDATION:
  Request types carry go-playground/validator tags; handlers run the shared
  validator before touching the domain. The domain re-checks its own
  invariants regardless.

SEE ALSO:
  - handlers.go: Uses these types
  - placement/types.go: Domain entities these mirror
*/
package api

import (
	"time"

	"github.com/talentdesk/placement-engine/placement"
)

const dateLayout = "2006-01-02"

// =============================================================================
// COMPANY
// =============================================================================

// CompanyDTO represents a company in API responses.
type CompanyDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Address       string `json:"address,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// CompanyRequest is the create/update payload for a company.
type CompanyRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	ContactPerson string `json:"contact_person"`
	Address       string `json:"address"`
}

// =============================================================================
// CANDIDATE
// =============================================================================

// FeeStructureDTO represents a candidate's fee schedule.
type FeeStructureDTO struct {
	ID             string  `json:"id"`
	TotalFee       int64   `json:"total_fee"`
	TotalFeeText   string  `json:"total_fee_display"`
	Balance        int64   `json:"balance"`
	BalanceText    string  `json:"balance_display"`
	DueDate        *string `json:"due_date,omitempty"`
	IsActive       bool    `json:"is_active"`
}

// PaymentDTO represents any recorded payment in entity-scoped responses.
type PaymentDTO struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	AmountText  string `json:"amount_display"`
	PaymentDate string `json:"payment_date"`
	Remarks     string `json:"remarks,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// CandidateDTO represents a candidate in API responses.
type CandidateDTO struct {
	ID               string   `json:"id"`
	FullName         string   `json:"full_name"`
	Email            string   `json:"email,omitempty"`
	MobileNumber     string   `json:"mobile_number,omitempty"`
	Qualification    string   `json:"qualification,omitempty"`
	ExperienceYears  float64  `json:"experience_years"`
	Skills           []string `json:"skills,omitempty"`
	ResumeURL        string   `json:"resume_url,omitempty"`
	PhotoURL         string   `json:"photo_url,omitempty"`
	ExpectedSalary   int64    `json:"expected_salary"`
	Notes            string   `json:"notes,omitempty"`
	Status           string   `json:"status"`
	EmploymentStatus string   `json:"employment_status"`
	IsActive         bool     `json:"is_active"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// CandidateDetailDTO is the aggregate candidate read.
type CandidateDetailDTO struct {
	CandidateDTO
	FeeStructure   *FeeStructureDTO `json:"fee_structure,omitempty"`
	Payments       []PaymentDTO     `json:"payments"`
	InterviewCount int              `json:"interview_count"`
}

// FeeStructureRequest is the fee-schedule payload on candidate create/update.
type FeeStructureRequest struct {
	TotalFee int64   `json:"total_fee" validate:"required,gt=0"`
	DueDate  *string `json:"due_date,omitempty"`
}

// PaymentRequest is a money-received payload.
type PaymentRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	PaymentDate string `json:"payment_date" validate:"required"`
	Remarks     string `json:"remarks"`
}

// CreateCandidateRequest is the candidate creation payload.
type CreateCandidateRequest struct {
	FullName        string   `json:"full_name" validate:"required"`
	Email           string   `json:"email" validate:"omitempty,email"`
	MobileNumber    string   `json:"mobile_number"`
	Qualification   string   `json:"qualification"`
	ExperienceYears float64  `json:"experience_years" validate:"gte=0"`
	Skills          []string `json:"skills"`
	ExpectedSalary  int64    `json:"expected_salary" validate:"gte=0"`
	Notes           string   `json:"notes"`
	Status          string   `json:"status" validate:"required"`

	FeeStructure   *FeeStructureRequest `json:"fee_structure,omitempty"`
	InitialPayment *PaymentRequest      `json:"initial_payment,omitempty"`
}

// UpdateCandidateRequest is a partial update; absent fields stay unchanged.
type UpdateCandidateRequest struct {
	FullName        *string  `json:"full_name,omitempty"`
	Email           *string  `json:"email,omitempty" validate:"omitempty,email"`
	MobileNumber    *string  `json:"mobile_number,omitempty"`
	Qualification   *string  `json:"qualification,omitempty"`
	ExperienceYears *float64 `json:"experience_years,omitempty" validate:"omitempty,gte=0"`
	Skills          []string `json:"skills,omitempty"`
	ExpectedSalary  *int64   `json:"expected_salary,omitempty" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes,omitempty"`
	Status          *string  `json:"status,omitempty"`

	FeeStructure   *FeeStructureRequest `json:"fee_structure,omitempty"`
	InitialPayment *PaymentRequest      `json:"initial_payment,omitempty"`
}

// =============================================================================
// JOB
// =============================================================================

// JobDTO represents a job opening in API responses.
type JobDTO struct {
	ID             string   `json:"id"`
	CompanyID      string   `json:"company_id"`
	Title          string   `json:"title"`
	Qualification  string   `json:"qualification,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	SalaryMin      *int64   `json:"salary_min,omitempty"`
	SalaryMax      *int64   `json:"salary_max,omitempty"`
	NumVacancies   int      `json:"num_vacancies"`
	JobType        string   `json:"job_type"`
	Description    string   `json:"description,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	ContactPerson  string   `json:"contact_person,omitempty"`
	Status         string   `json:"status"`
	Attachments    []string `json:"attachments,omitempty"`
	InterviewCount int      `json:"interview_count"`
	IsActive       bool     `json:"is_active"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// JobRequest is the create/update payload for a job.
type JobRequest struct {
	CompanyID     string   `json:"company_id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Qualification string   `json:"qualification"`
	Experience    string   `json:"experience"`
	SalaryMin     *int64   `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax     *int64   `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	NumVacancies  int      `json:"num_vacancies" validate:"required,gt=0"`
	JobType       string   `json:"job_type" validate:"required"`
	Description   string   `json:"description"`
	Skills        []string `json:"skills"`
	ContactPerson string   `json:"contact_person"`
}

// JobStatusRequest is the PATCH payload changing a job's status.
type JobStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// =============================================================================
// INTERVIEW
// =============================================================================

// InterviewDTO represents an interview in API responses.
type InterviewDTO struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	JobID         string `json:"job_id"`
	CandidateID   string `json:"candidate_id"`
	InterviewDate string `json:"interview_date"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// InterviewRequest is the create/update payload for an interview.
type InterviewRequest struct {
	CompanyID     string `json:"company_id" validate:"required"`
	JobID         string `json:"job_id" validate:"required"`
	CandidateID   string `json:"candidate_id" validate:"required"`
	InterviewDate string `json:"interview_date" validate:"required"`
	Remarks       string `json:"remarks"`
}

// JoinPayloadRequest carries the joining details required when an interview
// moves to JOINED.
type JoinPayloadRequest struct {
	DateOfJoining     string  `json:"date_of_joining" validate:"required"`
	Salary            int64   `json:"salary" validate:"required,gt=0"`
	TotalReceivable   int64   `json:"total_receivable" validate:"required,gt=0"`
	DueDate           *string `json:"due_date,omitempty"`
	PlacementRemarks  string  `json:"placement_remarks"`
}

// InterviewStatusRequest is the PATCH payload changing an interview's status.
type InterviewStatusRequest struct {
	Status string              `json:"status" validate:"required"`
	Join   *JoinPayloadRequest `json:"join,omitempty"`
}

// JoinResultDTO is the response after a successful JOINED transition.
type JoinResultDTO struct {
	Interview    InterviewDTO `json:"interview"`
	ReceivableID string       `json:"receivable_id"`
}

// =============================================================================
// RECEIVABLES AND PAYMENTS
// =============================================================================

// ReceivableDTO represents a placement-income receivable.
type ReceivableDTO struct {
	ID                  string `json:"id"`
	InterviewID         string `json:"interview_id"`
	CandidateID         string `json:"candidate_id"`
	JobID               string `json:"job_id"`
	TotalReceivable     int64  `json:"total_receivable"`
	TotalReceivableText string `json:"total_receivable_display"`
	TotalReceived       int64  `json:"total_received"`
	Balance             int64  `json:"balance"`
	BalanceText         string `json:"balance_display"`
	DueDate             string `json:"due_date"`
	Remarks             string `json:"remarks,omitempty"`
	IsActive            bool   `json:"is_active"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// InstallmentResponse is returned after posting an installment: the new
// installment plus the receivable it updated.
type InstallmentResponse struct {
	Installment PaymentDTO    `json:"installment"`
	Receivable  ReceivableDTO `json:"receivable"`
}

// LedgerEntryDTO is one row of the unified payment ledger.
type LedgerEntryDTO struct {
	ID                string  `json:"id"`
	Source            string  `json:"source"`
	PaymentDate       string  `json:"payment_date"`
	Amount            int64   `json:"amount"`
	AmountText        string  `json:"amount_display"`
	IsActive          bool    `json:"is_active"`
	PlacementIncomeID *string `json:"placement_income_id,omitempty"`
	CompanyID         *string `json:"company_id,omitempty"`
	CompanyName       *string `json:"company_name,omitempty"`
	CandidateID       *string `json:"candidate_id,omitempty"`
	CandidateName     *string `json:"candidate_name,omitempty"`
	JobID             *string `json:"job_id,omitempty"`
	JobTitle          *string `json:"job_title,omitempty"`
	InterviewID       *string `json:"interview_id,omitempty"`
	Remarks           *string `json:"remarks,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// =============================================================================
// ENVELOPES
// =============================================================================

// PageDTO is the standard pagination envelope.
type PageDTO[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func fmtDate(t time.Time) string    { return t.Format(dateLayout) }
func fmtStamp(t time.Time) string   { return t.Format(time.RFC3339) }

func toCompanyDTO(c placement.Company) CompanyDTO {
	return CompanyDTO{
		ID:            string(c.ID),
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		ContactPerson: c.ContactPerson,
		Address:       c.Address,
		IsActive:      c.IsActive,
		CreatedAt:     fmtStamp(c.CreatedAt),
		UpdatedAt:     fmtStamp(c.UpdatedAt),
	}
}

func toCandidateDTO(c placement.Candidate) CandidateDTO {
	return CandidateDTO{
		ID:               string(c.ID),
		FullName:         c.FullName,
		Email:            c.Email,
		MobileNumber:     c.MobileNumber,
		Qualification:    c.Qualification,
		ExperienceYears:  c.ExperienceYears,
		Skills:           c.Skills,
		ResumeURL:        c.ResumeURL,
		PhotoURL:         c.PhotoURL,
		ExpectedSalary:   c.ExpectedSalary,
		Notes:            c.Notes,
		Status:           string(c.Status),
		EmploymentStatus: string(c.EmploymentStatus),
		IsActive:         c.IsActive,
		CreatedAt:        fmtStamp(c.CreatedAt),
		UpdatedAt:        fmtStamp(c.UpdatedAt),
	}
}

func toFeeStructureDTO(f placement.FeeStructure) FeeStructureDTO {
	dto := FeeStructureDTO{
		ID:           f.ID,
		TotalFee:     f.TotalFee,
		TotalFeeText: placement.DisplayAmount(f.TotalFee),
		Balance:      f.Balance,
		BalanceText:  placement.DisplayAmount(f.Balance),
		IsActive:     f.IsActive,
	}
	if f.DueDate != nil {
		d := fmtDate(*f.DueDate)
		dto.DueDate = &d
	}
	return dto
}

func toCandidatePaymentDTO(p placement.CandidatePayment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID,
		Amount:      p.Amount,
		AmountText:  placement.DisplayAmount(p.Amount),
		PaymentDate: fmtDate(p.PaymentDate),
		Remarks:     p.Remarks,
		IsActive:    p.IsActive,
		CreatedAt:   fmtStamp(p.CreatedAt),
	}
}

func toCandidateDetailDTO(d placement.CandidateDetail) CandidateDetailDTO {
	dto := CandidateDetailDTO{
		CandidateDTO:   toCandidateDTO(d.Candidate),
		Payments:       make([]PaymentDTO, len(d.Payments)),
		InterviewCount: d.InterviewCount,
	}
	if d.FeeStructure != nil {
		fee := toFeeStructureDTO(*d.FeeStructure)
		dto.FeeStructure = &fee
	}
	for i, p := range d.Payments {
		dto.Payments[i] = toCandidatePaymentDTO(p)
	}
	return dto
}

func toJobDTO(j placement.Job, interviewCount int) JobDTO {
	return JobDTO{
		ID:             string(j.ID),
		CompanyID:      string(j.CompanyID),
		Title:          j.Title,
		Qualification:  j.Qualification,
		Experience:     j.Experience,
		SalaryMin:      j.SalaryMin,
		SalaryMax:      j.SalaryMax,
		NumVacancies:   j.NumVacancies,
		JobType:        string(j.JobType),
		Description:    j.Description,
		Skills:         j.Skills,
		ContactPerson:  j.ContactPerson,
		Status:         string(j.Status),
		Attachments:    j.Attachments,
		InterviewCount: interviewCount,
		IsActive:       j.IsActive,
		CreatedAt:      fmtStamp(j.CreatedAt),
		UpdatedAt:      fmtStamp(j.UpdatedAt),
	}
}

func toInterviewDTO(iv placement.Interview) InterviewDTO {
	return InterviewDTO{
		ID:            string(iv.ID),
		CompanyID:     string(iv.CompanyID),
		JobID:         string(iv.JobID),
		CandidateID:   string(iv.CandidateID),
		InterviewDate: fmtStamp(iv.InterviewDate),
		Status:        string(iv.Status),
		Remarks:       iv.Remarks,
		IsActive:      iv.IsActive,
		CreatedAt:     fmtStamp(iv.CreatedAt),
		UpdatedAt:     fmtStamp(iv.UpdatedAt),
	}
}

func toReceivableDTO(r placement.Receivable) ReceivableDTO {
	return ReceivableDTO{
		ID:                  string(r.ID),
		InterviewID:         string(r.InterviewID),
		CandidateID:         string(r.CandidateID),
		JobID:               string(r.JobID),
		TotalReceivable:     r.TotalReceivable,
		TotalReceivableText: placement.DisplayAmount(r.TotalReceivable),
		TotalReceived:       r.TotalReceived,
		Balance:             r.Balance,
		BalanceText:         placement.DisplayAmount(r.Balance),
		DueDate:             fmtDate(r.DueDate),
		Remarks:             r.Remarks,
		IsActive:            r.IsActive,
		CreatedAt:           fmtStamp(r.CreatedAt),
		UpdatedAt:           fmtStamp(r.UpdatedAt),
	}
}

func toInstallmentDTO(i placement.Installment) PaymentDTO {
	return PaymentDTO{
		ID:          i.ID,
		Amount:      i.Amount,
		AmountText:  placement.DisplayAmount(i.Amount),
		PaymentDate: fmtDate(i.PaidDate),
		Remarks:     i.Remarks,
		IsActive:    i.IsActive,
		CreatedAt:   fmtStamp(i.CreatedAt),
	}
}

func toLedgerEntryDTO(e placement.LedgerEntry) LedgerEntryDTO {
	dto := LedgerEntryDTO{
		ID:          e.ID,
		Source:      string(e.Source),
		PaymentDate: fmtDate(e.PaymentDate),
		Amount:      e.Amount,
		AmountText:  placement.DisplayAmount(e.Amount),
		IsActive:    e.IsActive,
		CompanyName: e.CompanyName,
		CandidateName: e.CandidateName,
		JobTitle:    e.JobTitle,
		Remarks:     e.Remarks,
		CreatedAt:   fmtStamp(e.CreatedAt),
	}
	if e.PlacementIncomeID != nil {
		v := string(*e.PlacementIncomeID)
		dto.PlacementIncomeID = &v
	}
	if e.CompanyID != nil {
		v := string(*e.CompanyID)
		dto.CompanyID = &v
	}
	if e.CandidateID != nil {
		v := string(*e.CandidateID)
		dto.CandidateID = &v
	}
	if e.JobID != nil {
		v := string(*e.JobID)
		dto.JobID = &v
	}
	if e.InterviewID != nil {
		v := string(*e.InterviewID)
		dto.InterviewID = &v
	}
	return dto
}
