/*
handlers.go - HTTP API handlers for the placement engine

PURPOSE:
  Exposes the recruitment back office via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Companies:
    GET    /api/companies                    List (q, page, limit)
    POST   /api/companies                    Create
    GET    /api/companies/{id}               Get
    PUT    /api/companies/{id}               Update
    DELETE /api/companies/{id}               Soft delete
    POST   /api/companies/{id}/payments      Record a company payment

  Candidates:
    GET    /api/candidates                   Filtered list
    POST   /api/candidates                   Create (track rules apply)
    GET    /api/candidates/{id}              Aggregate detail
    PUT    /api/candidates/{id}              Update (track rules apply)
    DELETE /api/candidates/{id}              Soft delete
    POST   /api/candidates/{id}/upload       Resume/photo upload

  Jobs:
    GET    /api/jobs                         Filtered list
    POST   /api/jobs                         Create
    GET    /api/jobs/{id}                    Get
    PUT    /api/jobs/{id}                    Update
    PATCH  /api/jobs/{id}/status             Change status
    DELETE /api/jobs/{id}                    Soft delete
    POST   /api/jobs/{id}/attachments        Attachment upload

  Interviews:
    GET    /api/interviews                   Filtered list
    POST   /api/interviews                   Create
    GET    /api/interviews/{id}              Get
    PUT    /api/interviews/{id}              Update date/remarks
    PATCH  /api/interviews/{id}/status       Status transition (JOINED runs
                                             the placement engine)
    DELETE /api/interviews/{id}              Soft delete

  Placements:
    GET    /api/placements                   List receivables
    GET    /api/placements/{id}              Get receivable
    GET    /api/placements/{id}/payments     List installments
    POST   /api/placements/{id}/payments     Post installment

  Payments:
    GET    /api/payments/ledger              Unified payment ledger
    PUT    /api/payments/{id}                Update company payment
    DELETE /api/payments/{id}                Soft delete company payment

ERROR HANDLING:
  Domain errors map to HTTP status via the placement classifiers:
  - IsValidation: 400
  - IsNotFound:   404
  - IsConflict:   409
  - otherwise:    500

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - placement/: Domain logic these handlers delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/talentdesk/placement-engine/filestore"
	"github.com/talentdesk/placement-engine/placement"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  placement.TxStore
	Engine *placement.Engine
	Fees   *placement.Fees
	Ledger *placement.Ledger
	Files  *filestore.Store

	validate *validator.Validate
	now      func() time.Time

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler over the given store. files may be nil when
// upload routes are not mounted (tests).
func NewHandler(store placement.TxStore, files *filestore.Store) *Handler {
	return &Handler{
		Store:    store,
		Engine:   placement.NewEngine(store),
		Fees:     placement.NewFees(store),
		Ledger:   placement.NewLedger(store),
		Files:    files,
		validate: validator.New(),
		now:      time.Now,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeDomainError maps a domain error to the HTTP status and standard
// error body.
func writeDomainError(w http.ResponseWriter, err error) {
	var vErr *placement.ValidationError
	var nfErr *placement.NotFoundError
	var cErr *placement.ConflictError

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Message, Code: "validation", Field: vErr.Field})
	case placement.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case errors.As(err, &nfErr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: nfErr.Error(), Code: "not_found"})
	case placement.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.As(err, &cErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: cErr.Reason, Code: "conflict"})
	case placement.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "validation"})
}

func writeNotFound(w http.ResponseWriter, entity, id string) {
	writeDomainError(w, &placement.NotFoundError{Entity: entity, ID: id})
}

// decodeBody decodes and validates a JSON request body.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error: fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()),
				Code:  "validation",
				Field: fe.Field(),
			})
		} else {
			writeBadRequest(w, "invalid request body")
		}
		return false
	}
	return true
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func pageFromQuery(r *http.Request) placement.PageRequest {
	var page placement.PageRequest
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		page.Limit = v
	}
	return page.Normalize()
}

func queryInt64Ptr(r *http.Request, key string) *int64 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryFloatPtr(r *http.Request, key string) *float64 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryDatePtr(r *http.Request, key string) *time.Time {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

func pageDTO[D any](items []D, total, page, limit int) PageDTO[D] {
	if items == nil {
		items = []D{}
	}
	return PageDTO[D]{Items: items, Total: total, Page: page, Limit: limit}
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns active companies, optionally filtered by name.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	companies, total, err := h.Store.ListCompanies(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = toCompanyDTO(c)
	}
	writeJSON(w, http.StatusOK, pageDTO(dtos, total, page.Page, page.Limit))
}

// CreateCompany registers a new client company.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	now := h.now()
	company := placement.Company{
		ID:            placement.CompanyID(uuid.NewString()),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
		Address:       req.Address,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.InsertCompany(r.Context(), company); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyDTO(company))
}

// GetCompany returns a single company.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id := placement.CompanyID(chi.URLParam(r, "id"))
	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company == nil {
		writeNotFound(w, "company", string(id))
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*company))
}

// UpdateCompany replaces a company's editable fields.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id := placement.CompanyID(chi.URLParam(r, "id"))
	var req CompanyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company == nil || !company.IsActive {
		writeNotFound(w, "company", string(id))
		return
	}

	company.Name = req.Name
	company.Email = req.Email
	company.Phone = req.Phone
	company.ContactPerson = req.ContactPerson
	company.Address = req.Address
	company.UpdatedAt = h.now()

	if err := h.Store.UpdateCompany(r.Context(), *company); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyDTO(*company))
}

// DeleteCompany soft-deletes a company.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id := placement.CompanyID(chi.URLParam(r, "id"))
	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company == nil || !company.IsActive {
		writeNotFound(w, "company", string(id))
		return
	}

	company.IsActive = false
	company.UpdatedAt = h.now()
	if err := h.Store.UpdateCompany(r.Context(), *company); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCompanyPayment records money received from a company.
func (h *Handler) CreateCompanyPayment(w http.ResponseWriter, r *http.Request) {
	id := placement.CompanyID(chi.URLParam(r, "id"))
	var req PaymentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		writeBadRequest(w, "invalid payment_date (use YYYY-MM-DD)")
		return
	}

	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company == nil || !company.IsActive {
		writeNotFound(w, "company", string(id))
		return
	}

	now := h.now()
	payment := placement.CompanyPayment{
		ID:          uuid.NewString(),
		CompanyID:   id,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Remarks:     req.Remarks,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Store.InsertCompanyPayment(r.Context(), payment); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PaymentDTO{
		ID:          payment.ID,
		Amount:      payment.Amount,
		AmountText:  placement.DisplayAmount(payment.Amount),
		PaymentDate: fmtDate(payment.PaymentDate),
		Remarks:     payment.Remarks,
		IsActive:    true,
		CreatedAt:   fmtStamp(payment.CreatedAt),
	})
}

// =============================================================================
// CANDIDATE HANDLERS
// =============================================================================

// ListCandidates returns candidates matching the query filters.
func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	filter := placement.CandidateFilter{
		Query:             r.URL.Query().Get("q"),
		Qualification:     r.URL.Query().Get("qualification"),
		ExpectedSalaryMin: queryInt64Ptr(r, "expected_salary_min"),
		ExpectedSalaryMax: queryInt64Ptr(r, "expected_salary_max"),
		ExperienceMin:     queryFloatPtr(r, "experience_min"),
		ExperienceMax:     queryFloatPtr(r, "experience_max"),
		PageRequest:       page,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := placement.ParseCandidateStatus(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("is_active"); s != "" {
		active := s == "true" || s == "1"
		filter.IsActive = &active
	}

	candidates, total, err := h.Store.ListCandidates(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]CandidateDTO, len(candidates))
	for i, c := range candidates {
		dtos[i] = toCandidateDTO(c)
	}
	writeJSON(w, http.StatusOK, pageDTO(dtos, total, page.Page, page.Limit))
}

func toFeeStructureInput(req *FeeStructureRequest) (*placement.FeeStructureInput, error) {
	if req == nil {
		return nil, nil
	}
	in := &placement.FeeStructureInput{TotalFee: req.TotalFee}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, &placement.ValidationError{Field: "fee_structure.due_date", Message: "invalid date (use YYYY-MM-DD)"}
		}
		in.DueDate = &d
	}
	return in, nil
}

func toPaymentInput(req *PaymentRequest) (*placement.PaymentInput, error) {
	if req == nil {
		return nil, nil
	}
	d, err := parseDate(req.PaymentDate)
	if err != nil {
		return nil, &placement.ValidationError{Field: "payment_date", Message: "invalid date (use YYYY-MM-DD)"}
	}
	return &placement.PaymentInput{Amount: req.Amount, PaymentDate: d, Remarks: req.Remarks}, nil
}

// CreateCandidate registers a candidate; fee and payment rules depend on
// the chosen track.
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req CreateCandidateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	status, err := placement.ParseCandidateStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	fee, err := toFeeStructureInput(req.FeeStructure)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payment, err := toPaymentInput(req.InitialPayment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	detail, err := h.Fees.CreateCandidate(r.Context(), placement.CandidateInput{
		FullName:        req.FullName,
		Email:           req.Email,
		MobileNumber:    req.MobileNumber,
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		Skills:          req.Skills,
		ExpectedSalary:  req.ExpectedSalary,
		Notes:           req.Notes,
		Status:          status,
		FeeStructure:    fee,
		InitialPayment:  payment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCandidateDetailDTO(*detail))
}

// GetCandidate returns the aggregate candidate read.
func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id := placement.CandidateID(chi.URLParam(r, "id"))
	detail, err := h.Store.GetCandidateDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if detail == nil {
		writeNotFound(w, "candidate", string(id))
		return
	}
	writeJSON(w, http.StatusOK, toCandidateDetailDTO(*detail))
}

// UpdateCandidate applies a partial update under the track rules.
func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id := placement.CandidateID(chi.URLParam(r, "id"))
	var req UpdateCandidateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	update := placement.CandidateUpdate{
		FullName:        req.FullName,
		Email:           req.Email,
		MobileNumber:    req.MobileNumber,
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		Skills:          req.Skills,
		ExpectedSalary:  req.ExpectedSalary,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		status, err := placement.ParseCandidateStatus(*req.Status)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		update.Status = &status
	}
	fee, err := toFeeStructureInput(req.FeeStructure)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	update.FeeStructure = fee
	payment, err := toPaymentInput(req.InitialPayment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	update.InitialPayment = payment

	detail, err := h.Fees.UpdateCandidate(r.Context(), id, update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateDetailDTO(*detail))
}

// DeleteCandidate soft-deletes a candidate.
func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := placement.CandidateID(chi.URLParam(r, "id"))
	if _, err := h.Fees.DeactivateCandidate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCandidateDocuments accepts multipart "resume" and/or "photo" files
// and stores their URLs on the candidate.
func (h *Handler) UploadCandidateDocuments(w http.ResponseWriter, r *http.Request) {
	if h.Files == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "file storage not configured"})
		return
	}
	id := placement.CandidateID(chi.URLParam(r, "id"))

	candidate, err := h.Store.GetCandidate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if candidate == nil || !candidate.IsActive {
		writeNotFound(w, "candidate", string(id))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	stored := false
	for _, field := range []string{"resume", "photo"} {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		url, err := h.Files.Save(file, header.Filename)
		file.Close()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		switch field {
		case "resume":
			if candidate.ResumeURL != "" {
				_ = h.Files.Remove(candidate.ResumeURL)
			}
			candidate.ResumeURL = url
		case "photo":
			if candidate.PhotoURL != "" {
				_ = h.Files.Remove(candidate.PhotoURL)
			}
			candidate.PhotoURL = url
		}
		stored = true
	}
	if !stored {
		writeBadRequest(w, "no resume or photo file in request")
		return
	}

	candidate.UpdatedAt = h.now()
	if err := h.Store.UpdateCandidate(r.Context(), *candidate); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateDTO(*candidate))
}

// =============================================================================
// JOB HANDLERS
// =============================================================================

// ListJobs returns jobs matching the query filters, each with its active
// interview count.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	filter := placement.JobFilter{
		Query:       r.URL.Query().Get("q"),
		SalaryMin:   queryInt64Ptr(r, "salary_min"),
		SalaryMax:   queryInt64Ptr(r, "salary_max"),
		PageRequest: page,
	}
	if s := r.URL.Query().Get("company_id"); s != "" {
		id := placement.CompanyID(s)
		filter.CompanyID = &id
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := placement.ParseJobStatus(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		filter.Status = &status
	}

	jobs, total, err := h.Store.ListJobs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]JobDTO, len(jobs))
	for i, j := range jobs {
		count, err := h.Store.CountInterviews(r.Context(), &j.ID, nil)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		dtos[i] = toJobDTO(j, count)
	}
	writeJSON(w, http.StatusOK, pageDTO(dtos, total, page.Page, page.Limit))
}

// CreateJob opens a new job at a company.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	jobType, err := placement.ParseJobType(req.JobType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	company, err := h.Store.GetCompany(r.Context(), placement.CompanyID(req.CompanyID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company == nil || !company.IsActive {
		writeNotFound(w, "company", req.CompanyID)
		return
	}

	now := h.now()
	job := placement.Job{
		ID:            placement.JobID(uuid.NewString()),
		CompanyID:     placement.CompanyID(req.CompanyID),
		Title:         req.Title,
		Qualification: req.Qualification,
		Experience:    req.Experience,
		SalaryMin:     req.SalaryMin,
		SalaryMax:     req.SalaryMax,
		NumVacancies:  req.NumVacancies,
		JobType:       jobType,
		Description:   req.Description,
		Skills:        req.Skills,
		ContactPerson: req.ContactPerson,
		Status:        placement.JobOpen,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.InsertJob(r.Context(), job); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobDTO(job, 0))
}

func (h *Handler) activeJob(w http.ResponseWriter, r *http.Request) *placement.Job {
	id := placement.JobID(chi.URLParam(r, "id"))
	job, err := h.Store.GetJob(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return nil
	}
	if job == nil || !job.IsActive {
		writeNotFound(w, "job", string(id))
		return nil
	}
	return job
}

// GetJob returns a single job with its active interview count.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job := h.activeJob(w, r)
	if job == nil {
		return
	}
	count, err := h.Store.CountInterviews(r.Context(), &job.ID, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job, count))
}

// UpdateJob replaces a job's editable fields. Status and vacancies move
// through their own endpoints.
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	job := h.activeJob(w, r)
	if job == nil {
		return
	}
	jobType, err := placement.ParseJobType(req.JobType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	job.Title = req.Title
	job.Qualification = req.Qualification
	job.Experience = req.Experience
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	job.NumVacancies = req.NumVacancies
	job.JobType = jobType
	job.Description = req.Description
	job.Skills = req.Skills
	job.ContactPerson = req.ContactPerson
	job.UpdatedAt = h.now()

	if err := h.Store.UpdateJob(r.Context(), *job); err != nil {
		writeDomainError(w, err)
		return
	}
	count, err := h.Store.CountInterviews(r.Context(), &job.ID, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job, count))
}

// UpdateJobStatus changes a job's lifecycle status.
func (h *Handler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req JobStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	job := h.activeJob(w, r)
	if job == nil {
		return
	}
	status, err := placement.ParseJobStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	job.Status = status
	job.UpdatedAt = h.now()
	if err := h.Store.UpdateJob(r.Context(), *job); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job, 0))
}

// DeleteJob soft-deletes a job.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	job := h.activeJob(w, r)
	if job == nil {
		return
	}
	job.IsActive = false
	job.UpdatedAt = h.now()
	if err := h.Store.UpdateJob(r.Context(), *job); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadJobAttachment stores one multipart "attachment" file against a job.
func (h *Handler) UploadJobAttachment(w http.ResponseWriter, r *http.Request) {
	if h.Files == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "file storage not configured"})
		return
	}
	job := h.activeJob(w, r)
	if job == nil {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("attachment")
	if err != nil {
		writeBadRequest(w, "no attachment file in request")
		return
	}
	defer file.Close()

	url, err := h.Files.Save(file, header.Filename)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	job.Attachments = append(job.Attachments, url)
	job.UpdatedAt = h.now()
	if err := h.Store.UpdateJob(r.Context(), *job); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job, 0))
}

// =============================================================================
// INTERVIEW HANDLERS
// =============================================================================

// ListInterviews returns interviews matching the query filters.
func (h *Handler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	filter := placement.InterviewFilter{
		FromDate:    queryDatePtr(r, "from_date"),
		ToDate:      queryDatePtr(r, "to_date"),
		PageRequest: page,
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := placement.ParseInterviewStatus(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("job_id"); s != "" {
		id := placement.JobID(s)
		filter.JobID = &id
	}
	if s := r.URL.Query().Get("candidate_id"); s != "" {
		id := placement.CandidateID(s)
		filter.CandidateID = &id
	}
	if s := r.URL.Query().Get("company_id"); s != "" {
		id := placement.CompanyID(s)
		filter.CompanyID = &id
	}

	interviews, total, err := h.Store.ListInterviews(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]InterviewDTO, len(interviews))
	for i, iv := range interviews {
		dtos[i] = toInterviewDTO(iv)
	}
	writeJSON(w, http.StatusOK, pageDTO(dtos, total, page.Page, page.Limit))
}

// CreateInterview schedules an interview, checking that the company, job
// and candidate all exist and are active.
func (h *Handler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	var req InterviewRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	interviewDate, err := parseDate(req.InterviewDate)
	if err != nil {
		writeBadRequest(w, "invalid interview_date (use YYYY-MM-DD or RFC3339)")
		return
	}

	ctx := r.Context()
	company, err := h.Store.GetCompany(ctx, placement.CompanyID(req.CompanyID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if company == nil || !company.IsActive {
		writeNotFound(w, "company", req.CompanyID)
		return
	}
	job, err := h.Store.GetJob(ctx, placement.JobID(req.JobID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if job == nil || !job.IsActive {
		writeNotFound(w, "job", req.JobID)
		return
	}
	candidate, err := h.Store.GetCandidate(ctx, placement.CandidateID(req.CandidateID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if candidate == nil || !candidate.IsActive {
		writeNotFound(w, "candidate", req.CandidateID)
		return
	}

	now := h.now()
	interview := placement.Interview{
		ID:            placement.InterviewID(uuid.NewString()),
		CompanyID:     company.ID,
		JobID:         job.ID,
		CandidateID:   candidate.ID,
		InterviewDate: interviewDate,
		Status:        placement.InterviewScheduled,
		Remarks:       req.Remarks,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.InsertInterview(ctx, interview); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInterviewDTO(interview))
}

func (h *Handler) activeInterview(w http.ResponseWriter, r *http.Request) *placement.Interview {
	id := placement.InterviewID(chi.URLParam(r, "id"))
	interview, err := h.Store.GetInterview(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return nil
	}
	if interview == nil || !interview.IsActive {
		writeNotFound(w, "interview", string(id))
		return nil
	}
	return interview
}

// GetInterview returns a single interview.
func (h *Handler) GetInterview(w http.ResponseWriter, r *http.Request) {
	interview := h.activeInterview(w, r)
	if interview == nil {
		return
	}
	writeJSON(w, http.StatusOK, toInterviewDTO(*interview))
}

// UpdateInterview edits the interview date and remarks. Status moves only
// through the status endpoint.
func (h *Handler) UpdateInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InterviewDate *string `json:"interview_date,omitempty"`
		Remarks       *string `json:"remarks,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	interview := h.activeInterview(w, r)
	if interview == nil {
		return
	}

	if req.InterviewDate != nil {
		d, err := parseDate(*req.InterviewDate)
		if err != nil {
			writeBadRequest(w, "invalid interview_date (use YYYY-MM-DD or RFC3339)")
			return
		}
		interview.InterviewDate = d
	}
	if req.Remarks != nil {
		interview.Remarks = *req.Remarks
	}
	interview.UpdatedAt = h.now()

	if err := h.Store.UpdateInterview(r.Context(), *interview); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInterviewDTO(*interview))
}

// UpdateInterviewStatus runs the placement transition engine. Moving to
// JOINED requires the join payload and triggers the full set of placement
// side effects atomically.
func (h *Handler) UpdateInterviewStatus(w http.ResponseWriter, r *http.Request) {
	id := placement.InterviewID(chi.URLParam(r, "id"))
	var req InterviewStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	status, err := placement.ParseInterviewStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	change := placement.StatusChange{Status: status}
	if req.Join != nil {
		doj, err := parseDate(req.Join.DateOfJoining)
		if err != nil {
			writeBadRequest(w, "invalid date_of_joining (use YYYY-MM-DD)")
			return
		}
		payload := placement.JoinPayload{
			DateOfJoining:    doj,
			Salary:           req.Join.Salary,
			TotalReceivable:  req.Join.TotalReceivable,
			PlacementRemarks: req.Join.PlacementRemarks,
		}
		if req.Join.DueDate != nil {
			due, err := parseDate(*req.Join.DueDate)
			if err != nil {
				writeBadRequest(w, "invalid due_date (use YYYY-MM-DD)")
				return
			}
			payload.DueDate = &due
		}
		change.Join = &payload
	}

	result, err := h.Engine.TransitionStatus(r.Context(), id, change)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, JoinResultDTO{
		Interview:    toInterviewDTO(result.Interview),
		ReceivableID: string(result.ReceivableID),
	})
}

// DeleteInterview soft-deletes an interview.
func (h *Handler) DeleteInterview(w http.ResponseWriter, r *http.Request) {
	interview := h.activeInterview(w, r)
	if interview == nil {
		return
	}
	interview.IsActive = false
	interview.UpdatedAt = h.now()
	if err := h.Store.UpdateInterview(r.Context(), *interview); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PLACEMENT (RECEIVABLE) HANDLERS
// =============================================================================

// ListReceivables returns placement-income receivables.
func (h *Handler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	filter := placement.ReceivableFilter{
		Outstanding: r.URL.Query().Get("outstanding") == "true",
		PageRequest: page,
	}
	if s := r.URL.Query().Get("candidate_id"); s != "" {
		id := placement.CandidateID(s)
		filter.CandidateID = &id
	}
	if s := r.URL.Query().Get("job_id"); s != "" {
		id := placement.JobID(s)
		filter.JobID = &id
	}

	receivables, total, err := h.Store.ListReceivables(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ReceivableDTO, len(receivables))
	for i, rec := range receivables {
		dtos[i] = toReceivableDTO(rec)
	}
	writeJSON(w, http.StatusOK, pageDTO(dtos, total, page.Page, page.Limit))
}

// GetReceivable returns a single receivable.
func (h *Handler) GetReceivable(w http.ResponseWriter, r *http.Request) {
	id := placement.ReceivableID(chi.URLParam(r, "id"))
	rec, err := h.Store.GetReceivable(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rec == nil {
		writeNotFound(w, "receivable", string(id))
		return
	}
	writeJSON(w, http.StatusOK, toReceivableDTO(*rec))
}

// ListInstallments returns the payments applied against a receivable.
func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	id := placement.ReceivableID(chi.URLParam(r, "id"))
	rec, err := h.Store.GetReceivable(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rec == nil {
		writeNotFound(w, "receivable", string(id))
		return
	}

	installments, err := h.Store.Installments(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]PaymentDTO, len(installments))
	for i, ins := range installments {
		dtos[i] = toInstallmentDTO(ins)
	}
	if dtos == nil {
		dtos = []PaymentDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PostInstallment applies a payment against a receivable. Overpayment is
// rejected with a conflict before anything is written.
func (h *Handler) PostInstallment(w http.ResponseWriter, r *http.Request) {
	id := placement.ReceivableID(chi.URLParam(r, "id"))
	var req PaymentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	in, err := toPaymentInput(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	installment, receivable, err := h.Fees.PostInstallment(r.Context(), id, *in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, InstallmentResponse{
		Installment: toInstallmentDTO(*installment),
		Receivable:  toReceivableDTO(*receivable),
	})
}

// =============================================================================
// PAYMENT LEDGER HANDLERS
// =============================================================================

// GetLedger returns the unified payment ledger across all three sources.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	filter := placement.LedgerFilter{
		StartDate:       queryDatePtr(r, "start_date"),
		EndDate:         queryDatePtr(r, "end_date"),
		MinAmount:       queryInt64Ptr(r, "min_amount"),
		MaxAmount:       queryInt64Ptr(r, "max_amount"),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
		PageRequest:     page,
	}
	if s := r.URL.Query().Get("sources"); s != "" {
		for _, raw := range strings.Split(s, ",") {
			source, err := placement.ParsePaymentSource(strings.TrimSpace(raw))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			filter.Sources = append(filter.Sources, source)
		}
	}
	if s := r.URL.Query().Get("company_id"); s != "" {
		id := placement.CompanyID(s)
		filter.CompanyID = &id
	}
	if s := r.URL.Query().Get("candidate_id"); s != "" {
		id := placement.CandidateID(s)
		filter.CandidateID = &id
	}
	if s := r.URL.Query().Get("job_id"); s != "" {
		id := placement.JobID(s)
		filter.JobID = &id
	}

	result, err := h.Ledger.Query(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]LedgerEntryDTO, len(result.Items))
	for i, e := range result.Items {
		dtos[i] = toLedgerEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, pageDTO(dtos, result.Total, result.Page, result.Limit))
}

// UpdateCompanyPayment edits a recorded company payment.
func (h *Handler) UpdateCompanyPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PaymentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		writeBadRequest(w, "invalid payment_date (use YYYY-MM-DD)")
		return
	}

	payment, err := h.Store.GetCompanyPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if payment == nil || !payment.IsActive {
		writeNotFound(w, "payment", id)
		return
	}

	payment.Amount = req.Amount
	payment.PaymentDate = paymentDate
	payment.Remarks = req.Remarks
	payment.UpdatedAt = h.now()

	if err := h.Store.UpdateCompanyPayment(r.Context(), *payment); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentDTO{
		ID:          payment.ID,
		Amount:      payment.Amount,
		AmountText:  placement.DisplayAmount(payment.Amount),
		PaymentDate: fmtDate(payment.PaymentDate),
		Remarks:     payment.Remarks,
		IsActive:    payment.IsActive,
		CreatedAt:   fmtStamp(payment.CreatedAt),
	})
}

// DeleteCompanyPayment soft-deletes a recorded company payment. The row
// stays queryable in the ledger via include_inactive.
func (h *Handler) DeleteCompanyPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	payment, err := h.Store.GetCompanyPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if payment == nil || !payment.IsActive {
		writeNotFound(w, "payment", id)
		return
	}

	payment.IsActive = false
	payment.UpdatedAt = h.now()
	if err := h.Store.UpdateCompanyPayment(r.Context(), *payment); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
