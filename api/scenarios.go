/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the store with small, recognisable datasets for development and
  demos. Each scenario is a named loader; loading goes through the same
  domain services the API uses, so seeded data always satisfies the
  invariants (track rules, receivable arithmetic, joining uniqueness).

SCENARIOS:
  starter-agency   Two client companies, four candidates across all fee
                   tracks, two open jobs, interviews in flight.
  collections      starter-agency plus one completed placement with a
                   part-paid receivable and payments from every source,
                   so the unified ledger has data on day one.

NOTE:
  Loading does not wipe existing rows. Point the server at a fresh
  database (or :memory:) before loading a scenario twice; the unique
  email/mobile constraints will otherwise reject the second load.

SEE ALSO:
  - handlers.go: Handler struct these loaders hang off
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/talentdesk/placement-engine/placement"
)

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id" validate:"required"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "starter-agency",
		Name:        "Starter agency",
		Description: "Companies, candidates on every fee track, open jobs and interviews in flight.",
	},
	{
		ID:          "collections",
		Name:        "Collections in progress",
		Description: "Starter agency plus a completed placement with a part-paid receivable and ledger activity.",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": h.currentScenario})
}

// LoadScenario seeds the store with the chosen scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	var err error
	switch req.ID {
	case "starter-agency":
		_, err = h.loadStarterAgency(r.Context())
	case "collections":
		err = h.loadCollections(r.Context())
	default:
		writeBadRequest(w, fmt.Sprintf("unknown scenario %q", req.ID))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]string{"id": req.ID, "status": "loaded"})
}

// starterSeed carries the ids later scenario steps build on.
type starterSeed struct {
	acme      placement.CompanyID
	northwind placement.CompanyID
	priya     placement.CandidateID
	arjun     placement.CandidateID
	backend   placement.JobID
	analyst   placement.JobID
	interview placement.InterviewID
}

func (h *Handler) loadStarterAgency(ctx context.Context) (*starterSeed, error) {
	now := h.now()
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	seed := &starterSeed{
		acme:      "co-acme",
		northwind: "co-northwind",
		backend:   "job-backend",
		analyst:   "job-analyst",
		interview: "iv-priya-backend",
	}

	companies := []placement.Company{
		{ID: seed.acme, Name: "Acme Logistics", Email: "hr@acme.example", ContactPerson: "R. Nair",
			IsActive: true, CreatedAt: day(-60), UpdatedAt: day(-60)},
		{ID: seed.northwind, Name: "Northwind Analytics", Email: "talent@northwind.example", ContactPerson: "S. Iyer",
			IsActive: true, CreatedAt: day(-45), UpdatedAt: day(-45)},
	}
	for _, c := range companies {
		if err := h.Store.InsertCompany(ctx, c); err != nil {
			return nil, err
		}
	}

	// Candidates go through Fees so the track rules run.
	priya, err := h.Fees.CreateCandidate(ctx, placement.CandidateInput{
		FullName: "Priya Sharma", Email: "priya@example.com", MobileNumber: "9000000001",
		Qualification: "B.Tech", ExperienceYears: 4, Skills: []string{"go", "postgres"},
		ExpectedSalary: 9_000_000, Status: placement.CandidateJOC,
		FeeStructure:   &placement.FeeStructureInput{TotalFee: 500_000},
		InitialPayment: &placement.PaymentInput{Amount: 100_000, PaymentDate: day(-30)},
	})
	if err != nil {
		return nil, err
	}
	seed.priya = priya.ID

	arjun, err := h.Fees.CreateCandidate(ctx, placement.CandidateInput{
		FullName: "Arjun Mehta", Email: "arjun@example.com", MobileNumber: "9000000002",
		Qualification: "MBA", ExperienceYears: 6, Skills: []string{"sql", "excel"},
		ExpectedSalary: 12_000_000, Status: placement.CandidateRegistered,
		InitialPayment: &placement.PaymentInput{Amount: 50_000, PaymentDate: day(-25)},
	})
	if err != nil {
		return nil, err
	}
	seed.arjun = arjun.ID

	if _, err := h.Fees.CreateCandidate(ctx, placement.CandidateInput{
		FullName: "Kavya Reddy", Email: "kavya@example.com", MobileNumber: "9000000003",
		Qualification: "B.Sc", ExperienceYears: 1, Skills: []string{"python"},
		ExpectedSalary: 4_500_000, Status: placement.CandidateCAPS,
	}); err != nil {
		return nil, err
	}
	if _, err := h.Fees.CreateCandidate(ctx, placement.CandidateInput{
		FullName: "Dev Patel", Email: "dev@example.com", MobileNumber: "9000000004",
		Qualification: "Diploma", ExperienceYears: 0.5, Skills: []string{"support"},
		ExpectedSalary: 3_000_000, Status: placement.CandidateFree,
	}); err != nil {
		return nil, err
	}

	salaryMin, salaryMax := int64(8_000_000), int64(11_000_000)
	jobs := []placement.Job{
		{ID: seed.backend, CompanyID: seed.acme, Title: "Backend Engineer",
			Qualification: "B.Tech", Experience: "3-6 years",
			SalaryMin: &salaryMin, SalaryMax: &salaryMax, NumVacancies: 2,
			JobType: placement.FullTime, Skills: []string{"go", "postgres"},
			Status: placement.JobOpen, IsActive: true, CreatedAt: day(-40), UpdatedAt: day(-40)},
		{ID: seed.analyst, CompanyID: seed.northwind, Title: "Data Analyst",
			Qualification: "Any graduate", Experience: "2+ years", NumVacancies: 1,
			JobType: placement.FullTime, Skills: []string{"sql"},
			Status: placement.JobOpen, IsActive: true, CreatedAt: day(-35), UpdatedAt: day(-35)},
	}
	for _, j := range jobs {
		if err := h.Store.InsertJob(ctx, j); err != nil {
			return nil, err
		}
	}

	interviews := []placement.Interview{
		{ID: seed.interview, CompanyID: seed.acme, JobID: seed.backend, CandidateID: seed.priya,
			InterviewDate: day(-10), Status: placement.InterviewSelected,
			IsActive: true, CreatedAt: day(-12), UpdatedAt: day(-10)},
		{ID: "iv-arjun-analyst", CompanyID: seed.northwind, JobID: seed.analyst, CandidateID: seed.arjun,
			InterviewDate: day(2), Status: placement.InterviewScheduled,
			IsActive: true, CreatedAt: day(-5), UpdatedAt: day(-5)},
	}
	for _, iv := range interviews {
		if err := h.Store.InsertInterview(ctx, iv); err != nil {
			return nil, err
		}
	}

	return seed, nil
}

func (h *Handler) loadCollections(ctx context.Context) error {
	seed, err := h.loadStarterAgency(ctx)
	if err != nil {
		return err
	}
	now := h.now()
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	// The placement goes through the engine so all five side effects run.
	result, err := h.Engine.MarkJoined(ctx, seed.interview, placement.JoinPayload{
		DateOfJoining:    day(-7),
		Salary:           9_500_000,
		TotalReceivable:  950_000,
		PlacementRemarks: "Joined Acme backend team",
	})
	if err != nil {
		return err
	}

	if _, _, err := h.Fees.PostInstallment(ctx, result.ReceivableID, placement.PaymentInput{
		Amount: 400_000, PaymentDate: day(-3), Remarks: "first installment",
	}); err != nil {
		return err
	}

	// A company payment so all three ledger sources have rows.
	return h.Store.InsertCompanyPayment(ctx, placement.CompanyPayment{
		ID: "pay-acme-retainer", CompanyID: seed.acme, Amount: 250_000,
		PaymentDate: day(-20), Remarks: "retainer",
		IsActive: true, CreatedAt: day(-20), UpdatedAt: day(-20),
	})
}
