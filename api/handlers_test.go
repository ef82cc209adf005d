package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentdesk/placement-engine/api"
	"github.com/talentdesk/placement-engine/placement/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	t      *testing.T
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := api.NewHandler(store.NewMemory(), nil)
	router := api.NewRouter(h, api.RouterOptions{
		CORSOrigins: []string{"http://localhost"},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &fixture{t: t, server: server}
}

func (f *fixture) do(method, path string, body any) *http.Response {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// createCompany creates a company and returns its id.
func (f *fixture) createCompany(name string) string {
	resp := f.do("POST", "/api/companies", api.CompanyRequest{Name: name})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	return decode[api.CompanyDTO](f.t, resp).ID
}

func (f *fixture) createJob(companyID string, vacancies int) string {
	resp := f.do("POST", "/api/jobs", api.JobRequest{
		CompanyID:    companyID,
		Title:        "Backend Engineer",
		NumVacancies: vacancies,
		JobType:      "FULL_TIME",
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	return decode[api.JobDTO](f.t, resp).ID
}

func (f *fixture) createCandidate(email, mobile string) string {
	resp := f.do("POST", "/api/candidates", api.CreateCandidateRequest{
		FullName:     "Priya Sharma",
		Email:        email,
		MobileNumber: mobile,
		Status:       "CAPS",
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	return decode[api.CandidateDetailDTO](f.t, resp).ID
}

func (f *fixture) createInterview(companyID, jobID, candidateID string) string {
	resp := f.do("POST", "/api/interviews", api.InterviewRequest{
		CompanyID:     companyID,
		JobID:         jobID,
		CandidateID:   candidateID,
		InterviewDate: "2025-06-15",
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode)
	return decode[api.InterviewDTO](f.t, resp).ID
}

// =============================================================================
// END-TO-END PLACEMENT FLOW
// =============================================================================

func TestAPI_FullPlacementFlow(t *testing.T) {
	// GIVEN: A company, a single-vacancy job, a candidate and an interview
	f := newFixture(t)
	companyID := f.createCompany("Acme Logistics")
	jobID := f.createJob(companyID, 1)
	candidateID := f.createCandidate("priya@example.com", "9000000001")
	interviewID := f.createInterview(companyID, jobID, candidateID)

	// WHEN: The interview moves to JOINED with the join payload
	resp := f.do("PATCH", "/api/interviews/"+interviewID+"/status", api.InterviewStatusRequest{
		Status: "JOINED",
		Join: &api.JoinPayloadRequest{
			DateOfJoining:   "2025-07-01",
			Salary:          9_500_000,
			TotalReceivable: 950_000,
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[api.JoinResultDTO](t, resp)
	assert.Equal(t, "JOINED", result.Interview.Status)
	require.NotEmpty(t, result.ReceivableID)

	// THEN: The job is fulfilled with zero vacancies
	resp = f.do("GET", "/api/jobs/"+jobID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	job := decode[api.JobDTO](t, resp)
	assert.Equal(t, 0, job.NumVacancies)
	assert.Equal(t, "FULFILLED", job.Status)

	// AND: The candidate is employed
	resp = f.do("GET", "/api/candidates/"+candidateID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cand := decode[api.CandidateDetailDTO](t, resp)
	assert.Equal(t, "EMPLOYED", cand.EmploymentStatus)

	// AND: The receivable carries the full balance
	resp = f.do("GET", "/api/placements/"+result.ReceivableID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[api.ReceivableDTO](t, resp)
	assert.Equal(t, int64(950_000), rec.Balance)
	assert.Equal(t, int64(0), rec.TotalReceived)

	// AND: Posting an installment moves the balance
	resp = f.do("POST", "/api/placements/"+result.ReceivableID+"/payments", api.PaymentRequest{
		Amount:      400_000,
		PaymentDate: "2025-07-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	posted := decode[api.InstallmentResponse](t, resp)
	assert.Equal(t, int64(550_000), posted.Receivable.Balance)
	assert.Equal(t, int64(400_000), posted.Receivable.TotalReceived)
}

func TestAPI_MarkJoined_MissingPayload_BadRequest(t *testing.T) {
	f := newFixture(t)
	companyID := f.createCompany("Acme")
	jobID := f.createJob(companyID, 1)
	candidateID := f.createCandidate("a@example.com", "9000000001")
	interviewID := f.createInterview(companyID, jobID, candidateID)

	resp := f.do("PATCH", "/api/interviews/"+interviewID+"/status", api.InterviewStatusRequest{
		Status: "JOINED",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_MarkJoined_DuplicateCandidate_Conflict(t *testing.T) {
	// GIVEN: A candidate already placed through one interview
	f := newFixture(t)
	companyID := f.createCompany("Acme")
	jobID := f.createJob(companyID, 3)
	candidateID := f.createCandidate("a@example.com", "9000000001")
	first := f.createInterview(companyID, jobID, candidateID)
	second := f.createInterview(companyID, jobID, candidateID)

	join := api.InterviewStatusRequest{
		Status: "JOINED",
		Join: &api.JoinPayloadRequest{
			DateOfJoining:   "2025-07-01",
			Salary:          5_000_000,
			TotalReceivable: 500_000,
		},
	}
	resp := f.do("PATCH", "/api/interviews/"+first+"/status", join)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// WHEN: A second interview for the now-employed candidate is joined
	resp = f.do("PATCH", "/api/interviews/"+second+"/status", join)
	defer resp.Body.Close()

	// THEN: The already-employed check rejects it as a conflict
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// VALIDATION AND ERROR MAPPING
// =============================================================================

func TestAPI_CreateCandidate_TrackRules(t *testing.T) {
	f := newFixture(t)

	// JOC without a fee structure is rejected
	resp := f.do("POST", "/api/candidates", api.CreateCandidateRequest{
		FullName:     "No Fee",
		MobileNumber: "9000000009",
		Status:       "JOC",
		InitialPayment: &api.PaymentRequest{
			Amount: 10_000, PaymentDate: "2025-06-01",
		},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[api.ErrorResponse](t, resp)
	assert.Equal(t, "validation", body.Code)
}

func TestAPI_DuplicateEmail_Conflict(t *testing.T) {
	f := newFixture(t)
	f.createCandidate("dup@example.com", "9000000001")

	resp := f.do("POST", "/api/candidates", api.CreateCandidateRequest{
		FullName:     "Second",
		Email:        "dup@example.com",
		MobileNumber: "9000000002",
		Status:       "CAPS",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_UnknownCompany_NotFound(t *testing.T) {
	f := newFixture(t)
	resp := f.do("GET", "/api/companies/nope", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// LEDGER ENVELOPE
// =============================================================================

func TestAPI_Ledger_EnvelopeAndFilters(t *testing.T) {
	// GIVEN: The collections scenario, which produces one payment per source
	f := newFixture(t)
	resp := f.do("POST", "/api/scenarios/load", api.LoadScenarioRequest{ID: "collections"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// WHEN: Querying the unified ledger
	resp = f.do("GET", "/api/payments/ledger?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[api.PageDTO[api.LedgerEntryDTO]](t, resp)

	// THEN: All three sources appear with the standard envelope
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.GreaterOrEqual(t, page.Total, 3)
	sources := map[string]bool{}
	for _, e := range page.Items {
		sources[e.Source] = true
	}
	assert.True(t, sources["COMPANY_PAYMENT"])
	assert.True(t, sources["CANDIDATE_PAYMENT"])
	assert.True(t, sources["PLACEMENT_INCOME"])

	// AND: Source filtering narrows the feed
	resp = f.do("GET", "/api/payments/ledger?sources=PLACEMENT_INCOME", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	filtered := decode[api.PageDTO[api.LedgerEntryDTO]](t, resp)
	require.NotEmpty(t, filtered.Items)
	for _, e := range filtered.Items {
		assert.Equal(t, "PLACEMENT_INCOME", e.Source)
	}
}

func TestAPI_Ledger_LimitClamped(t *testing.T) {
	f := newFixture(t)
	resp := f.do("GET", "/api/payments/ledger?limit=9999", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[api.PageDTO[api.LedgerEntryDTO]](t, resp)
	assert.Equal(t, 100, page.Limit)
}

// =============================================================================
// AUTH
// =============================================================================

func signToken(t *testing.T, secret, subject string, roles []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAPI_Auth_RolesEnforced(t *testing.T) {
	// GIVEN: A server with auth enabled
	const secret = "test-secret"
	h := api.NewHandler(store.NewMemory(), nil)
	router := api.NewRouter(h, api.RouterOptions{AuthSecret: secret})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	post := func(token string) int {
		body, _ := json.Marshal(api.CompanyRequest{Name: "Acme"})
		req, err := http.NewRequest("POST", server.URL+"/api/companies", bytes.NewReader(body))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	// No token: unauthorized
	assert.Equal(t, http.StatusUnauthorized, post(""))

	// Wrong secret: unauthorized
	assert.Equal(t, http.StatusUnauthorized, post(signToken(t, "other-secret", "u1", []string{"admin"})))

	// Viewer role: forbidden on mutations
	assert.Equal(t, http.StatusForbidden, post(signToken(t, secret, "u1", []string{"viewer"})))

	// Recruiter role: allowed
	assert.Equal(t, http.StatusCreated, post(signToken(t, secret, "u2", []string{"recruiter"})))
}
