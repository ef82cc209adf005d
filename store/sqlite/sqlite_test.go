package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentdesk/placement-engine/placement"
	"github.com/talentdesk/placement-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func at(d int) time.Time {
	return time.Date(2025, time.June, d, 12, 0, 0, 0, time.UTC)
}

func testCandidate(id, email, mobile string) placement.Candidate {
	return placement.Candidate{
		ID:               placement.CandidateID(id),
		FullName:         "Test Candidate " + id,
		Email:            email,
		MobileNumber:     mobile,
		Skills:           []string{"go", "sql"},
		Status:           placement.CandidateRegistered,
		EmploymentStatus: placement.Unemployed,
		IsActive:         true,
		CreatedAt:        at(1),
		UpdatedAt:        at(1),
	}
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestStore_CandidateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	want := testCandidate("cand-1", "a@example.com", "9000000001")
	require.NoError(t, store.InsertCandidate(ctx, want))

	got, err := store.GetCandidate(ctx, want.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.FullName, got.FullName)
	assert.Equal(t, want.Skills, got.Skills)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	missing, err := store.GetCandidate(ctx, "cand-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_JobRoundTrip_NullableSalaries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	min := int64(3_000_000)
	want := placement.Job{
		ID:           "job-1",
		CompanyID:    "co-1",
		Title:        "Backend Engineer",
		SalaryMin:    &min,
		NumVacancies: 2,
		JobType:      placement.FullTime,
		Status:       placement.JobOpen,
		Skills:       []string{"go"},
		IsActive:     true,
		CreatedAt:    at(1),
		UpdatedAt:    at(1),
	}
	require.NoError(t, store.InsertJob(ctx, want))

	got, err := store.GetJob(ctx, want.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.SalaryMin)
	assert.Equal(t, min, *got.SalaryMin)
	assert.Nil(t, got.SalaryMax)
}

func TestStore_CandidateDetail_AggregatesRelatedRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cand := testCandidate("cand-1", "a@example.com", "9000000001")
	require.NoError(t, store.InsertCandidate(ctx, cand))
	require.NoError(t, store.InsertFeeStructure(ctx, placement.FeeStructure{
		ID: "fee-1", CandidateID: cand.ID, TotalFee: 500_000, Balance: 500_000,
		IsActive: true, CreatedAt: at(1), UpdatedAt: at(1),
	}))
	require.NoError(t, store.InsertCandidatePayment(ctx, placement.CandidatePayment{
		ID: "pay-1", CandidateID: cand.ID, Amount: 100_000, PaymentDate: at(2),
		IsActive: true, CreatedAt: at(2), UpdatedAt: at(2),
	}))
	require.NoError(t, store.InsertInterview(ctx, placement.Interview{
		ID: "iv-1", CompanyID: "co-1", JobID: "job-1", CandidateID: cand.ID,
		InterviewDate: at(3), Status: placement.InterviewScheduled,
		IsActive: true, CreatedAt: at(3), UpdatedAt: at(3),
	}))

	detail, err := store.GetCandidateDetail(ctx, cand.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.NotNil(t, detail.FeeStructure)
	assert.Equal(t, int64(500_000), detail.FeeStructure.TotalFee)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, 1, detail.InterviewCount)
}

// =============================================================================
// CONSTRAINT BACKSTOPS
// =============================================================================

func TestStore_DuplicateCandidateEmail_Conflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertCandidate(ctx, testCandidate("cand-1", "dup@example.com", "9000000001")))

	err := store.InsertCandidate(ctx, testCandidate("cand-2", "dup@example.com", "9000000002"))
	assert.True(t, placement.IsConflict(err), "expected conflict, got %v", err)

	var conflict *placement.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestStore_DuplicateCandidateMobile_Conflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertCandidate(ctx, testCandidate("cand-1", "a@example.com", "9000000001")))

	err := store.InsertCandidate(ctx, testCandidate("cand-2", "b@example.com", "9000000001"))
	assert.True(t, placement.IsConflict(err), "expected conflict, got %v", err)
}

func TestStore_DuplicateActiveJoining_Conflict(t *testing.T) {
	// GIVEN: An active joining for (job-1, cand-1)
	// WHEN: A second active joining for the same pair is inserted
	// THEN: The partial unique index rejects it as a conflict

	ctx := context.Background()
	store := newTestStore(t)

	first := placement.Joining{
		ID: "join-1", JobID: "job-1", CandidateID: "cand-1",
		DateOfJoining: at(10), Salary: 5_000_000, IsActive: true, CreatedAt: at(10),
	}
	require.NoError(t, store.InsertJoining(ctx, first))

	second := first
	second.ID = "join-2"
	err := store.InsertJoining(ctx, second)
	assert.True(t, placement.IsConflict(err), "expected conflict, got %v", err)

	// An inactive row for the same pair is fine; the index only covers
	// active joinings.
	third := first
	third.ID = "join-3"
	third.IsActive = false
	assert.NoError(t, store.InsertJoining(ctx, third))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction inserting a candidate and a job
	// WHEN: fn returns an error after both inserts
	// THEN: Neither row survives

	ctx := context.Background()
	store := newTestStore(t)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s placement.Store) error {
		if err := s.InsertCandidate(ctx, testCandidate("cand-1", "a@example.com", "9000000001")); err != nil {
			return err
		}
		if err := s.InsertJob(ctx, placement.Job{
			ID: "job-1", CompanyID: "co-1", Title: "x", NumVacancies: 1,
			JobType: placement.FullTime, Status: placement.JobOpen,
			IsActive: true, CreatedAt: at(1), UpdatedAt: at(1),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	cand, err := store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Nil(t, cand)

	job, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestStore_WithTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.WithTx(ctx, func(s placement.Store) error {
		return s.InsertCandidate(ctx, testCandidate("cand-1", "a@example.com", "9000000001"))
	})
	require.NoError(t, err)

	cand, err := store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.NotNil(t, cand)
}

// =============================================================================
// LIST QUERIES
// =============================================================================

func TestStore_ListCandidates_FiltersAndTotal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i, c := range []placement.Candidate{
		testCandidate("cand-1", "a@example.com", "9000000001"),
		testCandidate("cand-2", "b@example.com", "9000000002"),
		testCandidate("cand-3", "c@example.com", "9000000003"),
	} {
		c.CreatedAt = at(i + 1)
		if c.ID == "cand-3" {
			c.Status = placement.CandidateCAPS
		}
		require.NoError(t, store.InsertCandidate(ctx, c))
	}

	// Unfiltered: newest first, total independent of page size.
	items, total, err := store.ListCandidates(ctx, placement.CandidateFilter{
		PageRequest: placement.PageRequest{Page: 1, Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, placement.CandidateID("cand-3"), items[0].ID)

	// Status filter.
	caps := placement.CandidateCAPS
	items, total, err = store.ListCandidates(ctx, placement.CandidateFilter{Status: &caps})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, placement.CandidateID("cand-3"), items[0].ID)

	// Search is case-insensitive over name/email/mobile.
	items, _, err = store.ListCandidates(ctx, placement.CandidateFilter{Query: "B@EXAMPLE"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, placement.CandidateID("cand-2"), items[0].ID)
}

// =============================================================================
// LEDGER PROJECTIONS
// =============================================================================

func TestStore_LedgerEntries_JoinNames(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertCompany(ctx, placement.Company{
		ID: "co-1", Name: "Acme Corp", IsActive: true, CreatedAt: at(1), UpdatedAt: at(1),
	}))
	require.NoError(t, store.InsertCandidate(ctx, testCandidate("cand-1", "a@example.com", "9000000001")))
	require.NoError(t, store.InsertJob(ctx, placement.Job{
		ID: "job-1", CompanyID: "co-1", Title: "Backend Engineer", NumVacancies: 1,
		JobType: placement.FullTime, Status: placement.JobOpen,
		IsActive: true, CreatedAt: at(1), UpdatedAt: at(1),
	}))
	require.NoError(t, store.InsertCompanyPayment(ctx, placement.CompanyPayment{
		ID: "pay-co", CompanyID: "co-1", Amount: 100_000, PaymentDate: at(2),
		IsActive: true, CreatedAt: at(2), UpdatedAt: at(2),
	}))
	require.NoError(t, store.InsertReceivable(ctx, placement.Receivable{
		ID: "rec-1", InterviewID: "iv-1", CandidateID: "cand-1", JobID: "job-1",
		TotalReceivable: 500_000, TotalReceived: 50_000, Balance: 450_000,
		DueDate: at(30), IsActive: true, CreatedAt: at(2), UpdatedAt: at(2),
	}))
	require.NoError(t, store.InsertInstallment(ctx, placement.Installment{
		ID: "ins-1", ReceivableID: "rec-1", Amount: 50_000, PaidDate: at(3),
		Remarks: "first installment", IsActive: true, CreatedAt: at(3), UpdatedAt: at(3),
	}))

	entries, err := store.LedgerEntries(ctx, placement.SourceCompanyPayment)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].CompanyName)
	assert.Equal(t, "Acme Corp", *entries[0].CompanyName)

	entries, err = store.LedgerEntries(ctx, placement.SourcePlacementIncome)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, int64(50_000), e.Amount)
	require.NotNil(t, e.CandidateName)
	require.NotNil(t, e.JobTitle)
	require.NotNil(t, e.CompanyName)
	assert.Equal(t, "Backend Engineer", *e.JobTitle)
	require.NotNil(t, e.Remarks)
	assert.Equal(t, "first installment", *e.Remarks)
}

// =============================================================================
// END TO END THROUGH THE ENGINE
// =============================================================================

func TestStore_EngineMarkJoined_OnSQLite(t *testing.T) {
	// The same scenario the domain tests run against the memory store,
	// proving the SQLite implementation honors the transactional contract.

	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertCompany(ctx, placement.Company{
		ID: "co-1", Name: "Acme Corp", IsActive: true, CreatedAt: at(1), UpdatedAt: at(1),
	}))
	require.NoError(t, store.InsertCandidate(ctx, testCandidate("cand-1", "a@example.com", "9000000001")))
	require.NoError(t, store.InsertJob(ctx, placement.Job{
		ID: "job-1", CompanyID: "co-1", Title: "Backend Engineer", NumVacancies: 1,
		JobType: placement.FullTime, Status: placement.JobOpen,
		IsActive: true, CreatedAt: at(1), UpdatedAt: at(1),
	}))
	require.NoError(t, store.InsertInterview(ctx, placement.Interview{
		ID: "iv-1", CompanyID: "co-1", JobID: "job-1", CandidateID: "cand-1",
		InterviewDate: at(5), Status: placement.InterviewSelected,
		IsActive: true, CreatedAt: at(5), UpdatedAt: at(5),
	}))

	engine := placement.NewEngine(store)
	res, err := engine.MarkJoined(ctx, "iv-1", placement.JoinPayload{
		DateOfJoining:   at(10),
		Salary:          5_000_000,
		TotalReceivable: 1_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, placement.InterviewJoined, res.Interview.Status)

	job, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 0, job.NumVacancies)
	assert.Equal(t, placement.JobFulfilled, job.Status)

	cand, err := store.GetCandidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, placement.Employed, cand.EmploymentStatus)

	rec, err := store.GetReceivable(ctx, res.ReceivableID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(1_000_000), rec.Balance)
}
