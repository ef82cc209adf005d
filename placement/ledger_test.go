package placement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentdesk/placement-engine/placement"
	"github.com/talentdesk/placement-engine/placement/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func day(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

// seedLedger plants one payment per source on three distinct dates:
//
//	company payment    D1 (June 1)  amount 100000
//	candidate payment  D2 (June 2)  amount  20000
//	installment        D3 (June 3)  amount  50000
func seedLedger(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.InsertCompany(ctx, placement.Company{
		ID: "co-1", Name: "Acme Corp", IsActive: true, CreatedAt: day(1),
	}))
	require.NoError(t, mem.InsertCandidate(ctx, placement.Candidate{
		ID: "cand-1", FullName: "Priya Sharma", Email: "priya@example.com",
		MobileNumber: "9000000001", IsActive: true, CreatedAt: day(1),
	}))
	require.NoError(t, mem.InsertJob(ctx, placement.Job{
		ID: "job-1", CompanyID: "co-1", Title: "Backend Engineer",
		IsActive: true, CreatedAt: day(1),
	}))

	require.NoError(t, mem.InsertCompanyPayment(ctx, placement.CompanyPayment{
		ID: "pay-co", CompanyID: "co-1", Amount: 100_000,
		PaymentDate: day(1), IsActive: true, CreatedAt: day(1),
	}))
	require.NoError(t, mem.InsertCandidatePayment(ctx, placement.CandidatePayment{
		ID: "pay-cand", CandidateID: "cand-1", Amount: 20_000,
		PaymentDate: day(2), IsActive: true, CreatedAt: day(2),
	}))
	require.NoError(t, mem.InsertReceivable(ctx, placement.Receivable{
		ID: "rec-1", InterviewID: "iv-1", CandidateID: "cand-1", JobID: "job-1",
		TotalReceivable: 500_000, TotalReceived: 50_000, Balance: 450_000,
		DueDate: day(30), IsActive: true, CreatedAt: day(1),
	}))
	require.NoError(t, mem.InsertInstallment(ctx, placement.Installment{
		ID: "ins-1", ReceivableID: "rec-1", Amount: 50_000,
		PaidDate: day(3), IsActive: true, CreatedAt: day(3),
	}))
	return mem
}

// =============================================================================
// MERGE AND ORDERING
// =============================================================================

func TestLedger_MergesThreeSources_NewestFirst(t *testing.T) {
	// GIVEN: One payment per source on June 3, 2 and 1
	// WHEN: The unfiltered ledger is queried
	// THEN: All three rows come back ordered by payment date descending

	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	page, err := ledger.Query(ctx, placement.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)

	assert.Equal(t, placement.SourcePlacementIncome, page.Items[0].Source)
	assert.Equal(t, placement.SourceCandidatePayment, page.Items[1].Source)
	assert.Equal(t, placement.SourceCompanyPayment, page.Items[2].Source)
}

func TestLedger_SamePaymentDate_CreatedAtBreaksTie(t *testing.T) {
	// GIVEN: Two company payments on the same date, created an hour apart
	// WHEN: The ledger is queried
	// THEN: The more recently created row comes first

	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.InsertCompany(ctx, placement.Company{
		ID: "co-1", Name: "Acme Corp", IsActive: true, CreatedAt: day(1),
	}))
	require.NoError(t, mem.InsertCompanyPayment(ctx, placement.CompanyPayment{
		ID: "pay-early", CompanyID: "co-1", Amount: 1_000,
		PaymentDate: day(5), IsActive: true, CreatedAt: day(5).Add(1 * time.Hour),
	}))
	require.NoError(t, mem.InsertCompanyPayment(ctx, placement.CompanyPayment{
		ID: "pay-late", CompanyID: "co-1", Amount: 2_000,
		PaymentDate: day(5), IsActive: true, CreatedAt: day(5).Add(2 * time.Hour),
	}))

	page, err := placement.NewLedger(mem).Query(ctx, placement.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "pay-late", page.Items[0].ID)
	assert.Equal(t, "pay-early", page.Items[1].ID)
}

func TestLedger_EntriesCarryJoinedNames(t *testing.T) {
	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	page, err := ledger.Query(ctx, placement.LedgerFilter{})
	require.NoError(t, err)

	for _, e := range page.Items {
		switch e.Source {
		case placement.SourceCompanyPayment:
			require.NotNil(t, e.CompanyName)
			assert.Equal(t, "Acme Corp", *e.CompanyName)
		case placement.SourceCandidatePayment:
			require.NotNil(t, e.CandidateName)
			assert.Equal(t, "Priya Sharma", *e.CandidateName)
		case placement.SourcePlacementIncome:
			require.NotNil(t, e.JobTitle)
			assert.Equal(t, "Backend Engineer", *e.JobTitle)
			require.NotNil(t, e.CompanyName)
			assert.Equal(t, "Acme Corp", *e.CompanyName)
			require.NotNil(t, e.PlacementIncomeID)
			assert.Equal(t, placement.ReceivableID("rec-1"), *e.PlacementIncomeID)
		}
	}
}

// =============================================================================
// FILTERS
// =============================================================================

func TestLedger_SourceFilter(t *testing.T) {
	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	page, err := ledger.Query(ctx, placement.LedgerFilter{
		Sources: []placement.PaymentSource{placement.SourceCandidatePayment},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "pay-cand", page.Items[0].ID)
	assert.Equal(t, 1, page.Total)
}

func TestLedger_DateBounds_Inclusive(t *testing.T) {
	// GIVEN: Payments on June 1, 2 and 3
	// WHEN: Filtering start=June 2, end=June 3
	// THEN: Both boundary days are included, June 1 is not

	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	start, end := day(2), day(3)
	page, err := ledger.Query(ctx, placement.LedgerFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ins-1", page.Items[0].ID)
	assert.Equal(t, "pay-cand", page.Items[1].ID)
}

func TestLedger_AmountBounds_Inclusive(t *testing.T) {
	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	min, max := int64(20_000), int64(50_000)
	page, err := ledger.Query(ctx, placement.LedgerFilter{MinAmount: &min, MaxAmount: &max})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestLedger_CandidateFilter_SpansSources(t *testing.T) {
	// GIVEN: The candidate has both a direct payment and an installment
	//        against their placement receivable
	// WHEN: Filtering by candidate
	// THEN: Both rows come back, the company payment does not

	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	candID := placement.CandidateID("cand-1")
	page, err := ledger.Query(ctx, placement.LedgerFilter{CandidateID: &candID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, e := range page.Items {
		assert.NotEqual(t, placement.SourceCompanyPayment, e.Source)
	}
}

func TestLedger_InactiveExcludedByDefault(t *testing.T) {
	// GIVEN: A soft-deleted company payment
	// WHEN: The ledger is queried with and without IncludeInactive
	// THEN: The row only appears when explicitly requested

	ctx := context.Background()
	mem := seedLedger(t)
	require.NoError(t, mem.InsertCompanyPayment(ctx, placement.CompanyPayment{
		ID: "pay-deleted", CompanyID: "co-1", Amount: 9_999,
		PaymentDate: day(4), IsActive: false, CreatedAt: day(4),
	}))
	ledger := placement.NewLedger(mem)

	page, err := ledger.Query(ctx, placement.LedgerFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = ledger.Query(ctx, placement.LedgerFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "pay-deleted", page.Items[0].ID)
}

// =============================================================================
// PAGINATION ENVELOPE
// =============================================================================

func TestLedger_Pagination_TotalIndependentOfPage(t *testing.T) {
	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	page, err := ledger.Query(ctx, placement.LedgerFilter{
		PageRequest: placement.PageRequest{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "pay-co", page.Items[0].ID)
}

func TestLedger_PageBeyondEnd_EmptyItems(t *testing.T) {
	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	page, err := ledger.Query(ctx, placement.LedgerFilter{
		PageRequest: placement.PageRequest{Page: 10, Limit: 50},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
}

func TestLedger_LimitClampedTo100(t *testing.T) {
	ctx := context.Background()
	ledger := placement.NewLedger(seedLedger(t))

	page, err := ledger.Query(ctx, placement.LedgerFilter{
		PageRequest: placement.PageRequest{Page: 1, Limit: 5000},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)

	page, err = ledger.Query(ctx, placement.LedgerFilter{
		PageRequest: placement.PageRequest{Page: 0, Limit: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
}
