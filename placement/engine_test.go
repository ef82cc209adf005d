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
// TEST HELPERS
// =============================================================================

type fixture struct {
	store     *store.Memory
	company   placement.Company
	candidate placement.Candidate
	job       placement.Job
	interview placement.Interview
}

// newJoinFixture seeds one company, one open job with the given vacancies,
// one unemployed candidate and one SELECTED interview linking them.
func newJoinFixture(t *testing.T, vacancies int) fixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	f := fixture{store: mem}
	f.company = placement.Company{
		ID:        "co-1",
		Name:      "Acme Corp",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, mem.InsertCompany(ctx, f.company))

	f.candidate = placement.Candidate{
		ID:               "cand-1",
		FullName:         "Priya Sharma",
		Email:            "priya@example.com",
		MobileNumber:     "9000000001",
		Status:           placement.CandidateRegistered,
		EmploymentStatus: placement.Unemployed,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, mem.InsertCandidate(ctx, f.candidate))

	f.job = placement.Job{
		ID:           "job-1",
		CompanyID:    f.company.ID,
		Title:        "Backend Engineer",
		NumVacancies: vacancies,
		JobType:      placement.FullTime,
		Status:       placement.JobOpen,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, mem.InsertJob(ctx, f.job))

	f.interview = placement.Interview{
		ID:            "iv-1",
		CompanyID:     f.company.ID,
		JobID:         f.job.ID,
		CandidateID:   f.candidate.ID,
		InterviewDate: now.AddDate(0, 0, -7),
		Status:        placement.InterviewSelected,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, mem.InsertInterview(ctx, f.interview))
	return f
}

func joinPayload() placement.JoinPayload {
	return placement.JoinPayload{
		DateOfJoining:   time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		Salary:          5_000_000,
		TotalReceivable: 1_500_000,
	}
}

// =============================================================================
// MARK JOINED - HAPPY PATH
// =============================================================================

func TestMarkJoined_AppliesAllEffectsAtomically(t *testing.T) {
	// GIVEN: A SELECTED interview for an open job with 2 vacancies
	// WHEN: The interview moves to JOINED
	// THEN: Joining, receivable, vacancy decrement, EMPLOYED candidate and
	//       JOINED interview all land together

	ctx := context.Background()
	f := newJoinFixture(t, 2)
	engine := placement.NewEngine(f.store)

	res, err := engine.MarkJoined(ctx, f.interview.ID, joinPayload())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, placement.InterviewJoined, res.Interview.Status)
	assert.NotEmpty(t, res.ReceivableID)

	rec, err := f.store.GetReceivable(ctx, res.ReceivableID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(1_500_000), rec.TotalReceivable)
	assert.Equal(t, int64(0), rec.TotalReceived)
	assert.Equal(t, int64(1_500_000), rec.Balance)
	assert.Equal(t, f.interview.ID, rec.InterviewID)
	// Due date defaults to the joining date when not supplied.
	assert.Equal(t, joinPayload().DateOfJoining, rec.DueDate)

	job, err := f.store.GetJob(ctx, f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, job.NumVacancies)
	assert.Equal(t, placement.JobOpen, job.Status)

	cand, err := f.store.GetCandidate(ctx, f.candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, placement.Employed, cand.EmploymentStatus)

	joined, err := f.store.HasActiveJoining(ctx, f.job.ID, f.candidate.ID)
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestMarkJoined_LastVacancy_JobBecomesFulfilled(t *testing.T) {
	// GIVEN: A job with exactly 1 vacancy
	// WHEN: The joining lands
	// THEN: Vacancies hit 0 and the job flips to FULFILLED

	ctx := context.Background()
	f := newJoinFixture(t, 1)
	engine := placement.NewEngine(f.store)

	_, err := engine.MarkJoined(ctx, f.interview.ID, joinPayload())
	require.NoError(t, err)

	job, err := f.store.GetJob(ctx, f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, job.NumVacancies)
	assert.Equal(t, placement.JobFulfilled, job.Status)
}

func TestMarkJoined_ExplicitDueDate_Used(t *testing.T) {
	// GIVEN: A join payload with an explicit receivable due date
	// WHEN: The joining lands
	// THEN: The receivable carries that date, not the joining date

	ctx := context.Background()
	f := newJoinFixture(t, 1)
	engine := placement.NewEngine(f.store)

	due := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)
	p := joinPayload()
	p.DueDate = &due

	res, err := engine.MarkJoined(ctx, f.interview.ID, p)
	require.NoError(t, err)

	rec, err := f.store.GetReceivable(ctx, res.ReceivableID)
	require.NoError(t, err)
	assert.Equal(t, due, rec.DueDate)
}

// =============================================================================
// MARK JOINED - PRECONDITIONS
// =============================================================================

func TestMarkJoined_MissingPayload_ValidationError(t *testing.T) {
	// GIVEN: A JOINED transition without the join payload
	// WHEN: TransitionStatus runs
	// THEN: Validation error before anything is read or written

	ctx := context.Background()
	f := newJoinFixture(t, 1)
	engine := placement.NewEngine(f.store)

	_, err := engine.TransitionStatus(ctx, f.interview.ID, placement.StatusChange{
		Status: placement.InterviewJoined,
	})
	assert.True(t, placement.IsValidation(err), "expected validation error, got %v", err)
}

func TestMarkJoined_InvalidPayloadFields_ValidationError(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t, 1)
	engine := placement.NewEngine(f.store)

	cases := []struct {
		name   string
		mutate func(*placement.JoinPayload)
	}{
		{"missing doj", func(p *placement.JoinPayload) { p.DateOfJoining = time.Time{} }},
		{"zero salary", func(p *placement.JoinPayload) { p.Salary = 0 }},
		{"negative salary", func(p *placement.JoinPayload) { p.Salary = -100 }},
		{"zero receivable", func(p *placement.JoinPayload) { p.TotalReceivable = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := joinPayload()
			tc.mutate(&p)
			_, err := engine.MarkJoined(ctx, f.interview.ID, p)
			assert.True(t, placement.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestMarkJoined_UnknownInterview_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t, 1)
	engine := placement.NewEngine(f.store)

	_, err := engine.MarkJoined(ctx, "iv-missing", joinPayload())
	assert.True(t, placement.IsNotFound(err), "expected not-found, got %v", err)
}

func TestMarkJoined_AlreadyEmployedCandidate_Conflict(t *testing.T) {
	// GIVEN: The candidate is already EMPLOYED through another placement
	// WHEN: A second join is attempted
	// THEN: Conflict, and the job's vacancies are untouched

	ctx := context.Background()
	f := newJoinFixture(t, 3)

	cand := f.candidate
	cand.EmploymentStatus = placement.Employed
	require.NoError(t, f.store.UpdateCandidate(ctx, cand))

	engine := placement.NewEngine(f.store)
	_, err := engine.MarkJoined(ctx, f.interview.ID, joinPayload())
	assert.True(t, placement.IsConflict(err), "expected conflict, got %v", err)

	job, err := f.store.GetJob(ctx, f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, job.NumVacancies)
}

func TestMarkJoined_NoVacancies_ValidationError(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t, 0)
	engine := placement.NewEngine(f.store)

	_, err := engine.MarkJoined(ctx, f.interview.ID, joinPayload())
	assert.True(t, placement.IsValidation(err), "expected validation error, got %v", err)
}

func TestMarkJoined_DuplicateJoin_ConflictAndStateUnchanged(t *testing.T) {
	// GIVEN: A successful joining for (job, candidate)
	// WHEN: A second interview for the same pair also moves to JOINED
	// THEN: Conflict, and none of the second transition's effects survive

	ctx := context.Background()
	f := newJoinFixture(t, 5)
	engine := placement.NewEngine(f.store)

	_, err := engine.MarkJoined(ctx, f.interview.ID, joinPayload())
	require.NoError(t, err)

	// The first join made the candidate EMPLOYED; reset employment to
	// isolate the duplicate-joining check from the employment check.
	cand, err := f.store.GetCandidate(ctx, f.candidate.ID)
	require.NoError(t, err)
	cand.EmploymentStatus = placement.Unemployed
	require.NoError(t, f.store.UpdateCandidate(ctx, *cand))

	second := placement.Interview{
		ID:            "iv-2",
		CompanyID:     f.company.ID,
		JobID:         f.job.ID,
		CandidateID:   f.candidate.ID,
		InterviewDate: time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
		Status:        placement.InterviewSelected,
		IsActive:      true,
		CreatedAt:     time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.InsertInterview(ctx, second))

	_, err = engine.MarkJoined(ctx, second.ID, joinPayload())
	assert.True(t, placement.IsConflict(err), "expected conflict, got %v", err)

	// Rollback check: the failed transition must not have consumed a
	// vacancy or touched the second interview.
	job, err := f.store.GetJob(ctx, f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, job.NumVacancies)

	iv, err := f.store.GetInterview(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, placement.InterviewSelected, iv.Status)
}

func TestMarkJoined_ReusesExistingReceivable(t *testing.T) {
	// GIVEN: An active receivable already attached to the interview
	// WHEN: The interview moves to JOINED
	// THEN: The existing receivable is reused, not duplicated

	ctx := context.Background()
	f := newJoinFixture(t, 1)

	existing := placement.Receivable{
		ID:              "rec-pre",
		InterviewID:     f.interview.ID,
		CandidateID:     f.candidate.ID,
		JobID:           f.job.ID,
		TotalReceivable: 999_999,
		Balance:         999_999,
		DueDate:         time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		IsActive:        true,
		CreatedAt:       time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.InsertReceivable(ctx, existing))

	engine := placement.NewEngine(f.store)
	res, err := engine.MarkJoined(ctx, f.interview.ID, joinPayload())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.ReceivableID)

	rec, err := f.store.GetReceivable(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(999_999), rec.TotalReceivable, "reused receivable must keep its amounts")
}

// =============================================================================
// PLAIN STATUS TRANSITIONS
// =============================================================================

func TestTransitionStatus_NonJoined_PlainAssignment(t *testing.T) {
	// GIVEN: A SCHEDULED interview
	// WHEN: It moves to REJECTED
	// THEN: Only the status changes, no side effects fire

	ctx := context.Background()
	f := newJoinFixture(t, 1)
	engine := placement.NewEngine(f.store)

	res, err := engine.TransitionStatus(ctx, f.interview.ID, placement.StatusChange{
		Status: placement.InterviewRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, placement.InterviewRejected, res.Interview.Status)

	job, err := f.store.GetJob(ctx, f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, job.NumVacancies)

	cand, err := f.store.GetCandidate(ctx, f.candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, placement.Unemployed, cand.EmploymentStatus)
}

func TestTransitionStatus_InactiveInterview_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t, 1)

	iv := f.interview
	iv.IsActive = false
	require.NoError(t, f.store.UpdateInterview(ctx, iv))

	engine := placement.NewEngine(f.store)
	_, err := engine.TransitionStatus(ctx, f.interview.ID, placement.StatusChange{
		Status: placement.InterviewCompleted,
	})
	assert.True(t, placement.IsNotFound(err), "expected not-found, got %v", err)
}
