/*
engine.go - The placement transition engine

PURPOSE:
  Applies an interview status change. Only the JOINED target carries side
  effects; it is a finite-state transition, not a general state machine.

MARKJOINED PRECONDITIONS (checked in order, first failure wins):
  1. payload supplies date-of-joining, salary > 0, total receivable > 0
  2. interview, job and candidate exist and are active
  3. candidate is not already EMPLOYED
  4. job has vacancies left
  5. no active joining exists for (job, candidate)

MARKJOINED EFFECTS (one transaction, all or nothing):
  1. insert the joining record
  2. create the placement-income receivable, or reuse an active one
     already attached to the interview
  3. decrement job vacancies (floor 0); at 0 the job becomes FULFILLED
  4. candidate becomes EMPLOYED
  5. interview becomes JOINED

CONCURRENCY:
  Checks and effects share one WithTx scope; the store serializes writers
  and its partial unique index on active (job_id, candidate_id) joinings is
  the backstop, so two racing joins for the last vacancy cannot both land.

SEE ALSO:
  - fees.go:   receivable installments post through Fees, not here
  - store.go:  the transactional contract this relies on
*/
package placement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JoinPayload carries the extra fields required when an interview moves
// to JOINED.
type JoinPayload struct {
	DateOfJoining    time.Time
	Salary           int64
	TotalReceivable  int64
	DueDate          *time.Time // defaults to DateOfJoining
	PlacementRemarks string
}

// StatusChange is an interview status update request. Join must be set
// when Status is JOINED and is ignored otherwise.
type StatusChange struct {
	Status InterviewStatus
	Join   *JoinPayload
}

// Engine applies interview outcome transitions.
type Engine struct {
	store TxStore
	now   func() time.Time
}

// NewEngine creates an engine over the given transactional store.
func NewEngine(store TxStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// TransitionStatus applies a status change to an interview. JOINED routes
// through MarkJoined; every other status is plain assignment guarded only
// by "interview exists and is active".
func (e *Engine) TransitionStatus(ctx context.Context, id InterviewID, change StatusChange) (*JoinResult, error) {
	if change.Status == InterviewJoined {
		if change.Join == nil {
			return nil, &ValidationError{Field: "join", Message: "doj, salary and placement_total_receivable are required when status is JOINED"}
		}
		return e.MarkJoined(ctx, id, *change.Join)
	}

	var updated *Interview
	err := e.store.WithTx(ctx, func(s Store) error {
		iv, err := activeInterview(ctx, s, id)
		if err != nil {
			return err
		}
		iv.Status = change.Status
		iv.UpdatedAt = e.now().UTC()
		if err := s.UpdateInterview(ctx, *iv); err != nil {
			return err
		}
		updated = iv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &JoinResult{Interview: *updated}, nil
}

// MarkJoined moves an interview to JOINED and applies the placement side
// effects atomically. On success it returns the updated interview and the
// id of the receivable created (or reused) for it.
func (e *Engine) MarkJoined(ctx context.Context, id InterviewID, payload JoinPayload) (*JoinResult, error) {
	if err := validateJoinPayload(payload); err != nil {
		return nil, err
	}

	var result JoinResult
	err := e.store.WithTx(ctx, func(s Store) error {
		iv, err := activeInterview(ctx, s, id)
		if err != nil {
			return err
		}

		job, err := s.GetJob(ctx, iv.JobID)
		if err != nil {
			return err
		}
		if job == nil || !job.IsActive {
			return &NotFoundError{Entity: "job", ID: string(iv.JobID)}
		}

		cand, err := s.GetCandidate(ctx, iv.CandidateID)
		if err != nil {
			return err
		}
		if cand == nil || !cand.IsActive {
			return &NotFoundError{Entity: "candidate", ID: string(iv.CandidateID)}
		}

		if cand.EmploymentStatus == Employed {
			return &ConflictError{Reason: "candidate is already EMPLOYED and cannot be joined to another job"}
		}
		if job.NumVacancies <= 0 {
			return &ValidationError{Field: "job", Message: "no vacancies available for this job"}
		}

		// In-code idempotency guard. The store's partial unique index on
		// active (job_id, candidate_id) pairs is the backstop under race.
		joined, err := s.HasActiveJoining(ctx, job.ID, cand.ID)
		if err != nil {
			return err
		}
		if joined {
			return &ConflictError{Reason: "candidate already marked as JOINED for this job"}
		}

		now := e.now().UTC()

		if err := s.InsertJoining(ctx, Joining{
			ID:            uuid.NewString(),
			JobID:         job.ID,
			CandidateID:   cand.ID,
			DateOfJoining: payload.DateOfJoining,
			Salary:        payload.Salary,
			IsActive:      true,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		// Re-entry into JOINED after a prior successful run reuses the
		// existing receivable instead of duplicating it.
		existing, err := s.ActiveReceivableByInterview(ctx, iv.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			result.ReceivableID = existing.ID
		} else {
			due := payload.DateOfJoining
			if payload.DueDate != nil {
				due = *payload.DueDate
			}
			rec := Receivable{
				ID:              ReceivableID(uuid.NewString()),
				InterviewID:     iv.ID,
				CandidateID:     cand.ID,
				JobID:           job.ID,
				TotalReceivable: payload.TotalReceivable,
				TotalReceived:   0,
				Balance:         payload.TotalReceivable,
				DueDate:         due,
				Remarks:         payload.PlacementRemarks,
				IsActive:        true,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := s.InsertReceivable(ctx, rec); err != nil {
				return err
			}
			result.ReceivableID = rec.ID
		}

		job.NumVacancies--
		if job.NumVacancies < 0 {
			job.NumVacancies = 0
		}
		if job.NumVacancies == 0 {
			job.Status = JobFulfilled
		}
		job.UpdatedAt = now
		if err := s.UpdateJob(ctx, *job); err != nil {
			return err
		}

		cand.EmploymentStatus = Employed
		cand.UpdatedAt = now
		if err := s.UpdateCandidate(ctx, *cand); err != nil {
			return err
		}

		iv.Status = InterviewJoined
		iv.UpdatedAt = now
		if err := s.UpdateInterview(ctx, *iv); err != nil {
			return err
		}

		result.Interview = *iv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func validateJoinPayload(p JoinPayload) error {
	if p.DateOfJoining.IsZero() {
		return &ValidationError{Field: "doj", Message: "doj is required when status is JOINED"}
	}
	if p.Salary <= 0 {
		return &ValidationError{Field: "salary", Message: "salary must be greater than zero"}
	}
	if p.TotalReceivable <= 0 {
		return &ValidationError{Field: "placement_total_receivable", Message: "placement_total_receivable must be greater than zero"}
	}
	return nil
}

func activeInterview(ctx context.Context, s Store, id InterviewID) (*Interview, error) {
	iv, err := s.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv == nil || !iv.IsActive {
		return nil, &NotFoundError{Entity: "interview", ID: string(id)}
	}
	return iv, nil
}
