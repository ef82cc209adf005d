/*
fees.go - Fee-structure and receivable lifecycle rules

PURPOSE:
  Owns the money-side rules around candidates and placements, independent
  of how a payment was captured:

  - candidate creation/update rules per registration track
      JOC:        fee structure mandatory at creation; updates either
                  create the (at most one) fee structure or edit it in place
      REGISTERED: no fee structure; optional payment appended on update
      CAPS/FREE:  neither fee structure nor payment accepted on update
  - initial payment mandatory at creation for REGISTERED and JOC
  - installments against a placement-income receivable, with the balance
    invariant total_received + balance == total_receivable and overpayment
    rejected before anything is written

KNOWN INCONSISTENCY:
  Editing a JOC fee structure's total_fee does NOT recompute its balance
  against payments already posted; see the marked site in UpdateCandidate.
  The placement-income balance invariant is NOT affected by this.
*/
package placement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FeeStructureInput is the fee-schedule payload accepted on candidate
// create/update for the JOC track.
type FeeStructureInput struct {
	TotalFee int64
	DueDate  *time.Time
}

// PaymentInput is a generic money-received payload.
type PaymentInput struct {
	Amount      int64
	PaymentDate time.Time
	Remarks     string
}

// CandidateInput is the creation payload for a candidate.
type CandidateInput struct {
	FullName        string
	Email           string
	MobileNumber    string
	Qualification   string
	ExperienceYears float64
	Skills          []string
	ExpectedSalary  int64
	Notes           string
	Status          CandidateStatus

	FeeStructure   *FeeStructureInput
	InitialPayment *PaymentInput
}

// CandidateUpdate is a partial update; nil fields are left unchanged.
type CandidateUpdate struct {
	FullName        *string
	Email           *string
	MobileNumber    *string
	Qualification   *string
	ExperienceYears *float64
	Skills          []string
	ExpectedSalary  *int64
	Notes           *string
	Status          *CandidateStatus

	FeeStructure   *FeeStructureInput
	InitialPayment *PaymentInput
}

// Fees owns the fee/receivable lifecycle.
type Fees struct {
	store TxStore
	now   func() time.Time
}

// NewFees creates the lifecycle manager over the given store.
func NewFees(store TxStore) *Fees {
	return &Fees{store: store, now: time.Now}
}

// CreateCandidate registers a candidate and, depending on the track, its
// fee structure and initial payment, in one transaction.
func (f *Fees) CreateCandidate(ctx context.Context, in CandidateInput) (*CandidateDetail, error) {
	if _, err := ParseCandidateStatus(string(in.Status)); err != nil {
		return nil, err
	}
	if in.Status == CandidateJOC && in.FeeStructure == nil {
		return nil, &ValidationError{Field: "fee_structure", Message: "fee_structure is required for JOC candidates"}
	}
	if (in.Status == CandidateRegistered || in.Status == CandidateJOC) && in.InitialPayment == nil {
		return nil, &ValidationError{Field: "initial_payment", Message: "initial_payment is required for REGISTERED and JOC candidates"}
	}
	if in.FeeStructure != nil && in.FeeStructure.TotalFee <= 0 {
		return nil, &ValidationError{Field: "fee_structure.total_fee", Message: "total_fee must be greater than zero"}
	}
	if in.InitialPayment != nil {
		if err := validatePayment(*in.InitialPayment); err != nil {
			return nil, err
		}
	}

	now := f.now().UTC()
	cand := Candidate{
		ID:               CandidateID(uuid.NewString()),
		FullName:         in.FullName,
		Email:            in.Email,
		MobileNumber:     in.MobileNumber,
		Qualification:    in.Qualification,
		ExperienceYears:  in.ExperienceYears,
		Skills:           in.Skills,
		ExpectedSalary:   in.ExpectedSalary,
		Notes:            in.Notes,
		Status:           in.Status,
		EmploymentStatus: Unemployed,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := f.store.WithTx(ctx, func(s Store) error {
		if err := s.InsertCandidate(ctx, cand); err != nil {
			return err
		}
		// Fee structure and payment only matter for the tracks checked
		// above; for CAPS/FREE any supplied payloads are ignored.
		if in.Status == CandidateJOC {
			if err := s.InsertFeeStructure(ctx, FeeStructure{
				ID:          uuid.NewString(),
				CandidateID: cand.ID,
				TotalFee:    in.FeeStructure.TotalFee,
				Balance:     in.FeeStructure.TotalFee,
				DueDate:     in.FeeStructure.DueDate,
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		}
		if in.Status == CandidateRegistered || in.Status == CandidateJOC {
			if err := s.InsertCandidatePayment(ctx, CandidatePayment{
				ID:          uuid.NewString(),
				CandidateID: cand.ID,
				Amount:      in.InitialPayment.Amount,
				PaymentDate: in.InitialPayment.PaymentDate,
				Remarks:     in.InitialPayment.Remarks,
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f.store.GetCandidateDetail(ctx, cand.ID)
}

// UpdateCandidate applies a partial update under the track-dependent rules.
func (f *Fees) UpdateCandidate(ctx context.Context, id CandidateID, in CandidateUpdate) (*CandidateDetail, error) {
	err := f.store.WithTx(ctx, func(s Store) error {
		cand, err := s.GetCandidate(ctx, id)
		if err != nil {
			return err
		}
		if cand == nil || !cand.IsActive {
			return &NotFoundError{Entity: "candidate", ID: string(id)}
		}

		applyCandidateUpdate(cand, in)
		effective := cand.Status

		switch effective {
		case CandidateCAPS, CandidateFree:
			if in.FeeStructure != nil || in.InitialPayment != nil {
				return &ValidationError{Field: "status", Message: "fee_structure and initial_payment are not allowed for CAPS/FREE"}
			}
		case CandidateRegistered:
			if in.FeeStructure != nil {
				return &ValidationError{Field: "fee_structure", Message: "fee_structure is not allowed for REGISTERED"}
			}
		}

		cand.UpdatedAt = f.now().UTC()
		if err := s.UpdateCandidate(ctx, *cand); err != nil {
			return err
		}

		if effective == CandidateJOC && in.FeeStructure != nil {
			if in.FeeStructure.TotalFee <= 0 {
				return &ValidationError{Field: "fee_structure.total_fee", Message: "total_fee must be greater than zero"}
			}
			fs, err := s.FeeStructureByCandidate(ctx, cand.ID)
			if err != nil {
				return err
			}
			now := f.now().UTC()
			if fs == nil {
				if err := s.InsertFeeStructure(ctx, FeeStructure{
					ID:          uuid.NewString(),
					CandidateID: cand.ID,
					TotalFee:    in.FeeStructure.TotalFee,
					Balance:     in.FeeStructure.TotalFee,
					DueDate:     in.FeeStructure.DueDate,
					IsActive:    true,
					CreatedAt:   now,
					UpdatedAt:   now,
				}); err != nil {
					return err
				}
			} else {
				// Balance is deliberately left alone here: changing
				// total_fee does not reconcile against payments already
				// posted, so the JOC balance can drift from total_fee
				// minus payments.
				fs.TotalFee = in.FeeStructure.TotalFee
				fs.DueDate = in.FeeStructure.DueDate
				fs.UpdatedAt = now
				if err := s.UpdateFeeStructure(ctx, *fs); err != nil {
					return err
				}
			}
		}

		if (effective == CandidateRegistered || effective == CandidateJOC) && in.InitialPayment != nil {
			if err := validatePayment(*in.InitialPayment); err != nil {
				return err
			}
			now := f.now().UTC()
			if err := s.InsertCandidatePayment(ctx, CandidatePayment{
				ID:          uuid.NewString(),
				CandidateID: cand.ID,
				Amount:      in.InitialPayment.Amount,
				PaymentDate: in.InitialPayment.PaymentDate,
				Remarks:     in.InitialPayment.Remarks,
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f.store.GetCandidateDetail(ctx, id)
}

// DeactivateCandidate soft-deletes a candidate. Its payments and fee
// structure are owned exclusively by the candidate but are not touched;
// they simply become unreachable through active-candidate reads.
func (f *Fees) DeactivateCandidate(ctx context.Context, id CandidateID) (*CandidateDetail, error) {
	err := f.store.WithTx(ctx, func(s Store) error {
		cand, err := s.GetCandidate(ctx, id)
		if err != nil {
			return err
		}
		if cand == nil || !cand.IsActive {
			return &NotFoundError{Entity: "candidate", ID: string(id)}
		}
		cand.IsActive = false
		cand.UpdatedAt = f.now().UTC()
		return s.UpdateCandidate(ctx, *cand)
	})
	if err != nil {
		return nil, err
	}
	return f.store.GetCandidateDetail(ctx, id)
}

// PostInstallment applies a payment against a placement-income receivable.
// Overpayment is rejected before any write; on success the receivable's
// running totals move together so total_received + balance stays equal to
// total_receivable.
func (f *Fees) PostInstallment(ctx context.Context, id ReceivableID, in PaymentInput) (*Installment, *Receivable, error) {
	if err := validatePayment(in); err != nil {
		return nil, nil, err
	}

	var (
		posted  Installment
		updated Receivable
	)
	err := f.store.WithTx(ctx, func(s Store) error {
		rec, err := s.GetReceivable(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil || !rec.IsActive {
			return &NotFoundError{Entity: "placement income", ID: string(id)}
		}
		if in.Amount > rec.Balance {
			return &ConflictError{Reason: "installment exceeds outstanding balance"}
		}

		now := f.now().UTC()
		posted = Installment{
			ID:           uuid.NewString(),
			ReceivableID: rec.ID,
			Amount:       in.Amount,
			PaidDate:     in.PaymentDate,
			Remarks:      in.Remarks,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.InsertInstallment(ctx, posted); err != nil {
			return err
		}

		rec.TotalReceived += in.Amount
		rec.Balance -= in.Amount
		rec.UpdatedAt = now
		if err := s.UpdateReceivable(ctx, *rec); err != nil {
			return err
		}
		updated = *rec
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &posted, &updated, nil
}

func validatePayment(p PaymentInput) error {
	if p.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	if p.PaymentDate.IsZero() {
		return &ValidationError{Field: "payment_date", Message: "payment_date is required"}
	}
	return nil
}

func applyCandidateUpdate(c *Candidate, in CandidateUpdate) {
	if in.FullName != nil {
		c.FullName = *in.FullName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.MobileNumber != nil {
		c.MobileNumber = *in.MobileNumber
	}
	if in.Qualification != nil {
		c.Qualification = *in.Qualification
	}
	if in.ExperienceYears != nil {
		c.ExperienceYears = *in.ExperienceYears
	}
	if in.Skills != nil {
		c.Skills = in.Skills
	}
	if in.ExpectedSalary != nil {
		c.ExpectedSalary = *in.ExpectedSalary
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
}
