package sqlite

import (
	"context"
	"database/sql"

	"github.com/talentdesk/placement-engine/placement"
)

// =============================================================================
// PLACEMENT-INCOME RECEIVABLES
// =============================================================================

const receivableColumns = `id, interview_id, candidate_id, job_id, total_receivable,
	total_received, balance, due_date, remarks, is_active, created_at, updated_at`

func (s *Store) InsertReceivable(ctx context.Context, r placement.Receivable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertReceivable(ctx, s.db, r)
}

func (s *Store) insertReceivable(ctx context.Context, db dbtx, r placement.Receivable) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO placement_incomes (`+receivableColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.InterviewID, r.CandidateID, r.JobID, r.TotalReceivable,
		r.TotalReceived, r.Balance, fmtTime(r.DueDate), r.Remarks,
		r.IsActive, fmtTime(r.CreatedAt), fmtTime(r.UpdatedAt),
	)
	return translateConstraint(err, "insert placement income")
}

func (s *Store) GetReceivable(ctx context.Context, id placement.ReceivableID) (*placement.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getReceivable(ctx, s.db, id)
}

func (s *Store) getReceivable(ctx context.Context, db dbtx, id placement.ReceivableID) (*placement.Receivable, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+receivableColumns+" FROM placement_incomes WHERE id = ?", id)
	r, err := scanReceivable(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ActiveReceivableByInterview(ctx context.Context, id placement.InterviewID) (*placement.Receivable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeReceivableByInterview(ctx, s.db, id)
}

func (s *Store) activeReceivableByInterview(ctx context.Context, db dbtx, id placement.InterviewID) (*placement.Receivable, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+receivableColumns+" FROM placement_incomes WHERE interview_id = ? AND is_active = 1", id)
	r, err := scanReceivable(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) UpdateReceivable(ctx context.Context, r placement.Receivable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateReceivable(ctx, s.db, r)
}

func (s *Store) updateReceivable(ctx context.Context, db dbtx, r placement.Receivable) error {
	_, err := db.ExecContext(ctx, `
		UPDATE placement_incomes
		SET total_receivable = ?, total_received = ?, balance = ?, due_date = ?,
		    remarks = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		r.TotalReceivable, r.TotalReceived, r.Balance, fmtTime(r.DueDate),
		r.Remarks, r.IsActive, fmtTime(r.UpdatedAt), r.ID,
	)
	return translateConstraint(err, "update placement income")
}

func (s *Store) ListReceivables(ctx context.Context, f placement.ReceivableFilter) ([]placement.Receivable, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listReceivables(ctx, s.db, f)
}

func (s *Store) listReceivables(ctx context.Context, db dbtx, f placement.ReceivableFilter) ([]placement.Receivable, int, error) {
	page := f.PageRequest.Normalize()

	where := "WHERE is_active = 1"
	args := []any{}
	if f.CandidateID != nil {
		where += " AND candidate_id = ?"
		args = append(args, *f.CandidateID)
	}
	if f.JobID != nil {
		where += " AND job_id = ?"
		args = append(args, *f.JobID)
	}
	if f.Outstanding {
		where += " AND balance > 0"
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM placement_incomes "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+receivableColumns+" FROM placement_incomes "+where+`
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var receivables []placement.Receivable
	for rows.Next() {
		r, err := scanReceivable(rows)
		if err != nil {
			return nil, 0, err
		}
		receivables = append(receivables, *r)
	}
	return receivables, total, rows.Err()
}

func scanReceivable(sc rowScanner) (*placement.Receivable, error) {
	var r placement.Receivable
	var dueDate, createdAt, updatedAt string
	err := sc.Scan(&r.ID, &r.InterviewID, &r.CandidateID, &r.JobID, &r.TotalReceivable,
		&r.TotalReceived, &r.Balance, &dueDate, &r.Remarks, &r.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.DueDate = parseTime(dueDate)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

// =============================================================================
// INSTALLMENTS
// =============================================================================

func (s *Store) InsertInstallment(ctx context.Context, ins placement.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertInstallment(ctx, s.db, ins)
}

func (s *Store) insertInstallment(ctx context.Context, db dbtx, ins placement.Installment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO installments (id, placement_income_id, amount, paid_date, remarks, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ins.ID, ins.ReceivableID, ins.Amount, fmtTime(ins.PaidDate), ins.Remarks,
		ins.IsActive, fmtTime(ins.CreatedAt), fmtTime(ins.UpdatedAt),
	)
	return translateConstraint(err, "insert installment")
}

func (s *Store) Installments(ctx context.Context, id placement.ReceivableID) ([]placement.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installments(ctx, s.db, id)
}

func (s *Store) installments(ctx context.Context, db dbtx, id placement.ReceivableID) ([]placement.Installment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, placement_income_id, amount, paid_date, remarks, is_active, created_at, updated_at
		FROM installments
		WHERE placement_income_id = ?
		ORDER BY paid_date DESC, created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []placement.Installment
	for rows.Next() {
		var ins placement.Installment
		var paidDate, createdAt, updatedAt string
		if err := rows.Scan(&ins.ID, &ins.ReceivableID, &ins.Amount, &paidDate, &ins.Remarks,
			&ins.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		ins.PaidDate = parseTime(paidDate)
		ins.CreatedAt = parseTime(createdAt)
		ins.UpdatedAt = parseTime(updatedAt)
		installments = append(installments, ins)
	}
	return installments, rows.Err()
}

// =============================================================================
// LEDGER PROJECTIONS
// =============================================================================

// LedgerEntries projects every row of one payment source into the unified
// shape, names pre-joined. Merging, filtering and pagination happen in
// placement.Ledger.
func (s *Store) LedgerEntries(ctx context.Context, source placement.PaymentSource) ([]placement.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgerEntries(ctx, s.db, source)
}

func (s *Store) ledgerEntries(ctx context.Context, db dbtx, source placement.PaymentSource) ([]placement.LedgerEntry, error) {
	switch source {
	case placement.SourceCompanyPayment:
		return s.companyPaymentEntries(ctx, db)
	case placement.SourceCandidatePayment:
		return s.candidatePaymentEntries(ctx, db)
	case placement.SourcePlacementIncome:
		return s.installmentEntries(ctx, db)
	}
	return nil, nil
}

func (s *Store) companyPaymentEntries(ctx context.Context, db dbtx) ([]placement.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.payment_date, p.amount, p.created_at, p.is_active, p.remarks,
		       p.company_id, c.name
		FROM company_payments p
		LEFT JOIN companies c ON c.id = p.company_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []placement.LedgerEntry
	for rows.Next() {
		var e placement.LedgerEntry
		var paymentDate, createdAt, remarks string
		var companyID placement.CompanyID
		var companyName sql.NullString
		if err := rows.Scan(&e.ID, &paymentDate, &e.Amount, &createdAt, &e.IsActive,
			&remarks, &companyID, &companyName); err != nil {
			return nil, err
		}
		e.Source = placement.SourceCompanyPayment
		e.PaymentDate = parseTime(paymentDate)
		e.CreatedAt = parseTime(createdAt)
		e.CompanyID = &companyID
		if companyName.Valid {
			e.CompanyName = &companyName.String
		}
		if remarks != "" {
			e.Remarks = &remarks
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) candidatePaymentEntries(ctx context.Context, db dbtx) ([]placement.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.payment_date, p.amount, p.created_at, p.is_active, p.remarks,
		       p.candidate_id, c.full_name
		FROM candidate_payments p
		LEFT JOIN candidates c ON c.id = p.candidate_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []placement.LedgerEntry
	for rows.Next() {
		var e placement.LedgerEntry
		var paymentDate, createdAt, remarks string
		var candidateID placement.CandidateID
		var candidateName sql.NullString
		if err := rows.Scan(&e.ID, &paymentDate, &e.Amount, &createdAt, &e.IsActive,
			&remarks, &candidateID, &candidateName); err != nil {
			return nil, err
		}
		e.Source = placement.SourceCandidatePayment
		e.PaymentDate = parseTime(paymentDate)
		e.CreatedAt = parseTime(createdAt)
		e.CandidateID = &candidateID
		if candidateName.Valid {
			e.CandidateName = &candidateName.String
		}
		if remarks != "" {
			e.Remarks = &remarks
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) installmentEntries(ctx context.Context, db dbtx) ([]placement.LedgerEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT i.id, i.paid_date, i.amount, i.created_at, i.is_active, i.remarks,
		       r.id, r.candidate_id, r.job_id, r.interview_id,
		       cand.full_name, j.title, j.company_id, co.name
		FROM installments i
		JOIN placement_incomes r ON r.id = i.placement_income_id
		LEFT JOIN candidates cand ON cand.id = r.candidate_id
		LEFT JOIN jobs j ON j.id = r.job_id
		LEFT JOIN companies co ON co.id = j.company_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []placement.LedgerEntry
	for rows.Next() {
		var e placement.LedgerEntry
		var paidDate, createdAt, remarks string
		var incomeID placement.ReceivableID
		var candidateID placement.CandidateID
		var jobID placement.JobID
		var interviewID placement.InterviewID
		var candidateName, jobTitle, companyName sql.NullString
		var companyID sql.NullString
		if err := rows.Scan(&e.ID, &paidDate, &e.Amount, &createdAt, &e.IsActive, &remarks,
			&incomeID, &candidateID, &jobID, &interviewID,
			&candidateName, &jobTitle, &companyID, &companyName); err != nil {
			return nil, err
		}
		e.Source = placement.SourcePlacementIncome
		e.PaymentDate = parseTime(paidDate)
		e.CreatedAt = parseTime(createdAt)
		e.PlacementIncomeID = &incomeID
		e.CandidateID = &candidateID
		e.JobID = &jobID
		e.InterviewID = &interviewID
		if candidateName.Valid {
			e.CandidateName = &candidateName.String
		}
		if jobTitle.Valid {
			e.JobTitle = &jobTitle.String
		}
		if companyID.Valid {
			cid := placement.CompanyID(companyID.String)
			e.CompanyID = &cid
		}
		if companyName.Valid {
			e.CompanyName = &companyName.String
		}
		if remarks != "" {
			e.Remarks = &remarks
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
