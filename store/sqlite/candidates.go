package sqlite

import (
	"context"
	"database/sql"

	"github.com/talentdesk/placement-engine/placement"
)

// =============================================================================
// CANDIDATES
// =============================================================================

const candidateColumns = `id, full_name, email, mobile_number, qualification, experience_years,
	skills_json, resume_url, photo_url, expected_salary, notes, status, employment_status,
	is_active, created_at, updated_at`

func (s *Store) InsertCandidate(ctx context.Context, c placement.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCandidate(ctx, s.db, c)
}

func (s *Store) insertCandidate(ctx context.Context, db dbtx, c placement.Candidate) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FullName, c.Email, c.MobileNumber, c.Qualification, c.ExperienceYears,
		marshalStrings(c.Skills), c.ResumeURL, c.PhotoURL, c.ExpectedSalary, c.Notes,
		c.Status, c.EmploymentStatus, c.IsActive, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt),
	)
	return translateConstraint(err, "insert candidate")
}

func (s *Store) GetCandidate(ctx context.Context, id placement.CandidateID) (*placement.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCandidate(ctx, s.db, id)
}

func (s *Store) getCandidate(ctx context.Context, db dbtx, id placement.CandidateID) (*placement.Candidate, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) GetCandidateDetail(ctx context.Context, id placement.CandidateID) (*placement.CandidateDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCandidateDetail(ctx, s.db, id)
}

func (s *Store) getCandidateDetail(ctx context.Context, db dbtx, id placement.CandidateID) (*placement.CandidateDetail, error) {
	cand, err := s.getCandidate(ctx, db, id)
	if err != nil || cand == nil {
		return nil, err
	}

	detail := placement.CandidateDetail{Candidate: *cand}

	detail.FeeStructure, err = s.feeStructureByCandidate(ctx, db, id)
	if err != nil {
		return nil, err
	}
	detail.Payments, err = s.candidatePayments(ctx, db, id)
	if err != nil {
		return nil, err
	}
	detail.InterviewCount, err = s.countInterviews(ctx, db, nil, &id)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *Store) UpdateCandidate(ctx context.Context, c placement.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCandidate(ctx, s.db, c)
}

func (s *Store) updateCandidate(ctx context.Context, db dbtx, c placement.Candidate) error {
	_, err := db.ExecContext(ctx, `
		UPDATE candidates
		SET full_name = ?, email = ?, mobile_number = ?, qualification = ?, experience_years = ?,
		    skills_json = ?, resume_url = ?, photo_url = ?, expected_salary = ?, notes = ?,
		    status = ?, employment_status = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.FullName, c.Email, c.MobileNumber, c.Qualification, c.ExperienceYears,
		marshalStrings(c.Skills), c.ResumeURL, c.PhotoURL, c.ExpectedSalary, c.Notes,
		c.Status, c.EmploymentStatus, c.IsActive, fmtTime(c.UpdatedAt), c.ID,
	)
	return translateConstraint(err, "update candidate")
}

func (s *Store) ListCandidates(ctx context.Context, f placement.CandidateFilter) ([]placement.Candidate, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCandidates(ctx, s.db, f)
}

func (s *Store) listCandidates(ctx context.Context, db dbtx, f placement.CandidateFilter) ([]placement.Candidate, int, error) {
	page := f.PageRequest.Normalize()

	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	where := "WHERE is_active = ?"
	args := []any{active}

	if f.Query != "" {
		where += " AND (full_name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE OR mobile_number LIKE ?)"
		like := "%" + f.Query + "%"
		args = append(args, like, like, like)
	}
	if f.Qualification != "" {
		where += " AND qualification LIKE ? COLLATE NOCASE"
		args = append(args, "%"+f.Qualification+"%")
	}
	if f.ExpectedSalaryMin != nil {
		where += " AND expected_salary >= ?"
		args = append(args, *f.ExpectedSalaryMin)
	}
	if f.ExpectedSalaryMax != nil {
		where += " AND expected_salary <= ?"
		args = append(args, *f.ExpectedSalaryMax)
	}
	if f.ExperienceMin != nil {
		where += " AND experience_years >= ?"
		args = append(args, *f.ExperienceMin)
	}
	if f.ExperienceMax != nil {
		where += " AND experience_years <= ?"
		args = append(args, *f.ExperienceMax)
	}
	if f.Status != nil {
		where += " AND status = ?"
		args = append(args, *f.Status)
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+candidateColumns+" FROM candidates "+where+`
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var candidates []placement.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(sc rowScanner) (*placement.Candidate, error) {
	var c placement.Candidate
	var skillsJSON, createdAt, updatedAt string
	err := sc.Scan(&c.ID, &c.FullName, &c.Email, &c.MobileNumber, &c.Qualification,
		&c.ExperienceYears, &skillsJSON, &c.ResumeURL, &c.PhotoURL, &c.ExpectedSalary,
		&c.Notes, &c.Status, &c.EmploymentStatus, &c.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Skills = unmarshalStrings(skillsJSON)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// =============================================================================
// FEE STRUCTURES
// =============================================================================

func (s *Store) FeeStructureByCandidate(ctx context.Context, id placement.CandidateID) (*placement.FeeStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feeStructureByCandidate(ctx, s.db, id)
}

func (s *Store) feeStructureByCandidate(ctx context.Context, db dbtx, id placement.CandidateID) (*placement.FeeStructure, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, candidate_id, total_fee, balance, due_date, is_active, created_at, updated_at
		FROM fee_structures WHERE candidate_id = ? AND is_active = 1`, id)

	var fs placement.FeeStructure
	var dueDate sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&fs.ID, &fs.CandidateID, &fs.TotalFee, &fs.Balance, &dueDate,
		&fs.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fs.DueDate = parseTimePtr(dueDate)
	fs.CreatedAt = parseTime(createdAt)
	fs.UpdatedAt = parseTime(updatedAt)
	return &fs, nil
}

func (s *Store) InsertFeeStructure(ctx context.Context, fs placement.FeeStructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertFeeStructure(ctx, s.db, fs)
}

func (s *Store) insertFeeStructure(ctx context.Context, db dbtx, fs placement.FeeStructure) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fee_structures (id, candidate_id, total_fee, balance, due_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fs.ID, fs.CandidateID, fs.TotalFee, fs.Balance, fmtTimePtr(fs.DueDate),
		fs.IsActive, fmtTime(fs.CreatedAt), fmtTime(fs.UpdatedAt),
	)
	return translateConstraint(err, "insert fee structure")
}

func (s *Store) UpdateFeeStructure(ctx context.Context, fs placement.FeeStructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateFeeStructure(ctx, s.db, fs)
}

func (s *Store) updateFeeStructure(ctx context.Context, db dbtx, fs placement.FeeStructure) error {
	_, err := db.ExecContext(ctx, `
		UPDATE fee_structures
		SET total_fee = ?, balance = ?, due_date = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		fs.TotalFee, fs.Balance, fmtTimePtr(fs.DueDate), fs.IsActive, fmtTime(fs.UpdatedAt), fs.ID,
	)
	return translateConstraint(err, "update fee structure")
}

// =============================================================================
// CANDIDATE PAYMENTS
// =============================================================================

func (s *Store) InsertCandidatePayment(ctx context.Context, p placement.CandidatePayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCandidatePayment(ctx, s.db, p)
}

func (s *Store) insertCandidatePayment(ctx context.Context, db dbtx, p placement.CandidatePayment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO candidate_payments (id, candidate_id, amount, payment_date, remarks, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CandidateID, p.Amount, fmtTime(p.PaymentDate), p.Remarks,
		p.IsActive, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
	)
	return translateConstraint(err, "insert candidate payment")
}

func (s *Store) CandidatePayments(ctx context.Context, id placement.CandidateID) ([]placement.CandidatePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidatePayments(ctx, s.db, id)
}

func (s *Store) candidatePayments(ctx context.Context, db dbtx, id placement.CandidateID) ([]placement.CandidatePayment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, candidate_id, amount, payment_date, remarks, is_active, created_at, updated_at
		FROM candidate_payments
		WHERE candidate_id = ?
		ORDER BY payment_date DESC, created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []placement.CandidatePayment
	for rows.Next() {
		var p placement.CandidatePayment
		var paymentDate, createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.CandidateID, &p.Amount, &paymentDate, &p.Remarks,
			&p.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.PaymentDate = parseTime(paymentDate)
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
