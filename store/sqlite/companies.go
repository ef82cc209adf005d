package sqlite

import (
	"context"
	"database/sql"

	"github.com/talentdesk/placement-engine/placement"
)

// =============================================================================
// COMPANIES
// =============================================================================

func (s *Store) InsertCompany(ctx context.Context, c placement.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCompany(ctx, s.db, c)
}

func (s *Store) insertCompany(ctx context.Context, db dbtx, c placement.Company) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO companies (id, name, email, phone, contact_person, address, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.ContactPerson, c.Address,
		c.IsActive, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt),
	)
	return translateConstraint(err, "insert company")
}

func (s *Store) GetCompany(ctx context.Context, id placement.CompanyID) (*placement.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCompany(ctx, s.db, id)
}

func (s *Store) getCompany(ctx context.Context, db dbtx, id placement.CompanyID) (*placement.Company, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, contact_person, address, is_active, created_at, updated_at
		FROM companies WHERE id = ?`, id)

	var c placement.Company
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ContactPerson, &c.Address,
		&c.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (s *Store) UpdateCompany(ctx context.Context, c placement.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCompany(ctx, s.db, c)
}

func (s *Store) updateCompany(ctx context.Context, db dbtx, c placement.Company) error {
	_, err := db.ExecContext(ctx, `
		UPDATE companies
		SET name = ?, email = ?, phone = ?, contact_person = ?, address = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.ContactPerson, c.Address,
		c.IsActive, fmtTime(c.UpdatedAt), c.ID,
	)
	return translateConstraint(err, "update company")
}

func (s *Store) ListCompanies(ctx context.Context, q string, page placement.PageRequest) ([]placement.Company, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCompanies(ctx, s.db, q, page)
}

func (s *Store) listCompanies(ctx context.Context, db dbtx, q string, page placement.PageRequest) ([]placement.Company, int, error) {
	page = page.Normalize()

	where := "WHERE is_active = 1"
	args := []any{}
	if q != "" {
		where += " AND name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+q+"%")
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, contact_person, address, is_active, created_at, updated_at
		FROM companies `+where+`
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var companies []placement.Company
	for rows.Next() {
		var c placement.Company
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ContactPerson, &c.Address,
			&c.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, 0, err
		}
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

// =============================================================================
// COMPANY PAYMENTS
// =============================================================================

func (s *Store) InsertCompanyPayment(ctx context.Context, p placement.CompanyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCompanyPayment(ctx, s.db, p)
}

func (s *Store) insertCompanyPayment(ctx context.Context, db dbtx, p placement.CompanyPayment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO company_payments (id, company_id, amount, payment_date, remarks, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Amount, fmtTime(p.PaymentDate), p.Remarks,
		p.IsActive, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
	)
	return translateConstraint(err, "insert company payment")
}

func (s *Store) GetCompanyPayment(ctx context.Context, id string) (*placement.CompanyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCompanyPayment(ctx, s.db, id)
}

func (s *Store) getCompanyPayment(ctx context.Context, db dbtx, id string) (*placement.CompanyPayment, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, company_id, amount, payment_date, remarks, is_active, created_at, updated_at
		FROM company_payments WHERE id = ?`, id)

	var p placement.CompanyPayment
	var paymentDate, createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.CompanyID, &p.Amount, &paymentDate, &p.Remarks,
		&p.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.PaymentDate = parseTime(paymentDate)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (s *Store) UpdateCompanyPayment(ctx context.Context, p placement.CompanyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCompanyPayment(ctx, s.db, p)
}

func (s *Store) updateCompanyPayment(ctx context.Context, db dbtx, p placement.CompanyPayment) error {
	_, err := db.ExecContext(ctx, `
		UPDATE company_payments
		SET company_id = ?, amount = ?, payment_date = ?, remarks = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.CompanyID, p.Amount, fmtTime(p.PaymentDate), p.Remarks,
		p.IsActive, fmtTime(p.UpdatedAt), p.ID,
	)
	return translateConstraint(err, "update company payment")
}
