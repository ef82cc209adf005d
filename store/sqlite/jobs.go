package sqlite

import (
	"context"
	"database/sql"

	"github.com/talentdesk/placement-engine/placement"
)

// =============================================================================
// JOBS
// =============================================================================

const jobColumns = `id, company_id, title, qualification, experience, salary_min, salary_max,
	num_vacancies, job_type, description, skills_json, contact_person, status,
	attachments_json, is_active, created_at, updated_at`

func (s *Store) InsertJob(ctx context.Context, j placement.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertJob(ctx, s.db, j)
}

func (s *Store) insertJob(ctx context.Context, db dbtx, j placement.Job) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CompanyID, j.Title, j.Qualification, j.Experience, j.SalaryMin, j.SalaryMax,
		j.NumVacancies, j.JobType, j.Description, marshalStrings(j.Skills), j.ContactPerson,
		j.Status, marshalStrings(j.Attachments), j.IsActive, fmtTime(j.CreatedAt), fmtTime(j.UpdatedAt),
	)
	return translateConstraint(err, "insert job")
}

func (s *Store) GetJob(ctx context.Context, id placement.JobID) (*placement.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getJob(ctx, s.db, id)
}

func (s *Store) getJob(ctx context.Context, db dbtx, id placement.JobID) (*placement.Job, error) {
	row := db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Store) UpdateJob(ctx context.Context, j placement.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateJob(ctx, s.db, j)
}

func (s *Store) updateJob(ctx context.Context, db dbtx, j placement.Job) error {
	_, err := db.ExecContext(ctx, `
		UPDATE jobs
		SET company_id = ?, title = ?, qualification = ?, experience = ?, salary_min = ?,
		    salary_max = ?, num_vacancies = ?, job_type = ?, description = ?, skills_json = ?,
		    contact_person = ?, status = ?, attachments_json = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		j.CompanyID, j.Title, j.Qualification, j.Experience, j.SalaryMin, j.SalaryMax,
		j.NumVacancies, j.JobType, j.Description, marshalStrings(j.Skills), j.ContactPerson,
		j.Status, marshalStrings(j.Attachments), j.IsActive, fmtTime(j.UpdatedAt), j.ID,
	)
	return translateConstraint(err, "update job")
}

func (s *Store) ListJobs(ctx context.Context, f placement.JobFilter) ([]placement.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listJobs(ctx, s.db, f)
}

func (s *Store) listJobs(ctx context.Context, db dbtx, f placement.JobFilter) ([]placement.Job, int, error) {
	page := f.PageRequest.Normalize()

	where := "WHERE is_active = 1"
	args := []any{}
	if f.CompanyID != nil {
		where += " AND company_id = ?"
		args = append(args, *f.CompanyID)
	}
	if f.Status != nil {
		where += " AND status = ?"
		args = append(args, *f.Status)
	}
	if f.SalaryMin != nil {
		where += " AND salary_min >= ?"
		args = append(args, *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		where += " AND salary_max <= ?"
		args = append(args, *f.SalaryMax)
	}
	if f.Query != "" {
		where += " AND (title LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)"
		like := "%" + f.Query + "%"
		args = append(args, like, like)
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs "+where+`
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []placement.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, total, rows.Err()
}

func scanJob(sc rowScanner) (*placement.Job, error) {
	var j placement.Job
	var salaryMin, salaryMax sql.NullInt64
	var skillsJSON, attachmentsJSON, createdAt, updatedAt string
	err := sc.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Qualification, &j.Experience,
		&salaryMin, &salaryMax, &j.NumVacancies, &j.JobType, &j.Description,
		&skillsJSON, &j.ContactPerson, &j.Status, &attachmentsJSON,
		&j.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if salaryMin.Valid {
		j.SalaryMin = &salaryMin.Int64
	}
	if salaryMax.Valid {
		j.SalaryMax = &salaryMax.Int64
	}
	j.Skills = unmarshalStrings(skillsJSON)
	j.Attachments = unmarshalStrings(attachmentsJSON)
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

// =============================================================================
// INTERVIEWS
// =============================================================================

const interviewColumns = `id, company_id, job_id, candidate_id, interview_date, status, remarks,
	is_active, created_at, updated_at`

func (s *Store) InsertInterview(ctx context.Context, iv placement.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertInterview(ctx, s.db, iv)
}

func (s *Store) insertInterview(ctx context.Context, db dbtx, iv placement.Interview) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO interviews (`+interviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.ID, iv.CompanyID, iv.JobID, iv.CandidateID, fmtTime(iv.InterviewDate),
		iv.Status, iv.Remarks, iv.IsActive, fmtTime(iv.CreatedAt), fmtTime(iv.UpdatedAt),
	)
	return translateConstraint(err, "insert interview")
}

func (s *Store) GetInterview(ctx context.Context, id placement.InterviewID) (*placement.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getInterview(ctx, s.db, id)
}

func (s *Store) getInterview(ctx context.Context, db dbtx, id placement.InterviewID) (*placement.Interview, error) {
	row := db.QueryRowContext(ctx, "SELECT "+interviewColumns+" FROM interviews WHERE id = ?", id)
	iv, err := scanInterview(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func (s *Store) UpdateInterview(ctx context.Context, iv placement.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateInterview(ctx, s.db, iv)
}

func (s *Store) updateInterview(ctx context.Context, db dbtx, iv placement.Interview) error {
	_, err := db.ExecContext(ctx, `
		UPDATE interviews
		SET company_id = ?, job_id = ?, candidate_id = ?, interview_date = ?, status = ?,
		    remarks = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		iv.CompanyID, iv.JobID, iv.CandidateID, fmtTime(iv.InterviewDate), iv.Status,
		iv.Remarks, iv.IsActive, fmtTime(iv.UpdatedAt), iv.ID,
	)
	return translateConstraint(err, "update interview")
}

func (s *Store) ListInterviews(ctx context.Context, f placement.InterviewFilter) ([]placement.Interview, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listInterviews(ctx, s.db, f)
}

func (s *Store) listInterviews(ctx context.Context, db dbtx, f placement.InterviewFilter) ([]placement.Interview, int, error) {
	page := f.PageRequest.Normalize()

	where := "WHERE is_active = 1"
	args := []any{}
	if f.Status != nil {
		where += " AND status = ?"
		args = append(args, *f.Status)
	}
	if f.FromDate != nil {
		where += " AND interview_date >= ?"
		args = append(args, fmtTime(*f.FromDate))
	}
	if f.ToDate != nil {
		where += " AND interview_date <= ?"
		args = append(args, fmtTime(*f.ToDate))
	}
	if f.JobID != nil {
		where += " AND job_id = ?"
		args = append(args, *f.JobID)
	}
	if f.CandidateID != nil {
		where += " AND candidate_id = ?"
		args = append(args, *f.CandidateID)
	}
	if f.CompanyID != nil {
		where += " AND company_id = ?"
		args = append(args, *f.CompanyID)
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interviews "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+interviewColumns+" FROM interviews "+where+`
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var interviews []placement.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, 0, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, total, rows.Err()
}

func (s *Store) CountInterviews(ctx context.Context, jobID *placement.JobID, candidateID *placement.CandidateID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countInterviews(ctx, s.db, jobID, candidateID)
}

func (s *Store) countInterviews(ctx context.Context, db dbtx, jobID *placement.JobID, candidateID *placement.CandidateID) (int, error) {
	where := "WHERE is_active = 1"
	args := []any{}
	if jobID != nil {
		where += " AND job_id = ?"
		args = append(args, *jobID)
	}
	if candidateID != nil {
		where += " AND candidate_id = ?"
		args = append(args, *candidateID)
	}

	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interviews "+where, args...).Scan(&count)
	return count, err
}

func scanInterview(sc rowScanner) (*placement.Interview, error) {
	var iv placement.Interview
	var interviewDate, createdAt, updatedAt string
	err := sc.Scan(&iv.ID, &iv.CompanyID, &iv.JobID, &iv.CandidateID, &interviewDate,
		&iv.Status, &iv.Remarks, &iv.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	iv.InterviewDate = parseTime(interviewDate)
	iv.CreatedAt = parseTime(createdAt)
	iv.UpdatedAt = parseTime(updatedAt)
	return &iv, nil
}

// =============================================================================
// JOININGS
// =============================================================================

func (s *Store) HasActiveJoining(ctx context.Context, jobID placement.JobID, candidateID placement.CandidateID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasActiveJoining(ctx, s.db, jobID, candidateID)
}

func (s *Store) hasActiveJoining(ctx context.Context, db dbtx, jobID placement.JobID, candidateID placement.CandidateID) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM joinings
		WHERE job_id = ? AND candidate_id = ? AND is_active = 1`,
		jobID, candidateID).Scan(&count)
	return count > 0, err
}

func (s *Store) InsertJoining(ctx context.Context, j placement.Joining) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertJoining(ctx, s.db, j)
}

func (s *Store) insertJoining(ctx context.Context, db dbtx, j placement.Joining) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO joinings (id, job_id, candidate_id, date_of_joining, salary, remarks, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.JobID, j.CandidateID, fmtTime(j.DateOfJoining), j.Salary, j.Remarks,
		j.IsActive, fmtTime(j.CreatedAt),
	)
	return translateConstraint(err, "insert joining")
}
