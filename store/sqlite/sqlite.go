/*
Package sqlite is the production implementation of placement.TxStore.

PURPOSE:
  Persists every back-office entity (companies, candidates, fee structures,
  jobs, interviews, joinings, placement incomes, payments) in SQLite and
  exposes the transactional contract the placement core relies on. The same
  patterns port to PostgreSQL with only dialect changes.

CONSTRAINT BACKSTOPS:
  Correctness-critical rules live in the schema, not only in code:
  - idx_candidates_email / idx_candidates_mobile: one candidate per
    email / mobile number
  - idx_unique_active_joining: at most one ACTIVE joining per
    (job_id, candidate_id), the backstop for concurrent join attempts
  - CHECK(balance >= 0) and CHECK(total_received + balance =
    total_receivable) on placement_incomes
  Unique violations are translated into placement.ConflictError so callers
  see one error taxonomy regardless of which layer caught the problem.

CONCURRENCY:
  sync.RWMutex serializes writers on top of SQLite's own locking; the
  database is opened in WAL mode so readers don't block.

TIME AND MONEY:
  Timestamps are stored as RFC3339 strings. Money is stored as INTEGER in
  the smallest currency unit, matching the int64 amounts in the core.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool instead.

SEE ALSO:
  - placement/store.go:        the interfaces implemented here
  - placement/store/memory.go: in-memory implementation for domain tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/talentdesk/placement-engine/placement"
)

// Store implements placement.TxStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		contact_person TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_companies_active
		ON companies(is_active, created_at DESC);

	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		mobile_number TEXT NOT NULL DEFAULT '',
		qualification TEXT NOT NULL DEFAULT '',
		experience_years REAL NOT NULL DEFAULT 0,
		skills_json TEXT NOT NULL DEFAULT '[]',
		resume_url TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		expected_salary INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		employment_status TEXT NOT NULL DEFAULT 'UNEMPLOYED',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One candidate per email / mobile. Empty values are exempt so partial
	-- records can coexist.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_candidates_email
		ON candidates(email) WHERE email != '';
	CREATE UNIQUE INDEX IF NOT EXISTS idx_candidates_mobile
		ON candidates(mobile_number) WHERE mobile_number != '';
	CREATE INDEX IF NOT EXISTS idx_candidates_active
		ON candidates(is_active, created_at DESC);

	CREATE TABLE IF NOT EXISTS fee_structures (
		id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL,
		total_fee INTEGER NOT NULL,
		balance INTEGER NOT NULL,
		due_date TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- At most one active fee structure per candidate.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_fee_structures_candidate
		ON fee_structures(candidate_id) WHERE is_active = 1;

	CREATE TABLE IF NOT EXISTS candidate_payments (
		id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		payment_date TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_candidate_payments_candidate
		ON candidate_payments(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_candidate_payments_date
		ON candidate_payments(payment_date DESC);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		title TEXT NOT NULL,
		qualification TEXT NOT NULL DEFAULT '',
		experience TEXT NOT NULL DEFAULT '',
		salary_min INTEGER,
		salary_max INTEGER,
		num_vacancies INTEGER NOT NULL DEFAULT 1 CHECK(num_vacancies >= 0),
		job_type TEXT NOT NULL DEFAULT 'FULL_TIME',
		description TEXT NOT NULL DEFAULT '',
		skills_json TEXT NOT NULL DEFAULT '[]',
		contact_person TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'OPEN',
		attachments_json TEXT NOT NULL DEFAULT '[]',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_company
		ON jobs(company_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_active
		ON jobs(is_active, created_at DESC);

	CREATE TABLE IF NOT EXISTS interviews (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		interview_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'SCHEDULED',
		remarks TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_interviews_job
		ON interviews(job_id);
	CREATE INDEX IF NOT EXISTS idx_interviews_candidate
		ON interviews(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_interviews_date
		ON interviews(interview_date);

	CREATE TABLE IF NOT EXISTS joinings (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		date_of_joining TEXT NOT NULL,
		salary INTEGER NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one active joining per (job, candidate). This is
	-- the backstop for two racing JOINED transitions.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_active_joining
		ON joinings(job_id, candidate_id) WHERE is_active = 1;

	CREATE TABLE IF NOT EXISTS placement_incomes (
		id TEXT PRIMARY KEY,
		interview_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		total_receivable INTEGER NOT NULL,
		total_received INTEGER NOT NULL DEFAULT 0,
		balance INTEGER NOT NULL CHECK(balance >= 0),
		due_date TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(total_received + balance = total_receivable)
	);

	CREATE INDEX IF NOT EXISTS idx_placement_incomes_interview
		ON placement_incomes(interview_id) WHERE is_active = 1;
	CREATE INDEX IF NOT EXISTS idx_placement_incomes_candidate
		ON placement_incomes(candidate_id);

	CREATE TABLE IF NOT EXISTS installments (
		id TEXT PRIMARY KEY,
		placement_income_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		paid_date TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_installments_income
		ON installments(placement_income_id);
	CREATE INDEX IF NOT EXISTS idx_installments_date
		ON installments(paid_date DESC);

	CREATE TABLE IF NOT EXISTS company_payments (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		payment_date TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_company_payments_company
		ON company_payments(company_id);
	CREATE INDEX IF NOT EXISTS idx_company_payments_date
		ON company_payments(payment_date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so each query helper can
// run against the connection or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within one database transaction. The mutex is held
// for the whole unit of work so checks and effects see a stable view.
func (s *Store) WithTx(ctx context.Context, fn func(placement.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore is the Store view bound to one *sql.Tx. No locking; WithTx holds
// the write lock.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) InsertCompany(ctx context.Context, c placement.Company) error {
	return ts.parent.insertCompany(ctx, ts.tx, c)
}

func (ts *txStore) GetCompany(ctx context.Context, id placement.CompanyID) (*placement.Company, error) {
	return ts.parent.getCompany(ctx, ts.tx, id)
}

func (ts *txStore) UpdateCompany(ctx context.Context, c placement.Company) error {
	return ts.parent.updateCompany(ctx, ts.tx, c)
}

func (ts *txStore) ListCompanies(ctx context.Context, q string, page placement.PageRequest) ([]placement.Company, int, error) {
	return ts.parent.listCompanies(ctx, ts.tx, q, page)
}

func (ts *txStore) InsertCandidate(ctx context.Context, c placement.Candidate) error {
	return ts.parent.insertCandidate(ctx, ts.tx, c)
}

func (ts *txStore) GetCandidate(ctx context.Context, id placement.CandidateID) (*placement.Candidate, error) {
	return ts.parent.getCandidate(ctx, ts.tx, id)
}

func (ts *txStore) GetCandidateDetail(ctx context.Context, id placement.CandidateID) (*placement.CandidateDetail, error) {
	return ts.parent.getCandidateDetail(ctx, ts.tx, id)
}

func (ts *txStore) UpdateCandidate(ctx context.Context, c placement.Candidate) error {
	return ts.parent.updateCandidate(ctx, ts.tx, c)
}

func (ts *txStore) ListCandidates(ctx context.Context, f placement.CandidateFilter) ([]placement.Candidate, int, error) {
	return ts.parent.listCandidates(ctx, ts.tx, f)
}

func (ts *txStore) FeeStructureByCandidate(ctx context.Context, id placement.CandidateID) (*placement.FeeStructure, error) {
	return ts.parent.feeStructureByCandidate(ctx, ts.tx, id)
}

func (ts *txStore) InsertFeeStructure(ctx context.Context, fs placement.FeeStructure) error {
	return ts.parent.insertFeeStructure(ctx, ts.tx, fs)
}

func (ts *txStore) UpdateFeeStructure(ctx context.Context, fs placement.FeeStructure) error {
	return ts.parent.updateFeeStructure(ctx, ts.tx, fs)
}

func (ts *txStore) InsertCandidatePayment(ctx context.Context, p placement.CandidatePayment) error {
	return ts.parent.insertCandidatePayment(ctx, ts.tx, p)
}

func (ts *txStore) CandidatePayments(ctx context.Context, id placement.CandidateID) ([]placement.CandidatePayment, error) {
	return ts.parent.candidatePayments(ctx, ts.tx, id)
}

func (ts *txStore) InsertJob(ctx context.Context, j placement.Job) error {
	return ts.parent.insertJob(ctx, ts.tx, j)
}

func (ts *txStore) GetJob(ctx context.Context, id placement.JobID) (*placement.Job, error) {
	return ts.parent.getJob(ctx, ts.tx, id)
}

func (ts *txStore) UpdateJob(ctx context.Context, j placement.Job) error {
	return ts.parent.updateJob(ctx, ts.tx, j)
}

func (ts *txStore) ListJobs(ctx context.Context, f placement.JobFilter) ([]placement.Job, int, error) {
	return ts.parent.listJobs(ctx, ts.tx, f)
}

func (ts *txStore) InsertInterview(ctx context.Context, iv placement.Interview) error {
	return ts.parent.insertInterview(ctx, ts.tx, iv)
}

func (ts *txStore) GetInterview(ctx context.Context, id placement.InterviewID) (*placement.Interview, error) {
	return ts.parent.getInterview(ctx, ts.tx, id)
}

func (ts *txStore) UpdateInterview(ctx context.Context, iv placement.Interview) error {
	return ts.parent.updateInterview(ctx, ts.tx, iv)
}

func (ts *txStore) ListInterviews(ctx context.Context, f placement.InterviewFilter) ([]placement.Interview, int, error) {
	return ts.parent.listInterviews(ctx, ts.tx, f)
}

func (ts *txStore) CountInterviews(ctx context.Context, jobID *placement.JobID, candidateID *placement.CandidateID) (int, error) {
	return ts.parent.countInterviews(ctx, ts.tx, jobID, candidateID)
}

func (ts *txStore) HasActiveJoining(ctx context.Context, jobID placement.JobID, candidateID placement.CandidateID) (bool, error) {
	return ts.parent.hasActiveJoining(ctx, ts.tx, jobID, candidateID)
}

func (ts *txStore) InsertJoining(ctx context.Context, j placement.Joining) error {
	return ts.parent.insertJoining(ctx, ts.tx, j)
}

func (ts *txStore) InsertReceivable(ctx context.Context, r placement.Receivable) error {
	return ts.parent.insertReceivable(ctx, ts.tx, r)
}

func (ts *txStore) GetReceivable(ctx context.Context, id placement.ReceivableID) (*placement.Receivable, error) {
	return ts.parent.getReceivable(ctx, ts.tx, id)
}

func (ts *txStore) ActiveReceivableByInterview(ctx context.Context, id placement.InterviewID) (*placement.Receivable, error) {
	return ts.parent.activeReceivableByInterview(ctx, ts.tx, id)
}

func (ts *txStore) UpdateReceivable(ctx context.Context, r placement.Receivable) error {
	return ts.parent.updateReceivable(ctx, ts.tx, r)
}

func (ts *txStore) ListReceivables(ctx context.Context, f placement.ReceivableFilter) ([]placement.Receivable, int, error) {
	return ts.parent.listReceivables(ctx, ts.tx, f)
}

func (ts *txStore) InsertInstallment(ctx context.Context, ins placement.Installment) error {
	return ts.parent.insertInstallment(ctx, ts.tx, ins)
}

func (ts *txStore) Installments(ctx context.Context, id placement.ReceivableID) ([]placement.Installment, error) {
	return ts.parent.installments(ctx, ts.tx, id)
}

func (ts *txStore) InsertCompanyPayment(ctx context.Context, p placement.CompanyPayment) error {
	return ts.parent.insertCompanyPayment(ctx, ts.tx, p)
}

func (ts *txStore) GetCompanyPayment(ctx context.Context, id string) (*placement.CompanyPayment, error) {
	return ts.parent.getCompanyPayment(ctx, ts.tx, id)
}

func (ts *txStore) UpdateCompanyPayment(ctx context.Context, p placement.CompanyPayment) error {
	return ts.parent.updateCompanyPayment(ctx, ts.tx, p)
}

func (ts *txStore) LedgerEntries(ctx context.Context, source placement.PaymentSource) ([]placement.LedgerEntry, error) {
	return ts.parent.ledgerEntries(ctx, ts.tx, source)
}

// =============================================================================
// HELPERS
// =============================================================================

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func marshalStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var v []string
	json.Unmarshal([]byte(s), &v)
	return v
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateConstraint maps known index violations onto the domain's
// conflict taxonomy; anything else passes through wrapped.
func translateConstraint(err error, op string) error {
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "joinings.job_id") || strings.Contains(msg, "idx_unique_active_joining"):
			return &placement.ConflictError{Reason: "candidate already marked as JOINED for this job"}
		case strings.Contains(msg, "candidates.email") || strings.Contains(msg, "candidates.mobile_number"):
			return &placement.ConflictError{Reason: "candidate with this email or mobile_number already exists"}
		}
		return &placement.ConflictError{Reason: "unique constraint violated"}
	}
	return fmt.Errorf("%s: %w", op, err)
}
