// Package store provides an in-memory placement.TxStore for domain tests
// and local development. Transactions are simulated with a snapshot taken
// before the unit of work and restored on error, mirroring the rollback
// semantics of the SQLite implementation.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/talentdesk/placement-engine/placement"
)

// Memory implements placement.TxStore with plain maps. Exported methods
// take the lock and delegate to unexported lock-free helpers; the
// transaction view calls the helpers directly while WithTx holds the lock.
type Memory struct {
	mu sync.RWMutex

	companies       map[placement.CompanyID]placement.Company
	candidates      map[placement.CandidateID]placement.Candidate
	fees            map[placement.CandidateID]placement.FeeStructure
	candPayments    map[placement.CandidateID][]placement.CandidatePayment
	jobs            map[placement.JobID]placement.Job
	interviews      map[placement.InterviewID]placement.Interview
	joinings        []placement.Joining
	receivables     map[placement.ReceivableID]placement.Receivable
	installments    map[placement.ReceivableID][]placement.Installment
	companyPayments map[string]placement.CompanyPayment
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		companies:       make(map[placement.CompanyID]placement.Company),
		candidates:      make(map[placement.CandidateID]placement.Candidate),
		fees:            make(map[placement.CandidateID]placement.FeeStructure),
		candPayments:    make(map[placement.CandidateID][]placement.CandidatePayment),
		jobs:            make(map[placement.JobID]placement.Job),
		interviews:      make(map[placement.InterviewID]placement.Interview),
		receivables:     make(map[placement.ReceivableID]placement.Receivable),
		installments:    make(map[placement.ReceivableID][]placement.Installment),
		companyPayments: make(map[string]placement.CompanyPayment),
	}
}

// =============================================================================
// TRANSACTIONS - snapshot + restore
// =============================================================================

// WithTx runs fn against a view writing directly into the store, holding
// the write lock for the whole unit of work. On error the pre-tx snapshot
// is restored, so partial writes never survive.
func (m *Memory) WithTx(ctx context.Context, fn func(placement.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	companies       map[placement.CompanyID]placement.Company
	candidates      map[placement.CandidateID]placement.Candidate
	fees            map[placement.CandidateID]placement.FeeStructure
	candPayments    map[placement.CandidateID][]placement.CandidatePayment
	jobs            map[placement.JobID]placement.Job
	interviews      map[placement.InterviewID]placement.Interview
	joinings        []placement.Joining
	receivables     map[placement.ReceivableID]placement.Receivable
	installments    map[placement.ReceivableID][]placement.Installment
	companyPayments map[string]placement.CompanyPayment
}

func (m *Memory) snapshot() memSnapshot {
	s := memSnapshot{
		companies:       make(map[placement.CompanyID]placement.Company, len(m.companies)),
		candidates:      make(map[placement.CandidateID]placement.Candidate, len(m.candidates)),
		fees:            make(map[placement.CandidateID]placement.FeeStructure, len(m.fees)),
		candPayments:    make(map[placement.CandidateID][]placement.CandidatePayment, len(m.candPayments)),
		jobs:            make(map[placement.JobID]placement.Job, len(m.jobs)),
		interviews:      make(map[placement.InterviewID]placement.Interview, len(m.interviews)),
		joinings:        append([]placement.Joining(nil), m.joinings...),
		receivables:     make(map[placement.ReceivableID]placement.Receivable, len(m.receivables)),
		installments:    make(map[placement.ReceivableID][]placement.Installment, len(m.installments)),
		companyPayments: make(map[string]placement.CompanyPayment, len(m.companyPayments)),
	}
	for k, v := range m.companies {
		s.companies[k] = v
	}
	for k, v := range m.candidates {
		s.candidates[k] = v
	}
	for k, v := range m.fees {
		s.fees[k] = v
	}
	for k, v := range m.candPayments {
		s.candPayments[k] = append([]placement.CandidatePayment(nil), v...)
	}
	for k, v := range m.jobs {
		s.jobs[k] = v
	}
	for k, v := range m.interviews {
		s.interviews[k] = v
	}
	for k, v := range m.receivables {
		s.receivables[k] = v
	}
	for k, v := range m.installments {
		s.installments[k] = append([]placement.Installment(nil), v...)
	}
	for k, v := range m.companyPayments {
		s.companyPayments[k] = v
	}
	return s
}

func (m *Memory) restore(s memSnapshot) {
	m.companies = s.companies
	m.candidates = s.candidates
	m.fees = s.fees
	m.candPayments = s.candPayments
	m.jobs = s.jobs
	m.interviews = s.interviews
	m.joinings = s.joinings
	m.receivables = s.receivables
	m.installments = s.installments
	m.companyPayments = s.companyPayments
}

// =============================================================================
// LOCKED ENTRY POINTS
// =============================================================================

func (m *Memory) InsertCompany(_ context.Context, c placement.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCompany(c)
}

func (m *Memory) GetCompany(_ context.Context, id placement.CompanyID) (*placement.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCompany(id)
}

func (m *Memory) UpdateCompany(_ context.Context, c placement.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCompany(c)
}

func (m *Memory) ListCompanies(_ context.Context, q string, page placement.PageRequest) ([]placement.Company, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCompanies(q, page)
}

func (m *Memory) InsertCandidate(_ context.Context, c placement.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCandidate(c)
}

func (m *Memory) GetCandidate(_ context.Context, id placement.CandidateID) (*placement.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCandidate(id)
}

func (m *Memory) GetCandidateDetail(_ context.Context, id placement.CandidateID) (*placement.CandidateDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCandidateDetail(id)
}

func (m *Memory) UpdateCandidate(_ context.Context, c placement.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCandidate(c)
}

func (m *Memory) ListCandidates(_ context.Context, f placement.CandidateFilter) ([]placement.Candidate, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCandidates(f)
}

func (m *Memory) FeeStructureByCandidate(_ context.Context, id placement.CandidateID) (*placement.FeeStructure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.feeStructureByCandidate(id)
}

func (m *Memory) InsertFeeStructure(_ context.Context, fs placement.FeeStructure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertFeeStructure(fs)
}

func (m *Memory) UpdateFeeStructure(_ context.Context, fs placement.FeeStructure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateFeeStructure(fs)
}

func (m *Memory) InsertCandidatePayment(_ context.Context, p placement.CandidatePayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCandidatePayment(p)
}

func (m *Memory) CandidatePayments(_ context.Context, id placement.CandidateID) ([]placement.CandidatePayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.candidatePayments(id)
}

func (m *Memory) InsertJob(_ context.Context, j placement.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertJob(j)
}

func (m *Memory) GetJob(_ context.Context, id placement.JobID) (*placement.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getJob(id)
}

func (m *Memory) UpdateJob(_ context.Context, j placement.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateJob(j)
}

func (m *Memory) ListJobs(_ context.Context, f placement.JobFilter) ([]placement.Job, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listJobs(f)
}

func (m *Memory) InsertInterview(_ context.Context, iv placement.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertInterview(iv)
}

func (m *Memory) GetInterview(_ context.Context, id placement.InterviewID) (*placement.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getInterview(id)
}

func (m *Memory) UpdateInterview(_ context.Context, iv placement.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateInterview(iv)
}

func (m *Memory) ListInterviews(_ context.Context, f placement.InterviewFilter) ([]placement.Interview, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listInterviews(f)
}

func (m *Memory) CountInterviews(_ context.Context, jobID *placement.JobID, candidateID *placement.CandidateID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countInterviews(jobID, candidateID)
}

func (m *Memory) HasActiveJoining(_ context.Context, jobID placement.JobID, candidateID placement.CandidateID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasActiveJoining(jobID, candidateID), nil
}

func (m *Memory) InsertJoining(_ context.Context, j placement.Joining) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertJoining(j)
}

func (m *Memory) InsertReceivable(_ context.Context, r placement.Receivable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertReceivable(r)
}

func (m *Memory) GetReceivable(_ context.Context, id placement.ReceivableID) (*placement.Receivable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getReceivable(id)
}

func (m *Memory) ActiveReceivableByInterview(_ context.Context, id placement.InterviewID) (*placement.Receivable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeReceivableByInterview(id)
}

func (m *Memory) UpdateReceivable(_ context.Context, r placement.Receivable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateReceivable(r)
}

func (m *Memory) ListReceivables(_ context.Context, f placement.ReceivableFilter) ([]placement.Receivable, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listReceivables(f)
}

func (m *Memory) InsertInstallment(_ context.Context, ins placement.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertInstallment(ins)
}

func (m *Memory) Installments(_ context.Context, id placement.ReceivableID) ([]placement.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installmentsFor(id)
}

func (m *Memory) InsertCompanyPayment(_ context.Context, p placement.CompanyPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCompanyPayment(p)
}

func (m *Memory) GetCompanyPayment(_ context.Context, id string) (*placement.CompanyPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCompanyPayment(id)
}

func (m *Memory) UpdateCompanyPayment(_ context.Context, p placement.CompanyPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCompanyPayment(p)
}

func (m *Memory) LedgerEntries(_ context.Context, source placement.PaymentSource) ([]placement.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledgerEntries(source)
}

// =============================================================================
// TRANSACTION VIEW - no locking, the lock is held by WithTx
// =============================================================================

type txView struct {
	m *Memory
}

func (v *txView) InsertCompany(_ context.Context, c placement.Company) error {
	return v.m.insertCompany(c)
}

func (v *txView) GetCompany(_ context.Context, id placement.CompanyID) (*placement.Company, error) {
	return v.m.getCompany(id)
}

func (v *txView) UpdateCompany(_ context.Context, c placement.Company) error {
	return v.m.updateCompany(c)
}

func (v *txView) ListCompanies(_ context.Context, q string, page placement.PageRequest) ([]placement.Company, int, error) {
	return v.m.listCompanies(q, page)
}

func (v *txView) InsertCandidate(_ context.Context, c placement.Candidate) error {
	return v.m.insertCandidate(c)
}

func (v *txView) GetCandidate(_ context.Context, id placement.CandidateID) (*placement.Candidate, error) {
	return v.m.getCandidate(id)
}

func (v *txView) GetCandidateDetail(_ context.Context, id placement.CandidateID) (*placement.CandidateDetail, error) {
	return v.m.getCandidateDetail(id)
}

func (v *txView) UpdateCandidate(_ context.Context, c placement.Candidate) error {
	return v.m.updateCandidate(c)
}

func (v *txView) ListCandidates(_ context.Context, f placement.CandidateFilter) ([]placement.Candidate, int, error) {
	return v.m.listCandidates(f)
}

func (v *txView) FeeStructureByCandidate(_ context.Context, id placement.CandidateID) (*placement.FeeStructure, error) {
	return v.m.feeStructureByCandidate(id)
}

func (v *txView) InsertFeeStructure(_ context.Context, fs placement.FeeStructure) error {
	return v.m.insertFeeStructure(fs)
}

func (v *txView) UpdateFeeStructure(_ context.Context, fs placement.FeeStructure) error {
	return v.m.updateFeeStructure(fs)
}

func (v *txView) InsertCandidatePayment(_ context.Context, p placement.CandidatePayment) error {
	return v.m.insertCandidatePayment(p)
}

func (v *txView) CandidatePayments(_ context.Context, id placement.CandidateID) ([]placement.CandidatePayment, error) {
	return v.m.candidatePayments(id)
}

func (v *txView) InsertJob(_ context.Context, j placement.Job) error {
	return v.m.insertJob(j)
}

func (v *txView) GetJob(_ context.Context, id placement.JobID) (*placement.Job, error) {
	return v.m.getJob(id)
}

func (v *txView) UpdateJob(_ context.Context, j placement.Job) error {
	return v.m.updateJob(j)
}

func (v *txView) ListJobs(_ context.Context, f placement.JobFilter) ([]placement.Job, int, error) {
	return v.m.listJobs(f)
}

func (v *txView) InsertInterview(_ context.Context, iv placement.Interview) error {
	return v.m.insertInterview(iv)
}

func (v *txView) GetInterview(_ context.Context, id placement.InterviewID) (*placement.Interview, error) {
	return v.m.getInterview(id)
}

func (v *txView) UpdateInterview(_ context.Context, iv placement.Interview) error {
	return v.m.updateInterview(iv)
}

func (v *txView) ListInterviews(_ context.Context, f placement.InterviewFilter) ([]placement.Interview, int, error) {
	return v.m.listInterviews(f)
}

func (v *txView) CountInterviews(_ context.Context, jobID *placement.JobID, candidateID *placement.CandidateID) (int, error) {
	return v.m.countInterviews(jobID, candidateID)
}

func (v *txView) HasActiveJoining(_ context.Context, jobID placement.JobID, candidateID placement.CandidateID) (bool, error) {
	return v.m.hasActiveJoining(jobID, candidateID), nil
}

func (v *txView) InsertJoining(_ context.Context, j placement.Joining) error {
	return v.m.insertJoining(j)
}

func (v *txView) InsertReceivable(_ context.Context, r placement.Receivable) error {
	return v.m.insertReceivable(r)
}

func (v *txView) GetReceivable(_ context.Context, id placement.ReceivableID) (*placement.Receivable, error) {
	return v.m.getReceivable(id)
}

func (v *txView) ActiveReceivableByInterview(_ context.Context, id placement.InterviewID) (*placement.Receivable, error) {
	return v.m.activeReceivableByInterview(id)
}

func (v *txView) UpdateReceivable(_ context.Context, r placement.Receivable) error {
	return v.m.updateReceivable(r)
}

func (v *txView) ListReceivables(_ context.Context, f placement.ReceivableFilter) ([]placement.Receivable, int, error) {
	return v.m.listReceivables(f)
}

func (v *txView) InsertInstallment(_ context.Context, ins placement.Installment) error {
	return v.m.insertInstallment(ins)
}

func (v *txView) Installments(_ context.Context, id placement.ReceivableID) ([]placement.Installment, error) {
	return v.m.installmentsFor(id)
}

func (v *txView) InsertCompanyPayment(_ context.Context, p placement.CompanyPayment) error {
	return v.m.insertCompanyPayment(p)
}

func (v *txView) GetCompanyPayment(_ context.Context, id string) (*placement.CompanyPayment, error) {
	return v.m.getCompanyPayment(id)
}

func (v *txView) UpdateCompanyPayment(_ context.Context, p placement.CompanyPayment) error {
	return v.m.updateCompanyPayment(p)
}

func (v *txView) LedgerEntries(_ context.Context, source placement.PaymentSource) ([]placement.LedgerEntry, error) {
	return v.m.ledgerEntries(source)
}

// =============================================================================
// COMPANIES
// =============================================================================

func (m *Memory) insertCompany(c placement.Company) error {
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) getCompany(id placement.CompanyID) (*placement.Company, error) {
	if c, ok := m.companies[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) updateCompany(c placement.Company) error {
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) listCompanies(q string, page placement.PageRequest) ([]placement.Company, int, error) {
	var all []placement.Company
	for _, c := range m.companies {
		if !c.IsActive {
			continue
		}
		if q != "" && !containsFold(c.Name, q) {
			continue
		}
		all = append(all, c)
	}
	sortNewestFirst(all, func(c placement.Company) sortKey {
		return sortKey{at: c.CreatedAt, id: string(c.ID)}
	})
	items, total := paginate(all, page)
	return items, total, nil
}

// =============================================================================
// CANDIDATES
// =============================================================================

func (m *Memory) insertCandidate(c placement.Candidate) error {
	if err := m.checkCandidateUnique(c); err != nil {
		return err
	}
	m.candidates[c.ID] = c
	return nil
}

func (m *Memory) getCandidate(id placement.CandidateID) (*placement.Candidate, error) {
	if c, ok := m.candidates[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) getCandidateDetail(id placement.CandidateID) (*placement.CandidateDetail, error) {
	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	d := placement.CandidateDetail{Candidate: c}
	if fs, ok := m.fees[id]; ok && fs.IsActive {
		fsCopy := fs
		d.FeeStructure = &fsCopy
	}
	d.Payments = append([]placement.CandidatePayment(nil), m.candPayments[id]...)
	for _, iv := range m.interviews {
		if iv.CandidateID == id && iv.IsActive {
			d.InterviewCount++
		}
	}
	return &d, nil
}

func (m *Memory) updateCandidate(c placement.Candidate) error {
	if err := m.checkCandidateUnique(c); err != nil {
		return err
	}
	m.candidates[c.ID] = c
	return nil
}

// Same rule the SQLite unique indexes on email and mobile_number enforce.
func (m *Memory) checkCandidateUnique(c placement.Candidate) error {
	for _, other := range m.candidates {
		if other.ID == c.ID {
			continue
		}
		if (c.Email != "" && other.Email == c.Email) ||
			(c.MobileNumber != "" && other.MobileNumber == c.MobileNumber) {
			return &placement.ConflictError{Reason: "candidate with this email or mobile_number already exists"}
		}
	}
	return nil
}

func (m *Memory) listCandidates(f placement.CandidateFilter) ([]placement.Candidate, int, error) {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	var all []placement.Candidate
	for _, c := range m.candidates {
		if c.IsActive != active {
			continue
		}
		if f.Query != "" && !containsFold(c.FullName, f.Query) &&
			!containsFold(c.Email, f.Query) && !containsFold(c.MobileNumber, f.Query) {
			continue
		}
		if f.Qualification != "" && !containsFold(c.Qualification, f.Qualification) {
			continue
		}
		if f.ExpectedSalaryMin != nil && c.ExpectedSalary < *f.ExpectedSalaryMin {
			continue
		}
		if f.ExpectedSalaryMax != nil && c.ExpectedSalary > *f.ExpectedSalaryMax {
			continue
		}
		if f.ExperienceMin != nil && c.ExperienceYears < *f.ExperienceMin {
			continue
		}
		if f.ExperienceMax != nil && c.ExperienceYears > *f.ExperienceMax {
			continue
		}
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		all = append(all, c)
	}
	sortNewestFirst(all, func(c placement.Candidate) sortKey {
		return sortKey{at: c.CreatedAt, id: string(c.ID)}
	})
	items, total := paginate(all, f.PageRequest)
	return items, total, nil
}

// =============================================================================
// FEE STRUCTURES AND CANDIDATE PAYMENTS
// =============================================================================

func (m *Memory) feeStructureByCandidate(id placement.CandidateID) (*placement.FeeStructure, error) {
	if fs, ok := m.fees[id]; ok && fs.IsActive {
		return &fs, nil
	}
	return nil, nil
}

func (m *Memory) insertFeeStructure(fs placement.FeeStructure) error {
	m.fees[fs.CandidateID] = fs
	return nil
}

func (m *Memory) updateFeeStructure(fs placement.FeeStructure) error {
	m.fees[fs.CandidateID] = fs
	return nil
}

func (m *Memory) insertCandidatePayment(p placement.CandidatePayment) error {
	m.candPayments[p.CandidateID] = append(m.candPayments[p.CandidateID], p)
	return nil
}

func (m *Memory) candidatePayments(id placement.CandidateID) ([]placement.CandidatePayment, error) {
	return append([]placement.CandidatePayment(nil), m.candPayments[id]...), nil
}

// =============================================================================
// JOBS
// =============================================================================

func (m *Memory) insertJob(j placement.Job) error {
	m.jobs[j.ID] = j
	return nil
}

func (m *Memory) getJob(id placement.JobID) (*placement.Job, error) {
	if j, ok := m.jobs[id]; ok {
		return &j, nil
	}
	return nil, nil
}

func (m *Memory) updateJob(j placement.Job) error {
	m.jobs[j.ID] = j
	return nil
}

func (m *Memory) listJobs(f placement.JobFilter) ([]placement.Job, int, error) {
	var all []placement.Job
	for _, j := range m.jobs {
		if !j.IsActive {
			continue
		}
		if f.CompanyID != nil && j.CompanyID != *f.CompanyID {
			continue
		}
		if f.Status != nil && j.Status != *f.Status {
			continue
		}
		if f.SalaryMin != nil && (j.SalaryMin == nil || *j.SalaryMin < *f.SalaryMin) {
			continue
		}
		if f.SalaryMax != nil && (j.SalaryMax == nil || *j.SalaryMax > *f.SalaryMax) {
			continue
		}
		if f.Query != "" && !containsFold(j.Title, f.Query) && !containsFold(j.Description, f.Query) {
			continue
		}
		all = append(all, j)
	}
	sortNewestFirst(all, func(j placement.Job) sortKey {
		return sortKey{at: j.CreatedAt, id: string(j.ID)}
	})
	items, total := paginate(all, f.PageRequest)
	return items, total, nil
}

// =============================================================================
// INTERVIEWS
// =============================================================================

func (m *Memory) insertInterview(iv placement.Interview) error {
	m.interviews[iv.ID] = iv
	return nil
}

func (m *Memory) getInterview(id placement.InterviewID) (*placement.Interview, error) {
	if iv, ok := m.interviews[id]; ok {
		return &iv, nil
	}
	return nil, nil
}

func (m *Memory) updateInterview(iv placement.Interview) error {
	m.interviews[iv.ID] = iv
	return nil
}

func (m *Memory) listInterviews(f placement.InterviewFilter) ([]placement.Interview, int, error) {
	var all []placement.Interview
	for _, iv := range m.interviews {
		if !iv.IsActive {
			continue
		}
		if f.Status != nil && iv.Status != *f.Status {
			continue
		}
		if f.FromDate != nil && iv.InterviewDate.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && iv.InterviewDate.After(*f.ToDate) {
			continue
		}
		if f.JobID != nil && iv.JobID != *f.JobID {
			continue
		}
		if f.CandidateID != nil && iv.CandidateID != *f.CandidateID {
			continue
		}
		if f.CompanyID != nil && iv.CompanyID != *f.CompanyID {
			continue
		}
		all = append(all, iv)
	}
	sortNewestFirst(all, func(iv placement.Interview) sortKey {
		return sortKey{at: iv.CreatedAt, id: string(iv.ID)}
	})
	items, total := paginate(all, f.PageRequest)
	return items, total, nil
}

func (m *Memory) countInterviews(jobID *placement.JobID, candidateID *placement.CandidateID) (int, error) {
	count := 0
	for _, iv := range m.interviews {
		if !iv.IsActive {
			continue
		}
		if jobID != nil && iv.JobID != *jobID {
			continue
		}
		if candidateID != nil && iv.CandidateID != *candidateID {
			continue
		}
		count++
	}
	return count, nil
}

// =============================================================================
// JOININGS
// =============================================================================

func (m *Memory) hasActiveJoining(jobID placement.JobID, candidateID placement.CandidateID) bool {
	for _, j := range m.joinings {
		if j.IsActive && j.JobID == jobID && j.CandidateID == candidateID {
			return true
		}
	}
	return false
}

func (m *Memory) insertJoining(j placement.Joining) error {
	// Same rule the SQLite partial unique index enforces.
	if j.IsActive && m.hasActiveJoining(j.JobID, j.CandidateID) {
		return &placement.ConflictError{Reason: "candidate already marked as JOINED for this job"}
	}
	m.joinings = append(m.joinings, j)
	return nil
}

// =============================================================================
// RECEIVABLES AND INSTALLMENTS
// =============================================================================

func (m *Memory) insertReceivable(r placement.Receivable) error {
	m.receivables[r.ID] = r
	return nil
}

func (m *Memory) getReceivable(id placement.ReceivableID) (*placement.Receivable, error) {
	if r, ok := m.receivables[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) activeReceivableByInterview(id placement.InterviewID) (*placement.Receivable, error) {
	for _, r := range m.receivables {
		if r.IsActive && r.InterviewID == id {
			rc := r
			return &rc, nil
		}
	}
	return nil, nil
}

func (m *Memory) updateReceivable(r placement.Receivable) error {
	m.receivables[r.ID] = r
	return nil
}

func (m *Memory) listReceivables(f placement.ReceivableFilter) ([]placement.Receivable, int, error) {
	var all []placement.Receivable
	for _, r := range m.receivables {
		if !r.IsActive {
			continue
		}
		if f.CandidateID != nil && r.CandidateID != *f.CandidateID {
			continue
		}
		if f.JobID != nil && r.JobID != *f.JobID {
			continue
		}
		if f.Outstanding && r.Balance <= 0 {
			continue
		}
		all = append(all, r)
	}
	sortNewestFirst(all, func(r placement.Receivable) sortKey {
		return sortKey{at: r.CreatedAt, id: string(r.ID)}
	})
	items, total := paginate(all, f.PageRequest)
	return items, total, nil
}

func (m *Memory) insertInstallment(ins placement.Installment) error {
	m.installments[ins.ReceivableID] = append(m.installments[ins.ReceivableID], ins)
	return nil
}

func (m *Memory) installmentsFor(id placement.ReceivableID) ([]placement.Installment, error) {
	return append([]placement.Installment(nil), m.installments[id]...), nil
}

// =============================================================================
// COMPANY PAYMENTS
// =============================================================================

func (m *Memory) insertCompanyPayment(p placement.CompanyPayment) error {
	m.companyPayments[p.ID] = p
	return nil
}

func (m *Memory) getCompanyPayment(id string) (*placement.CompanyPayment, error) {
	if p, ok := m.companyPayments[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) updateCompanyPayment(p placement.CompanyPayment) error {
	m.companyPayments[p.ID] = p
	return nil
}

// =============================================================================
// LEDGER PROJECTIONS
// =============================================================================

func (m *Memory) ledgerEntries(source placement.PaymentSource) ([]placement.LedgerEntry, error) {
	var entries []placement.LedgerEntry
	switch source {
	case placement.SourceCompanyPayment:
		for _, p := range m.companyPayments {
			e := placement.LedgerEntry{
				ID:          p.ID,
				Source:      placement.SourceCompanyPayment,
				PaymentDate: p.PaymentDate,
				Amount:      p.Amount,
				CreatedAt:   p.CreatedAt,
				IsActive:    p.IsActive,
				CompanyID:   ptr(p.CompanyID),
				Remarks:     remarksPtr(p.Remarks),
			}
			if c, ok := m.companies[p.CompanyID]; ok {
				e.CompanyName = ptr(c.Name)
			}
			entries = append(entries, e)
		}
	case placement.SourceCandidatePayment:
		for candID, payments := range m.candPayments {
			name := ""
			if c, ok := m.candidates[candID]; ok {
				name = c.FullName
			}
			for _, p := range payments {
				entries = append(entries, placement.LedgerEntry{
					ID:            p.ID,
					Source:        placement.SourceCandidatePayment,
					PaymentDate:   p.PaymentDate,
					Amount:        p.Amount,
					CreatedAt:     p.CreatedAt,
					IsActive:      p.IsActive,
					CandidateID:   ptr(candID),
					CandidateName: ptr(name),
					Remarks:       remarksPtr(p.Remarks),
				})
			}
		}
	case placement.SourcePlacementIncome:
		for recID, list := range m.installments {
			rec, ok := m.receivables[recID]
			if !ok {
				continue
			}
			for _, ins := range list {
				e := placement.LedgerEntry{
					ID:                ins.ID,
					Source:            placement.SourcePlacementIncome,
					PaymentDate:       ins.PaidDate,
					Amount:            ins.Amount,
					CreatedAt:         ins.CreatedAt,
					IsActive:          ins.IsActive,
					PlacementIncomeID: ptr(recID),
					CandidateID:       ptr(rec.CandidateID),
					JobID:             ptr(rec.JobID),
					InterviewID:       ptr(rec.InterviewID),
					Remarks:           remarksPtr(ins.Remarks),
				}
				if c, ok := m.candidates[rec.CandidateID]; ok {
					e.CandidateName = ptr(c.FullName)
				}
				if j, ok := m.jobs[rec.JobID]; ok {
					e.JobTitle = ptr(j.Title)
					e.CompanyID = ptr(j.CompanyID)
					if co, ok := m.companies[j.CompanyID]; ok {
						e.CompanyName = ptr(co.Name)
					}
				}
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func paginate[T any](all []T, page placement.PageRequest) ([]T, int) {
	page = page.Normalize()
	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return append([]T(nil), all[start:end]...), total
}

type sortKey struct {
	at time.Time
	id string
}

// sortNewestFirst orders by created_at descending with id as a
// deterministic tiebreak, matching the SQLite list queries.
func sortNewestFirst[T any](all []T, key func(T) sortKey) {
	sort.Slice(all, func(i, j int) bool {
		a, b := key(all[i]), key(all[j])
		if !a.at.Equal(b.at) {
			return a.at.After(b.at)
		}
		return a.id < b.id
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func ptr[T any](v T) *T { return &v }

func remarksPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
