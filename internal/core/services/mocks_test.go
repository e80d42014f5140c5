package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. They hold the same
// invariants the MySQL implementations enforce (atomic failed-login
// counting, one active loan per item) so service tests exercise real
// concurrency behavior.

// ------------------------------------------------------------
// fakeUserRepo
// ------------------------------------------------------------

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User

	failedLoginCalls int
	resetCalls       int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, offset, limit), int64(len(r.users)), nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) RegisterFailedLogin(ctx context.Context, id uint, threshold int, lockedUntil time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedLoginCalls++
	u, ok := r.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	u.FailedLogins++
	if u.FailedLogins >= threshold {
		until := lockedUntil
		u.LockedUntil = &until
	}
	return u.FailedLogins, nil
}

func (r *fakeUserRepo) ResetLoginState(ctx context.Context, id uint, lastLogin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetCalls++
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FailedLogins = 0
	u.LockedUntil = nil
	t := lastLogin
	u.LastLoginAt = &t
	return nil
}

// ------------------------------------------------------------
// fakeTokenRepo
// ------------------------------------------------------------

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*models.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{nextID: 1, tokens: make(map[uint]*models.RefreshToken)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	r.nextID++
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Revoke(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *fakeTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) activeCountForUser(userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

// ------------------------------------------------------------
// fakeStudentRepo
// ------------------------------------------------------------

type fakeStudentRepo struct {
	mu       sync.Mutex
	nextID   uint
	students map[uint]*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{nextID: 1, students: make(map[uint]*models.Student)}
}

func (r *fakeStudentRepo) add(s *models.Student) *models.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	}
	r.students[s.ID] = s
	return s
}

func (r *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	r.add(student)
	return nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStudentRepo) GetByStudentNo(ctx context.Context, studentNo string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.StudentNo == studentNo {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *student
	r.students[student.ID] = &cp
	return nil
}

func (r *fakeStudentRepo) List(ctx context.Context, search string, offset, limit int) ([]*models.Student, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Student, 0, len(r.students))
	for _, s := range r.students {
		if search != "" &&
			!strings.Contains(s.StudentNo, search) &&
			!strings.Contains(s.FirstName, search) &&
			!strings.Contains(s.LastName, search) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	return paginate(out, offset, limit), total, nil
}

func (r *fakeStudentRepo) ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error) {
	_, err := r.GetByStudentNo(ctx, studentNo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeStudentRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.students)), nil
}

// ------------------------------------------------------------
// fakeItemRepo
// ------------------------------------------------------------

type fakeItemRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*models.Item

	loans *fakeLoanRepo // set by newFakeLedger for ListAvailable
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{nextID: 1, items: make(map[uint]*models.Item)}
}

func (r *fakeItemRepo) add(i *models.Item) *models.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.ID == 0 {
		i.ID = r.nextID
		r.nextID++
	}
	r.items[i.ID] = i
	return i
}

func (r *fakeItemRepo) Create(ctx context.Context, item *models.Item) error {
	r.add(item)
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) List(ctx context.Context, offset, limit int) ([]*models.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Item, 0, len(r.items))
	for _, i := range r.items {
		cp := *i
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, offset, limit), int64(len(r.items)), nil
}

func (r *fakeItemRepo) ListAvailable(ctx context.Context) ([]*models.Item, error) {
	r.mu.Lock()
	items := make([]*models.Item, 0, len(r.items))
	for _, i := range r.items {
		if i.IsActive {
			cp := *i
			items = append(items, &cp)
		}
	}
	r.mu.Unlock()

	out := make([]*models.Item, 0, len(items))
	for _, i := range items {
		n, _ := r.loans.CountActiveForItem(ctx, i.ID)
		if n == 0 {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeItemRepo) ExistsByAssetTag(ctx context.Context, assetTag string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.items {
		if i.AssetTag != nil && *i.AssetTag == assetTag {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeItemRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

// ------------------------------------------------------------
// fakeLoanRepo
// ------------------------------------------------------------

type fakeLoanRepo struct {
	mu     sync.Mutex
	nextID uint
	loans  map[uint]*models.Loan

	items *fakeItemRepo
}

func newFakeLoanRepo(items *fakeItemRepo) *fakeLoanRepo {
	r := &fakeLoanRepo{nextID: 1, loans: make(map[uint]*models.Loan), items: items}
	items.loans = r
	return r
}

func (r *fakeLoanRepo) CreateForItem(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.items.GetByID(ctx, loan.ItemID)
	if err != nil || !item.IsActive {
		return domain.ErrItemUnavailable
	}
	for _, l := range r.loans {
		if l.ItemID == loan.ItemID && l.IsActive() {
			return domain.ErrItemAlreadyOnLoan
		}
	}

	loan.ID = r.nextID
	r.nextID++
	cp := *loan
	r.loans[loan.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) CloseLoan(ctx context.Context, id uint, closedBy uint, returnedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok || !l.IsActive() {
		return 0, nil
	}
	l.Status = models.LoanStatusReturned
	t := returnedAt
	l.ReturnedAt = &t
	by := closedBy
	l.ClosedBy = &by
	return 1, nil
}

func (r *fakeLoanRepo) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.Status == models.LoanStatusTaken && l.ReturnedAt == nil && !l.TakenAt.After(cutoff) {
			l.Status = models.LoanStatusOverdue
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) List(ctx context.Context, status string, studentID uint, offset, limit int) ([]*models.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Loan, 0, len(r.loans))
	for _, l := range r.loans {
		if status != "" && l.Status != status {
			continue
		}
		if studentID != 0 && l.StudentID != studentID {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	return paginate(out, offset, limit), total, nil
}

func (r *fakeLoanRepo) CountByStatus(ctx context.Context, statuses ...string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		for _, s := range statuses {
			if l.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) CountReturnedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.ReturnedAt != nil && !l.ReturnedAt.Before(from) && l.ReturnedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) CountActiveForItem(ctx context.Context, itemID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.ItemID == itemID && l.IsActive() {
			n++
		}
	}
	return n, nil
}

// ------------------------------------------------------------
// fakeAuditRepo
// ------------------------------------------------------------

type fakeAuditRepo struct {
	mu      sync.Mutex
	nextID  uint
	entries []*models.AuditEntry

	failWrites bool
	clock      func() time.Time
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{nextID: 1, clock: time.Now}
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return errors.New("audit store unavailable")
	}
	entry.ID = r.nextID
	r.nextID++
	entry.CreatedAt = r.clock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) Query(ctx context.Context, filter repositories.AuditFilter, offset, limit int) ([]*models.AuditEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AuditEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter.ActorID != 0 && (e.ActorID == nil || *e.ActorID != filter.ActorID) {
			continue
		}
		if filter.Action != "" && string(e.Action) != filter.Action {
			continue
		}
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		// Same window semantics as the MySQL query: from inclusive,
		// to exclusive
		if !filter.FromTime.IsZero() && e.CreatedAt.Before(filter.FromTime) {
			continue
		}
		if !filter.ToTime.IsZero() && !e.CreatedAt.Before(filter.ToTime) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	// Newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	return paginate(out, offset, limit), total, nil
}

func (r *fakeAuditRepo) byAction(action domain.AuditAction) []*models.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.AuditEntry{}
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func paginate[T any](in []T, offset, limit int) []T {
	if offset >= len(in) {
		return []T{}
	}
	end := len(in)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return in[offset:end]
}
