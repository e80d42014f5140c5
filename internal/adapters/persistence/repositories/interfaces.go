package repositories

import (
	"context"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)

	// RegisterFailedLogin atomically increments the failed-login counter
	// and, when it reaches threshold, sets the lockout deadline. Returns
	// the counter value after the increment.
	RegisterFailedLogin(ctx context.Context, id uint, threshold int, lockedUntil time.Time) (int, error)

	// ResetLoginState clears the failed-login counter and lockout, and
	// records the login time.
	ResetLoginState(ctx context.Context, id uint, lastLogin time.Time) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// StudentRepository defines student repository interface
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByStudentNo(ctx context.Context, studentNo string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	List(ctx context.Context, search string, offset, limit int) ([]*models.Student, int64, error)
	ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// ItemRepository defines item repository interface
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	List(ctx context.Context, offset, limit int) ([]*models.Item, int64, error)
	ListAvailable(ctx context.Context) ([]*models.Item, error)
	ExistsByAssetTag(ctx context.Context, assetTag string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	// CreateForItem inserts the loan only if the referenced item is
	// active and has no loan in an active status. The availability check
	// and the insert run in one transaction with the item row locked, so
	// concurrent creates for the same item serialize.
	CreateForItem(ctx context.Context, loan *models.Loan) error

	GetByID(ctx context.Context, id uint) (*models.Loan, error)

	// CloseLoan flips an active loan to RETURNED in a single conditional
	// update. Returns the number of rows changed: 0 means the loan was
	// missing or already returned.
	CloseLoan(ctx context.Context, id uint, closedBy uint, returnedAt time.Time) (int64, error)

	// MarkOverdue batch-updates loans still TAKEN with taken_at on or
	// before cutoff to OVERDUE, returning the number of rows changed.
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)

	List(ctx context.Context, status string, studentID uint, offset, limit int) ([]*models.Loan, int64, error)
	CountByStatus(ctx context.Context, statuses ...string) (int64, error)
	CountReturnedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountActiveForItem(ctx context.Context, itemID uint) (int64, error)
}

// AuditRepository defines the append-only audit repository interface.
// There is deliberately no update or delete method.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	Query(ctx context.Context, filter AuditFilter, offset, limit int) ([]*models.AuditEntry, int64, error)
}

// AuditFilter narrows an audit query. Zero values mean "any".
type AuditFilter struct {
	ActorID  uint
	Action   string
	Entity   string
	FromTime time.Time
	ToTime   time.Time
}
