package models

import (
	"time"

	"gorm.io/gorm"

	"dormdesk-lendtrack/internal/core/domain"
)

// ============================================================
// Auth tables
// ============================================================

// User represents the users table (staff identities)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	FullName     string         `gorm:"size:100" json:"full_name"`
	Role         string         `gorm:"size:20;not null;default:'CLERK'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	FailedLogins int            `gorm:"default:0" json:"-"`
	LockedUntil  *time.Time     `json:"-"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsLocked reports whether the account is inside a lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// UserResponse DTO
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table.
// Only the SHA-256 hash of a token is stored; rotation revokes the old
// row and inserts a new one.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenID   string     `gorm:"size:36;not null" json:"-"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Ledger tables
// ============================================================

// Student represents the students table (borrowers, not login identities)
type Student struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StudentNo string         `gorm:"uniqueIndex;size:20;not null" json:"student_no"`
	FirstName string         `gorm:"size:50;not null" json:"first_name"`
	LastName  string         `gorm:"size:50;not null" json:"last_name"`
	Room      string         `gorm:"size:20" json:"room"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Student) TableName() string {
	return "students"
}

// Item represents the items table (loanable physical objects)
type Item struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Category  string         `gorm:"size:50;index" json:"category"`
	AssetTag  *string        `gorm:"size:50;uniqueIndex" json:"asset_tag"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Item) TableName() string {
	return "items"
}

// Loan statuses. TAKEN and OVERDUE count as active; RETURNED is terminal.
const (
	LoanStatusTaken    = "TAKEN"
	LoanStatusOverdue  = "OVERDUE"
	LoanStatusReturned = "RETURNED"
)

// ActiveLoanStatuses are the statuses that block further loans of an item.
var ActiveLoanStatuses = []string{LoanStatusTaken, LoanStatusOverdue}

// Loan represents the loans table.
// Invariant: at most one loan per item with status in ActiveLoanStatuses.
type Loan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	StudentID    uint       `gorm:"not null;index" json:"student_id"`
	ItemID       uint       `gorm:"not null;index:idx_loans_item_status" json:"item_id"`
	Destination  string     `gorm:"size:100;not null" json:"destination"`
	CardReceived bool       `gorm:"default:false" json:"card_received"`
	TakenAt      time.Time  `gorm:"not null;index:idx_loans_status_taken,priority:2" json:"taken_at"`
	ReturnedAt   *time.Time `json:"returned_at"`
	Status       string     `gorm:"size:20;not null;default:'TAKEN';index:idx_loans_item_status;index:idx_loans_status_taken,priority:1" json:"status"`
	CreatedBy    uint       `gorm:"not null" json:"created_by"`
	ClosedBy     *uint      `json:"closed_by"`
	Notes        string     `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Item    *Item    `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Creator *User    `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Closer  *User    `gorm:"foreignKey:ClosedBy" json:"closer,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsActive reports whether the loan still blocks its item.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusTaken || l.Status == LoanStatusOverdue
}

// ============================================================
// Audit table
// ============================================================

// AuditEntry represents the audit_entries table. Rows are append-only:
// the repository interface exposes no update or delete path.
type AuditEntry struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	ActorID   *uint              `gorm:"index" json:"actor_id"`
	Action    domain.AuditAction `gorm:"size:30;not null;index" json:"action"`
	Entity    string             `gorm:"size:30;not null;index" json:"entity"`
	EntityID  *uint              `json:"entity_id"`
	IP        string             `gorm:"size:50" json:"ip"`
	UserAgent string             `gorm:"size:255" json:"user_agent"`
	Diff      string             `gorm:"type:text" json:"diff,omitempty"`
	CreatedAt time.Time          `gorm:"autoCreateTime;index" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Student{},
		&Item{},
		&Loan{},
		&AuditEntry{},
	)
}
