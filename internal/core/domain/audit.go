package domain

// AuditAction is the closed set of action tags written to the audit trail.
type AuditAction string

const (
	ActionUserLogin     AuditAction = "USER_LOGIN"
	ActionUserLogout    AuditAction = "USER_LOGOUT"
	ActionTokenRefresh  AuditAction = "TOKEN_REFRESH"
	ActionUserCreate    AuditAction = "USER_CREATE"
	ActionUserUpdate    AuditAction = "USER_UPDATE"
	ActionStudentCreate AuditAction = "STUDENT_CREATE"
	ActionStudentUpdate AuditAction = "STUDENT_UPDATE"
	ActionItemCreate    AuditAction = "ITEM_CREATE"
	ActionItemUpdate    AuditAction = "ITEM_UPDATE"
	ActionLoanCreate    AuditAction = "LOAN_CREATE"
	ActionLoanReturn    AuditAction = "LOAN_RETURN"
	ActionLoanOverdue   AuditAction = "LOAN_OVERDUE"
)

// Audited entity names.
const (
	EntityUser    = "user"
	EntityStudent = "student"
	EntityItem    = "item"
	EntityLoan    = "loan"
)
