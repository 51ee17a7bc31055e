package domain

import "time"

// UserRole distinguishes customers from helpdesk staff.
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleAgent    UserRole = "AGENT"
	RoleAdmin    UserRole = "ADMIN"
)

// IsStaff reports whether the role belongs to helpdesk personnel.
func (r UserRole) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is anyone who can sign in: customers filing tickets and the
// agents/admins working them. Billing fields are pass-through state
// owned by the payment processor.
type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Role               UserRole
	StripeCustomerID   *string
	SubscriptionID     *string
	SubscriptionStatus *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
