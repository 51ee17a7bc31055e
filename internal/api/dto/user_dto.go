package dto

import (
	"time"

	"github.com/vibetickets/helpdesk/internal/domain"
)

// UserRegisterRequest payload for new customers.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse public view of a user account.
type UserResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Role               domain.UserRole `json:"role"`
	SubscriptionStatus *string         `json:"subscription_status,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// AgentResponse lists an agent with their current workload.
type AgentResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            domain.UserRole `json:"role"`
	AssignedTickets int64           `json:"assigned_tickets"`
}

// UserResponseFrom maps a domain user.
func UserResponseFrom(user *domain.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		SubscriptionStatus: user.SubscriptionStatus,
		CreatedAt:          user.CreatedAt,
	}
}
