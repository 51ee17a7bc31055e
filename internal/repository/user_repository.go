package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/vibetickets/helpdesk/internal/domain"
)

// AgentSummary is a roster entry with the agent's current workload.
type AgentSummary struct {
	ID              string
	Name            string
	Email           string
	Role            domain.UserRole
	AssignedTickets int64
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	UpdateSubscription(ctx context.Context, userID string, subscriptionID, status *string) error
	ListAgents(ctx context.Context) ([]AgentSummary, error)
}

type userRepository struct {
	db Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db Querier) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, stripe_customer_id,
               subscription_id, subscription_status, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, name, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id=$1`
	return r.fetchSingle(ctx, query, customerID)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.StripeCustomerID,
		&user.SubscriptionID,
		&user.SubscriptionStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	const query = `UPDATE users SET stripe_customer_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, customerID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateSubscription(ctx context.Context, userID string, subscriptionID, status *string) error {
	const query = `UPDATE users SET subscription_id=$1, subscription_status=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, subscriptionID, status, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ListAgents(ctx context.Context) ([]AgentSummary, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.role, COUNT(t.id)
        FROM users u
        LEFT JOIN tickets t ON t.assignee_id = u.id
        WHERE u.role IN ('AGENT','ADMIN')
        GROUP BY u.id, u.name, u.email, u.role
        ORDER BY u.name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AgentSummary
	for rows.Next() {
		var agent AgentSummary
		if err := rows.Scan(
			&agent.ID,
			&agent.Name,
			&agent.Email,
			&agent.Role,
			&agent.AssignedTickets,
		); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}
