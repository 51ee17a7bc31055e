package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetickets/helpdesk/internal/config"
	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/repository"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = "user-" + user.Email
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := r.byEmail[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return nil
}

func (r *fakeUserRepo) UpdateSubscription(ctx context.Context, userID string, subscriptionID, status *string) error {
	return nil
}

func (r *fakeUserRepo) ListAgents(ctx context.Context) ([]repository.AgentSummary, error) {
	return nil, nil
}

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	// Minimum bcrypt cost keeps the tests fast.
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, users)
	return svc, users
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, _ := newAuthFixture()

	user, token, exp, err := svc.Register(context.Background(), "Jamie", "Jamie@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Equal(t, "jamie@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), "Jamie", "jamie@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "Other", "jamie@example.com", "different")
	assert.Equal(t, "CONFLICT", errCode(t, err))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), "Jamie", "jamie@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "jamie@example.com", "wrong")
	assert.Equal(t, "UNAUTHENTICATED", errCode(t, err))

	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.Equal(t, "UNAUTHENTICATED", errCode(t, err))
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture()

	registered, _, _, err := svc.Register(context.Background(), "Jamie", "jamie@example.com", "hunter22")
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "JAMIE@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
}
