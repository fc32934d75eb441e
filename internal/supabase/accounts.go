package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	"go.uber.org/zap"
)

const adminUsersPath = authPrefix + "/admin/users"

// authUser is the subset of the auth admin user object the dashboard reads.
type authUser struct {
	Id           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    *time.Time     `json:"created_at"`
	LastSignInAt *time.Time     `json:"last_sign_in_at"`
}

type listUsersResponse struct {
	Users []authUser `json:"users"`
}

func userPath(accountId string) string {
	return adminUsersPath + "/" + url.PathEscape(accountId)
}

// ListAccounts returns one page (1-based) of identity-store users.
func (s *Service) ListAccounts(ctx context.Context, page, pageSize int) ([]models.Account, error) {
	var resp listUsersResponse
	err := s.do(ctx, request{
		op:     "list accounts",
		method: http.MethodGet,
		path:   adminUsersPath,
		query: url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(pageSize)},
		},
		notFound: store.ErrAccountNotFound,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("unable to list accounts page %d: %w", page, err)
	}

	accounts := make([]models.Account, 0, len(resp.Users))
	for i := range resp.Users {
		accounts = append(accounts, userToAccount(&resp.Users[i]))
	}
	return accounts, nil
}

func (s *Service) CreateAccount(ctx context.Context, email, secret string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	zap.L().Info("Creating account", zap.String("email", email))

	err := s.do(ctx, request{
		op:     "create account",
		method: http.MethodPost,
		path:   adminUsersPath,
		body: map[string]any{
			"email":         email,
			"password":      secret,
			"email_confirm": true,
			"user_metadata": metadata,
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("unable to create account %s: %w", email, err)
	}
	return nil
}

func (s *Service) UpdateAccountMetadata(ctx context.Context, accountId string, metadata map[string]any) error {
	err := s.do(ctx, request{
		op:       "update account",
		method:   http.MethodPut,
		path:     userPath(accountId),
		body:     map[string]any{"user_metadata": metadata},
		notFound: store.ErrAccountNotFound,
	}, nil)
	if err != nil {
		return fmt.Errorf("unable to update account %s: %w", accountId, err)
	}
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, accountId string) error {
	err := s.do(ctx, request{
		op:       "delete account",
		method:   http.MethodDelete,
		path:     userPath(accountId),
		notFound: store.ErrAccountNotFound,
	}, nil)
	if err != nil {
		return fmt.Errorf("unable to delete account %s: %w", accountId, err)
	}
	return nil
}

func userToAccount(u *authUser) models.Account {
	acct := models.Account{
		Id:           u.Id,
		Email:        u.Email,
		Metadata:     u.UserMetadata,
		LastSignInAt: u.LastSignInAt,
	}
	if acct.Metadata == nil {
		acct.Metadata = map[string]any{}
	}
	if u.CreatedAt != nil {
		acct.CreatedAt = *u.CreatedAt
	}
	return acct
}
