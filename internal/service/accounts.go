package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkhouse/storyapi/internal/core"
	"github.com/inkhouse/storyapi/internal/data"
	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// ErrNoRole is returned by ResolveRole when the email has no access.
var ErrNoRole = errors.New("email has no assigned role")

// AccountServiceOptions groups dependencies for AccountService.
type AccountServiceOptions struct {
	Repo   core.AccountRepository
	Logger *slog.Logger
}

// AccountService manages the allow list and resolves emails to roles.
type AccountService struct {
	repo   core.AccountRepository
	logger *slog.Logger
}

// NewAccountService constructs a new AccountService.
func NewAccountService(opts AccountServiceOptions) *AccountService {
	if opts.Repo == nil {
		panic("AccountService requires a repository")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{repo: opts.Repo, logger: logger}
}

// ResolveRole maps a verified email to an authorization role.
//
// Listed emails get their declared role. An unlisted email on an EMPTY allow
// list gets the editor role: the first deployment has no entries, and nobody
// could administer it otherwise. An unlisted email on a non-empty list, or
// any store failure, resolves to ErrNoRole; the store failing never grants
// access.
func (s *AccountService) ResolveRole(ctx context.Context, email string) (domainauth.Role, error) {
	acct, err := s.repo.Lookup(ctx, email)
	if err == nil {
		// normalize here too: rows written out of band may carry any
		// role string, and anything but "reader" means editor
		return domainauth.ParseRole(string(acct.Role)), nil
	}
	if !errors.Is(err, data.ErrAccountNotFound) {
		s.logger.ErrorContext(ctx, "account lookup failed", "error", err)
		return "", ErrNoRole
	}

	n, countErr := s.repo.Count(ctx)
	if countErr != nil {
		s.logger.ErrorContext(ctx, "account count failed", "error", countErr)
		return "", ErrNoRole
	}
	if n == 0 {
		s.logger.WarnContext(ctx, "allow list empty, granting bootstrap editor access", "email", email)
		return domainauth.RoleEditor, nil
	}
	return "", ErrNoRole
}

// Create adds an allow-list entry.
func (s *AccountService) Create(ctx context.Context, req *model.CreateAccountRequest) (*model.AllowedAccount, error) {
	return s.repo.Create(ctx, req)
}

// List returns all allow-list entries.
func (s *AccountService) List(ctx context.Context) ([]*model.AllowedAccount, error) {
	return s.repo.List(ctx)
}

// Delete removes an allow-list entry by ID.
func (s *AccountService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
