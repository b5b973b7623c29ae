package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"authportal/internal/model"
	"authportal/internal/repository"
)

var errNoAccount = errors.New("no account with a password for that email")

// Invitation is one entry of an import file.
type Invitation struct {
	Email string `json:"email"`
	Group string `json:"group"`
}

// ImportSummary counts what Import did.
type ImportSummary struct {
	Created int
	Updated int
	Skipped int
}

type provisioner struct {
	users  repository.UserRepository
	domain string
	logger *slog.Logger
}

func newProvisioner(users repository.UserRepository, domain string, logger *slog.Logger) *provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &provisioner{users: users, domain: domain, logger: logger}
}

func decodeInvitations(r io.Reader) ([]Invitation, error) {
	var invitations []Invitation
	if err := json.NewDecoder(r).Decode(&invitations); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return invitations, nil
}

// Invite creates an invited account, or updates the group of an existing
// one. It reports whether a new row was created.
func (p *provisioner) Invite(ctx context.Context, inv Invitation) (bool, error) {
	if err := p.check(inv); err != nil {
		return false, err
	}

	existing := p.users.FindByEmail(ctx, inv.Email)
	if existing.Status == repository.LookupUnavailable {
		return false, fmt.Errorf("error checking account %s: %w", inv.Email, existing.Err)
	}
	if err := p.users.Invite(ctx, &model.User{Email: inv.Email, UserGroup: inv.Group}); err != nil {
		return false, fmt.Errorf("error inviting account %s: %w", inv.Email, err)
	}
	return !existing.Found(), nil
}

// Import invites every valid entry. Invalid entries are skipped; the first
// store failure stops the run.
func (p *provisioner) Import(ctx context.Context, invitations []Invitation) (ImportSummary, error) {
	var sum ImportSummary
	for _, inv := range invitations {
		if err := p.check(inv); err != nil {
			p.logger.Warn("skipping entry", "email", inv.Email, "reason", err)
			sum.Skipped++
			continue
		}
		created, err := p.Invite(ctx, inv)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
	}
	return sum, nil
}

// Revoke returns an account to the invited state.
func (p *provisioner) Revoke(ctx context.Context, email string) error {
	res := p.users.ClearPasswordHash(ctx, email)
	switch res.Status {
	case repository.UpdateApplied:
		return nil
	case repository.UpdateNoRows:
		return fmt.Errorf("%s: %w", email, errNoAccount)
	default:
		return fmt.Errorf("revoke %s: %w", email, res.Err)
	}
}

func (p *provisioner) check(inv Invitation) error {
	if inv.Group == "" {
		return errors.New("group is required")
	}
	if !strings.HasSuffix(inv.Email, "@"+p.domain) {
		return fmt.Errorf("email must end with @%s", p.domain)
	}
	return nil
}
