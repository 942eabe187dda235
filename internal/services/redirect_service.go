// Package services contains the implementation of RedirectServ.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"redirector/internal/domain/models"
	"redirector/internal/ratelimit"
	"redirector/internal/selector"
	"redirector/internal/storage"
	"redirector/internal/token"

	"go.uber.org/zap"
)

// Admission actions recorded in stats.
const (
	ActionIssueToken = "issue-token"
	ActionSelect     = "select"
)

// IssueRequest is the input of IssueToken.
type IssueRequest struct {
	// ClientID: admission key of the caller.
	ClientID string
	// Context: opaque caller-supplied fields, stored with the token.
	Context token.Context
	// Binding: session id the token is tied to, empty when unbound.
	Binding string
}

// RedirectService is the redirect core consumed by the HTTP layer.
type RedirectService interface {
	IssueToken(ctx context.Context, req IssueRequest) (string, error)
	RedeemToken(ctx context.Context, tok, binding string) (string, error)
	SelectDirect(ctx context.Context, clientID string) (models.RedirectTarget, error)
	Ping(ctx context.Context) error
}

var _ RedirectService = (*RedirectServ)(nil)

// RedirectServ wires the token store, the limiter and the selector to the destination table.
type RedirectServ struct {
	targets  storage.TargetStore
	tokens   *token.Store
	limiter  *ratelimit.Limiter
	selector *selector.Selector
	stats    []ratelimit.StatsStore
	sugar    *zap.SugaredLogger
	now      func() time.Time
}

// NewRedirectService builds the service. The selector is expected to record hits into targets.
func NewRedirectService(
	targets storage.TargetStore,
	tokens *token.Store,
	limiter *ratelimit.Limiter,
	sel *selector.Selector,
	sugar *zap.SugaredLogger,
	stats ...ratelimit.StatsStore,
) *RedirectServ {
	return &RedirectServ{
		targets:  targets,
		tokens:   tokens,
		limiter:  limiter,
		selector: sel,
		stats:    stats,
		sugar:    sugar,
		now:      time.Now,
	}
}

// IssueToken admits the client and stores a fresh single-use token.
func (s *RedirectServ) IssueToken(ctx context.Context, req IssueRequest) (string, error) {
	if err := s.admit(ctx, req.ClientID, ActionIssueToken); err != nil {
		return "", err
	}

	id, err := s.tokens.Issue(req.Context, req.ClientID, req.Binding)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return id, nil
}

// RedeemToken consumes tok and returns the URL of a freshly selected destination.
// The token is gone after the call whatever the outcome.
func (s *RedirectServ) RedeemToken(ctx context.Context, tok, binding string) (string, error) {
	if tok == "" {
		return "", ErrTokenRequired
	}

	entry, err := s.tokens.Redeem(tok)
	switch {
	case errors.Is(err, token.ErrNotFound), errors.Is(err, token.ErrExpired):
		s.sugar.Warnw("invalid token", "reason", err.Error())
		return "", ErrInvalidToken
	case err != nil:
		return "", fmt.Errorf("redeem token: %w", err)
	}

	if entry.Binding != "" && entry.Binding != binding {
		s.sugar.Warnw("invalid token", "reason", "session mismatch", "client", entry.ClientID)
		return "", ErrInvalidToken
	}

	target, err := s.selectTarget(ctx)
	if err != nil {
		return "", err
	}

	s.sugar.Infow("token redeemed",
		"client", entry.ClientID,
		"target", target.ID,
		"url", target.URL,
	)
	return target.URL, nil
}

// SelectDirect admits the client and selects a destination without a token.
func (s *RedirectServ) SelectDirect(ctx context.Context, clientID string) (models.RedirectTarget, error) {
	if err := s.admit(ctx, clientID, ActionSelect); err != nil {
		return models.RedirectTarget{}, err
	}

	target, err := s.selectTarget(ctx)
	if err != nil {
		return models.RedirectTarget{}, err
	}

	s.sugar.Infow("direct selection",
		"client", clientID,
		"target", target.ID,
		"url", target.URL,
	)
	return target, nil
}

// Ping checks the destination table.
func (s *RedirectServ) Ping(ctx context.Context) error {
	return s.targets.Ping(ctx)
}

func (s *RedirectServ) admit(ctx context.Context, clientID, action string) error {
	d := s.limiter.Decide(clientID)
	s.record(ctx, ratelimit.StatsEvent{
		Key:     clientID,
		Allowed: d.Allowed,
		Action:  action,
		At:      s.now(),
	})

	if !d.Allowed {
		s.sugar.Warnw("rate limit exceeded",
			"client", clientID,
			"action", action,
			"retry_after", d.RetryAfter,
		)
		return &RateLimitedError{RetryAfter: d.RetryAfter}
	}
	return nil
}

func (s *RedirectServ) record(ctx context.Context, ev ratelimit.StatsEvent) {
	for _, st := range s.stats {
		if err := st.Record(ctx, ev); err != nil {
			s.sugar.Debugw("admission stats not recorded", "error", err)
		}
	}
}

func (s *RedirectServ) selectTarget(ctx context.Context) (models.RedirectTarget, error) {
	targets, err := s.targets.ActiveTargets(ctx)
	if err != nil {
		return models.RedirectTarget{}, fmt.Errorf("load active targets: %w", err)
	}

	target, err := s.selector.SelectAndRecord(ctx, targets)
	switch {
	case errors.Is(err, selector.ErrNoneAvailable):
		return models.RedirectTarget{}, ErrNoDestinations
	case errors.Is(err, storage.ErrTargetNotFound):
		// removed after it was listed; the hit is lost, the redirect is not
		s.sugar.Warnw("hit not recorded, target removed", "target", target.ID, "url", target.URL)
		return target, nil
	case err != nil:
		return models.RedirectTarget{}, fmt.Errorf("select target: %w", err)
	}
	return target, nil
}
