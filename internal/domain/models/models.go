// Package models provides the destination record shared by storage, selection and the HTTP layer.
package models

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Weight bounds for a RedirectTarget.
const (
	MinWeight = 1
	MaxWeight = 100
)

// DefaultAllowedDomains - hosts (and their subdomains) a destination may point at.
var DefaultAllowedDomains = []string{
	"line.me",
	"liff.line.me",
	"lin.ee",
	"stocktrends.jp",
	"localhost",
}

// RedirectTarget - a destination a user may be sent to.
type RedirectTarget struct {
	// ID: opaque unique identifier.
	ID string `json:"id"`
	// URL: destination URL, unique across targets.
	URL string `json:"redirect_url"`
	// Weight: relative share of traffic, 1..100.
	Weight int `json:"weight"`
	// Active: only active targets take part in selection.
	Active bool `json:"is_active"`
	// Label: free text shown in the admin list.
	Label string `json:"label"`
	// Category: category tag ("general" by default).
	Category string `json:"url_type"`
	// Hits: monotonic hit counter.
	Hits int64 `json:"hit_count"`
	// CreatedAt: creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt: time of the last admin edit.
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrInvalidURL - the destination is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL format, must be http or https")
	// ErrDomainNotAllowed - the destination host is outside the allow-list.
	ErrDomainNotAllowed = errors.New("URL domain not in whitelist")
	// ErrInvalidWeight - weight is outside [MinWeight, MaxWeight].
	ErrInvalidWeight = errors.New("weight must be between 1 and 100")
)

// IsAllowedHost reports whether host equals one of domains or is a subdomain of one.
func IsAllowedHost(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ValidateTarget checks the URL and weight invariants of t against the allow-list.
func ValidateTarget(t RedirectTarget, domains []string) error {
	u, err := url.Parse(t.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	if !IsAllowedHost(u.Hostname(), domains) {
		return ErrDomainNotAllowed
	}
	if t.Weight < MinWeight || t.Weight > MaxWeight {
		return ErrInvalidWeight
	}
	return nil
}
