package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAllowedHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{host: "line.me", want: true},
		{host: "LIFF.line.me", want: true},
		{host: "evil-line.me", want: false},
		{host: "line.me.evil.com", want: false},
		{host: "localhost", want: true},
		{host: "example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			require.Equal(t, tt.want, IsAllowedHost(tt.host, DefaultAllowedDomains))
		})
	}
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  RedirectTarget
		wantErr error
	}{
		{name: "ok", target: RedirectTarget{URL: "https://line.me/R/ti/p/a", Weight: 100}},
		{name: "ftp scheme", target: RedirectTarget{URL: "ftp://line.me/a", Weight: 10}, wantErr: ErrInvalidURL},
		{name: "relative", target: RedirectTarget{URL: "/R/ti/p/a", Weight: 10}, wantErr: ErrInvalidURL},
		{name: "foreign host", target: RedirectTarget{URL: "https://example.com/", Weight: 10}, wantErr: ErrDomainNotAllowed},
		{name: "weight zero", target: RedirectTarget{URL: "https://lin.ee/x", Weight: 0}, wantErr: ErrInvalidWeight},
		{name: "weight too big", target: RedirectTarget{URL: "https://lin.ee/x", Weight: 101}, wantErr: ErrInvalidWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.target, DefaultAllowedDomains)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
