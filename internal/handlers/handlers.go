// Package handlers contains the HTTP surface of the redirect API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"redirector/internal/config"
	models "redirector/internal/domain/models/json"
	"redirector/internal/ratelimit"
	"redirector/internal/services"
	"redirector/internal/session"
	"redirector/internal/token"

	"go.uber.org/zap"
)

// maxBodyBytes bounds create-token and verify-token bodies.
const maxBodyBytes = 16 << 10

// Client-facing error texts. Internal details are logged, never returned.
const (
	msgTokenRequired  = "Token is required"
	msgInvalidToken   = "Invalid or expired token"
	msgNoDestinations = "No active links available"
	msgRateLimited    = "Too many requests. Please wait a moment and try again."
	msgBadBody        = "Invalid request body"
	msgCreateFailed   = "Failed to create token"
	msgVerifyFailed   = "Failed to verify token"
	msgSelectFailed   = "Failed to select link"
	msgInternal       = "Internal server error"
)

// Controller serves the redirect API.
type Controller struct {
	conf     *config.Config
	service  services.RedirectService
	sugar    *zap.SugaredLogger
	sessions *session.Manager
	clientID ratelimit.KeyFunc
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSessions binds issued tokens to the session cookie managed by m.
func WithSessions(m *session.Manager) ControllerOption {
	return func(c *Controller) { c.sessions = m }
}

// WithClientKey overrides how the admission key is derived from a request.
func WithClientKey(fn ratelimit.KeyFunc) ControllerOption {
	return func(c *Controller) { c.clientID = fn }
}

// NewController creates a Controller.
func NewController(conf *config.Config, service services.RedirectService, sugar *zap.SugaredLogger, opts ...ControllerOption) *Controller {
	c := &Controller{
		conf:     conf,
		service:  service,
		sugar:    sugar,
		clientID: ratelimit.ClientKeyFunc(conf.TrustXFF),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateToken - POST /create-token. The optional JSON object body is stored with the token.
func (con *Controller) CreateToken() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var ctxFields token.Context
		if err := decodeBody(res, req, &ctxFields); err != nil {
			con.sugar.Debugw("create-token body rejected", "error", err)
			writeError(res, http.StatusBadRequest, msgBadBody)
			return
		}

		var (
			binding   string
			newCookie *http.Cookie
		)
		if con.sessions != nil {
			id, cookie, err := con.sessions.Prepare(req)
			if err != nil {
				con.sugar.Errorw("session not started", "error", err)
				writeError(res, http.StatusInternalServerError, msgCreateFailed)
				return
			}
			binding, newCookie = id, cookie
		}

		id, err := con.service.IssueToken(req.Context(), services.IssueRequest{
			ClientID: con.clientID(req),
			Context:  ctxFields,
			Binding:  binding,
		})
		switch {
		case errors.Is(err, services.ErrRateLimited):
			writeRateLimited(res, services.RetryAfter(err))
			return
		case err != nil:
			con.sugar.Errorw("create token failed", "error", err)
			writeError(res, http.StatusInternalServerError, msgCreateFailed)
			return
		}

		// the session starts only with a token bound to it
		if newCookie != nil {
			http.SetCookie(res, newCookie)
		}
		writeJSON(res, http.StatusOK, models.IssueTokenResponse{Success: true, Token: id})
	}
}

// VerifyToken - POST /verify-token with {"token": "..."}; consumes the token.
func (con *Controller) VerifyToken() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var body models.RedeemTokenRequest
		if err := decodeBody(res, req, &body); err != nil {
			con.sugar.Debugw("verify-token body rejected", "error", err)
			writeError(res, http.StatusBadRequest, msgBadBody)
			return
		}

		var binding string
		if con.sessions != nil {
			// a missing cookie leaves binding empty, which never matches a bound token
			binding, _ = con.sessions.ID(req)
		}

		url, err := con.service.RedeemToken(req.Context(), body.Token, binding)
		switch {
		case errors.Is(err, services.ErrTokenRequired):
			writeError(res, http.StatusBadRequest, msgTokenRequired)
			return
		case errors.Is(err, services.ErrInvalidToken):
			writeError(res, http.StatusBadRequest, msgInvalidToken)
			return
		case errors.Is(err, services.ErrNoDestinations):
			writeError(res, http.StatusNotFound, msgNoDestinations)
			return
		case err != nil:
			con.sugar.Errorw("verify token failed", "error", err)
			writeError(res, http.StatusInternalServerError, msgVerifyFailed)
			return
		}

		writeJSON(res, http.StatusOK, models.RedeemTokenResponse{Success: true, RedirectURL: url})
	}
}

// Select - GET /select; picks a destination without a token.
func (con *Controller) Select() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		target, err := con.service.SelectDirect(req.Context(), con.clientID(req))
		switch {
		case errors.Is(err, services.ErrRateLimited):
			writeRateLimited(res, services.RetryAfter(err))
			return
		case errors.Is(err, services.ErrNoDestinations):
			writeError(res, http.StatusNotFound, msgNoDestinations)
			return
		case err != nil:
			con.sugar.Errorw("select failed", "error", err)
			writeError(res, http.StatusInternalServerError, msgSelectFailed)
			return
		}

		writeJSON(res, http.StatusOK, models.SelectResponse{Success: true, Link: target})
	}
}

// PingHandler - GET /ping; checks the destination table.
func (con *Controller) PingHandler() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if err := con.service.Ping(req.Context()); err != nil {
			con.sugar.Errorw("ping failed", "error", err)
			writeJSON(res, http.StatusInternalServerError, models.PingResponse{Status: "unavailable"})
			return
		}
		writeJSON(res, http.StatusOK, models.PingResponse{Status: "ok"})
	}
}

// AdmissionStats - GET /debug/admission; dumps the in-memory admission counters.
func (con *Controller) AdmissionStats(stats *ratelimit.MemoryStatsStore) http.HandlerFunc {
	return func(res http.ResponseWriter, _ *http.Request) {
		writeJSON(res, http.StatusOK, stats.Snapshot())
	}
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst untouched.
func decodeBody(res http.ResponseWriter, req *http.Request, dst any) error {
	if req.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(res http.ResponseWriter, status int, body any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(body)
}

func writeError(res http.ResponseWriter, status int, msg string) {
	writeJSON(res, status, models.ErrorResponse{Success: false, Error: msg})
}

func writeRateLimited(res http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	res.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(res, http.StatusTooManyRequests, msgRateLimited)
}
