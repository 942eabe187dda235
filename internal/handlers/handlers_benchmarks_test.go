package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"redirector/internal/config"
	"redirector/internal/domain/models"
	jsonmodels "redirector/internal/domain/models/json"
	"redirector/internal/ratelimit"
	"redirector/internal/selector"
	"redirector/internal/services"
	"redirector/internal/storage"
	"redirector/internal/token"

	"go.uber.org/zap"
)

func benchController(b *testing.B) *Controller {
	b.Helper()
	targets := make([]models.RedirectTarget, 0, 10)
	for i := 0; i < 10; i++ {
		id := strconv.Itoa(i)
		targets = append(targets, models.RedirectTarget{
			ID: id, URL: "https://line.me/R/ti/p/" + id, Weight: 10 * (i + 1), Active: true,
		})
	}
	st := storage.NewStorageMemory(targets...)
	srv := services.NewRedirectService(
		st,
		token.NewStore(),
		ratelimit.New(5, time.Minute),
		selector.New(st),
		zap.NewNop().Sugar(),
	)
	// a fresh client per request keeps the limiter out of the measurement
	var n atomic.Int64
	clientKey := func(*http.Request) string { return strconv.FormatInt(n.Add(1), 10) }
	return NewController(config.NewConfig(), srv, zap.NewNop().Sugar(), WithClientKey(clientKey))
}

func BenchmarkCreateToken(b *testing.B) {
	controller := benchController(b)
	handler := controller.CreateToken()
	for i := 0; i < b.N; i++ {
		r := httptest.NewRequest(http.MethodPost, "/create-token", bytes.NewBufferString(`{"stockCode":"7203"}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
	}
}

func BenchmarkCreateAndVerifyToken(b *testing.B) {
	controller := benchController(b)
	create := controller.CreateToken()
	verify := controller.VerifyToken()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		create.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/create-token", nil))

		var issued jsonmodels.IssueTokenResponse
		_ = json.Unmarshal(w.Body.Bytes(), &issued)
		payload, _ := json.Marshal(jsonmodels.RedeemTokenRequest{Token: issued.Token})

		w = httptest.NewRecorder()
		verify.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/verify-token", bytes.NewReader(payload)))
		if w.Code != http.StatusOK {
			b.Fatalf("verify-token returned %d", w.Code)
		}
	}
}

func BenchmarkSelect(b *testing.B) {
	controller := benchController(b)
	handler := controller.Select()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/select", nil))
	}
}
