package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"redirector/internal/config"
	"redirector/internal/domain/models"
	jsonmodels "redirector/internal/domain/models/json"
	"redirector/internal/logger"
	"redirector/internal/ratelimit"
	"redirector/internal/selector"
	"redirector/internal/services"
	"redirector/internal/storage"
	"redirector/internal/token"
)

func exampleController() *Controller {
	c := config.NewConfig()
	st := storage.NewStorageMemory(models.RedirectTarget{
		ID:     "a",
		URL:    "https://line.me/R/ti/p/a",
		Weight: 100,
		Active: true,
	})
	sugarLogger, _ := logger.NewLogger()
	srv := services.NewRedirectService(
		st,
		token.NewStore(),
		ratelimit.New(c.RateLimit, c.RateWindowDuration()),
		selector.New(st),
		sugarLogger,
	)
	return NewController(c, srv, sugarLogger)
}

// ExampleController_CreateToken demonstrates issuing a handoff token.
func ExampleController_CreateToken() {
	controller := exampleController()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, "/api/line-redirects/create-token",
		bytes.NewBufferString(`{"stockCode": "7203"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	controller.CreateToken().ServeHTTP(rr, req)

	var body jsonmodels.IssueTokenResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &body)

	fmt.Println("Status Code:", rr.Code)
	fmt.Println("Success:", body.Success)
	fmt.Println("Has token:", body.Token != "")

	// Output:
	// Status Code: 200
	// Success: true
	// Has token: true
}

// ExampleController_VerifyToken demonstrates redeeming a token for a destination.
func ExampleController_VerifyToken() {
	controller := exampleController()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	issue, _ := http.NewRequestWithContext(ctx, http.MethodPost, "/api/line-redirects/create-token", nil)
	rr := httptest.NewRecorder()
	controller.CreateToken().ServeHTTP(rr, issue)

	var issued jsonmodels.IssueTokenResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &issued)

	payload, _ := json.Marshal(jsonmodels.RedeemTokenRequest{Token: issued.Token})
	for i := 0; i < 2; i++ {
		verify, _ := http.NewRequestWithContext(ctx, http.MethodPost, "/api/line-redirects/verify-token",
			bytes.NewReader(payload))
		rr = httptest.NewRecorder()
		controller.VerifyToken().ServeHTTP(rr, verify)
		fmt.Println("Status Code:", rr.Code)
		fmt.Print("Response Body: ", rr.Body.String())
	}

	// Output:
	// Status Code: 200
	// Response Body: {"success":true,"redirectUrl":"https://line.me/R/ti/p/a"}
	// Status Code: 400
	// Response Body: {"success":false,"error":"Invalid or expired token"}
}

// ExampleController_PingHandler demonstrates the endpoint for connection checking.
func ExampleController_PingHandler() {
	controller := exampleController()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	controller.PingHandler().ServeHTTP(rr, req)

	fmt.Println("Status Code:", rr.Code)
	fmt.Print("Response Body: ", rr.Body.String())

	// Output:
	// Status Code: 200
	// Response Body: {"status":"ok"}
}
