package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"multiball-waitlist/pkg/clients/mailchimp"
	"multiball-waitlist/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSignup struct {
	outcome models.Outcome
	err     error
	calls   int
}

func (s *stubSignup) Subscribe(_ context.Context, _ models.SignupRequest) (models.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

type stubInterest struct {
	outcome models.Outcome
	err     error
	got     models.InterestRequest
	calls   int
}

func (s *stubInterest) SubmitInterest(_ context.Context, req models.InterestRequest) (models.Outcome, error) {
	s.calls++
	s.got = req
	return s.outcome, s.err
}

func newTestRouter(signup *stubSignup, interest *stubInterest) *gin.Engine {
	r := gin.New()
	NewHandlers(signup, interest, zap.NewNop()).Register(r)
	return r
}

func doJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(&stubSignup{}, &stubInterest{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		outcome    models.Outcome
		err        error
		wantStatus int
		wantKey    string
		wantText   string
		wantCalls  int
	}{
		{
			name:       "new subscriber",
			body:       `{"email":"ada@example.com"}`,
			outcome:    models.OutcomeAcceptedNew,
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantText:   "Successfully subscribed!",
			wantCalls:  1,
		},
		{
			name:       "already subscribed",
			body:       `{"email":"ada@example.com"}`,
			outcome:    models.OutcomeAcceptedDuplicate,
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantText:   "You're already on the list!",
			wantCalls:  1,
		},
		{
			name:       "missing email",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantText:   "Valid email is required",
		},
		{
			name:       "email without at sign",
			body:       `{"email":"ada.example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantText:   "Valid email is required",
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantText:   "Invalid JSON format",
		},
		{
			name:       "provider rejection",
			body:       `{"email":"ada@example.com"}`,
			outcome:    models.OutcomeFailedUpstream,
			err:        &mailchimp.APIError{StatusCode: 500},
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantText:   "Failed to subscribe. Please try again.",
			wantCalls:  1,
		},
		{
			name:       "network failure",
			body:       `{"email":"ada@example.com"}`,
			outcome:    models.OutcomeFailedUpstream,
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantText:   "Something went wrong. Please try again.",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signup := &stubSignup{outcome: tt.outcome, err: tt.err}
			r := newTestRouter(signup, &stubInterest{})

			w := doJSON(r, "/api/subscribe", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantText, decode(t, w)[tt.wantKey])
			assert.Equal(t, tt.wantCalls, signup.calls)
		})
	}
}

func TestCoachInterest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		outcome    models.Outcome
		err        error
		wantStatus int
		wantKey    string
		wantText   string
		wantCalls  int
	}{
		{
			name:       "new contact",
			body:       `{"name":"Ada Lovelace","email":"ada@example.com","role":"volunteer"}`,
			outcome:    models.OutcomeAcceptedNew,
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantText:   "Thanks! We'll be in touch soon.",
			wantCalls:  1,
		},
		{
			name:       "existing contact",
			body:       `{"name":"Ada","email":"ada@example.com"}`,
			outcome:    models.OutcomeAcceptedDuplicate,
			wantStatus: http.StatusOK,
			wantKey:    "message",
			wantText:   "Thanks! We'll be in touch soon.",
			wantCalls:  1,
		},
		{
			name:       "missing email",
			body:       `{"name":"Ada"}`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantText:   "Valid email is required",
		},
		{
			name:       "upstream failure",
			body:       `{"name":"Ada","email":"ada@example.com"}`,
			outcome:    models.OutcomeFailedUpstream,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantText:   "Something went wrong. Please try again.",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interest := &stubInterest{outcome: tt.outcome, err: tt.err}
			r := newTestRouter(&stubSignup{}, interest)

			w := doJSON(r, "/api/coach-interest", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantText, decode(t, w)[tt.wantKey])
			assert.Equal(t, tt.wantCalls, interest.calls)
		})
	}
}

func TestCoachInterest_PassesAllFields(t *testing.T) {
	interest := &stubInterest{outcome: models.OutcomeAcceptedNew}
	r := newTestRouter(&stubSignup{}, interest)

	doJSON(r, "/api/coach-interest",
		`{"name":"Ada","email":"ada@example.com","background":"teacher","why":"fun","role":"multiple"}`)

	assert.Equal(t, models.InterestRequest{
		Name:       "Ada",
		Email:      "ada@example.com",
		Background: "teacher",
		Why:        "fun",
		Role:       "multiple",
	}, interest.got)
}
