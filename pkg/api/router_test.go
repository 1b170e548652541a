package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"multiball-waitlist/pkg/clients/mailchimp"
	"multiball-waitlist/pkg/clients/resend"
	"multiball-waitlist/pkg/config"
	"multiball-waitlist/pkg/services"
)

// providers fakes Mailchimp and Resend on one server and records calls in order.
type providers struct {
	mu           sync.Mutex
	calls        []string
	memberExists bool
	resendFails  bool
}

func (p *providers) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *providers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	switch {
	case strings.HasSuffix(r.URL.Path, "/tags"):
		p.record("tag")
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/members"):
		var member mailchimp.Member
		_ = json.Unmarshal(body, &member)
		p.record("upsert:" + strings.Join(member.Tags, ","))
		if p.memberExists {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"title":"Member Exists","status":400}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	case r.URL.Path == "/emails":
		var email resend.Email
		_ = json.Unmarshal(body, &email)
		p.record("email:" + email.To[0])
		if p.resendFails {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"name":"internal_server_error","message":"down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"e1"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newStack(t *testing.T, p *providers) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(p)
	t.Cleanup(upstream.Close)

	logger := zap.NewNop()
	site := config.DefaultSite()
	mc := mailchimp.NewClient("key-us5", "aud", mailchimp.WithBaseURL(upstream.URL), mailchimp.WithLogger(logger))
	rs := resend.NewClient("re_key", resend.WithBaseURL(upstream.URL), resend.WithLogger(logger))

	h := NewHandlers(
		services.NewSignupService(mc, rs, site, logger),
		services.NewInterestService(mc, rs, site, logger),
		logger,
	)
	return NewRouter(h, "*", logger)
}

func TestStack_SubscribeNew(t *testing.T) {
	p := &providers{}
	w := doJSON(newStack(t, p), "/api/subscribe", `{"email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully subscribed!", decode(t, w)["message"])
	assert.Equal(t, []string{"upsert:website-signup", "email:ada@example.com"}, p.calls)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestStack_SubscribeExisting(t *testing.T) {
	p := &providers{memberExists: true}
	w := doJSON(newStack(t, p), "/api/subscribe", `{"email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "You're already on the list!", decode(t, w)["message"])
	assert.Equal(t, []string{"upsert:website-signup"}, p.calls)
}

func TestStack_InvalidEmailMakesNoCalls(t *testing.T) {
	for _, path := range []string{"/api/subscribe", "/api/coach-interest"} {
		t.Run(path, func(t *testing.T) {
			p := &providers{}
			w := doJSON(newStack(t, p), path, `{"name":"Ada","email":"nope"}`)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, p.calls)
		})
	}
}

func TestStack_CoachInterestNew(t *testing.T) {
	p := &providers{resendFails: true}
	w := doJSON(newStack(t, p), "/api/coach-interest", `{"name":"Ada Lovelace","email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{
		"upsert:coach-interest",
		"email:hello@multiballacademy.com",
		"email:ada@example.com",
	}, p.calls)
}

func TestStack_CoachInterestExisting(t *testing.T) {
	p := &providers{memberExists: true}
	w := doJSON(newStack(t, p), "/api/coach-interest", `{"name":"Ada","email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{
		"upsert:coach-interest",
		"tag",
		"email:hello@multiballacademy.com",
		"email:ada@example.com",
	}, p.calls)
}

func TestStack_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	logger := zap.NewNop()
	mc := mailchimp.NewClient("k", "aud", mailchimp.WithBaseURL(url))
	rs := resend.NewClient("")
	h := NewHandlers(
		services.NewSignupService(mc, rs, config.DefaultSite(), logger),
		services.NewInterestService(mc, rs, config.DefaultSite(), logger),
		logger,
	)
	router := NewRouter(h, "*", logger)

	w := doJSON(router, "/api/subscribe", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong. Please try again.", decode(t, w)["error"])

	w = doJSON(router, "/api/coach-interest", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong. Please try again.", decode(t, w)["error"])
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	router := newStack(t, &providers{}).(*gin.Engine)
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong. Please try again.", decode(t, w)["error"])
}

func TestRouter_Preflight(t *testing.T) {
	w := httptest.NewRecorder()
	newStack(t, &providers{}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/subscribe", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
