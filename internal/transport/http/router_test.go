package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounthandler "tradegate/internal/account/handler"
	accountservice "tradegate/internal/account/service"
	accountstore "tradegate/internal/account/store"
	documenthandler "tradegate/internal/document/handler"
	docservice "tradegate/internal/document/service"
	docstore "tradegate/internal/document/store"
	"tradegate/internal/jwtauth"
	"tradegate/internal/mailer"
	"tradegate/internal/platform/metrics"
	verificationhandler "tradegate/internal/verification/handler"
	verificationservice "tradegate/internal/verification/service"
	tokenstore "tradegate/internal/verification/store"
	"tradegate/pkg/platform/audit"
	auditmemory "tradegate/pkg/platform/audit/store/memory"
	"tradegate/pkg/testutil"
)

const verifyBase = "http://api.test/verify-email"

type env struct {
	router http.Handler
	mail   *mailer.Memory
}

// newEnv assembles the full stack on in-memory stores, the same wiring main
// uses minus the external backends.
func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(prometheus.NewRegistry())

	auditTrail := audit.NewTrail(auditmemory.New(), nil, logger)
	mail := mailer.NewMemory()
	userTx := docservice.NewShardedTx()

	accounts := accountstore.NewMemory()
	documents := docstore.NewMemory()
	tokens := tokenstore.NewMemory()

	jwtService := jwtauth.New("router-test-key", "tradegate-test", time.Hour)
	verification := verificationservice.New(
		tokens, accounts, documents, userTx,
		mailer.NewComposer(verifyBase, "EasyInternationalTrade"),
		mail, auditTrail, m, logger,
	)
	accountSvc := accountservice.New(accounts, verification, jwtService, auditTrail, m, logger)
	documentSvc := docservice.New(documents, accounts, userTx, auditTrail, m, logger)

	router := NewRouter(Handlers{
		Accounts:     accounthandler.New(accountSvc, logger),
		Documents:    documenthandler.New(documentSvc, accountSvc, logger),
		Verification: verificationhandler.New(verification, logger),
	}, jwtauth.NewAdapter(jwtService), m, logger)

	return &env{router: router, mail: mail}
}

func (e *env) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) register(t *testing.T, email, role string) (userID, username string) {
	t.Helper()
	rec := e.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/register", map[string]string{
		"email":      email,
		"password":   "long-enough-password",
		"role":       role,
		"first_name": "Ana",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	testutil.DecodeJSON(t, rec, &body)
	return body.ID, body.Username
}

func (e *env) login(t *testing.T, username string) string {
	t.Helper()
	rec := e.do(t, testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": "long-enough-password",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
	}
	testutil.DecodeJSON(t, rec, &body)
	return body.AccessToken
}

func (e *env) authed(t *testing.T, token string, req *http.Request) *http.Request {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// verifyLink digs the confirmation path out of the last sent mail.
func (e *env) verifyLink(t *testing.T) string {
	t.Helper()
	sent := e.mail.Sent()
	require.NotEmpty(t, sent)
	text := sent[len(sent)-1].Text
	start := strings.Index(text, verifyBase)
	require.GreaterOrEqual(t, start, 0)
	link := text[start:]
	if end := strings.IndexAny(link, " \n"); end >= 0 {
		link = link[:end]
	}
	return strings.TrimPrefix(link, "http://api.test")
}

func TestRegisterVerifySubmitFlow(t *testing.T) {
	e := newEnv(t)

	_, username := e.register(t, "ana@example.com", "importer")
	token := e.login(t, username)

	// Email confirmation alone moves the account to pending.
	rec := e.do(t, httptest.NewRequest(http.MethodGet, e.verifyLink(t), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var confirm struct {
		EmailVerified      bool   `json:"email_verified"`
		VerificationStatus string `json:"verification_status"`
	}
	testutil.DecodeJSON(t, rec, &confirm)
	assert.True(t, confirm.EmailVerified)
	assert.Equal(t, "pending", confirm.VerificationStatus)

	// A complete ID pair closes the second gate: approved.
	rec = e.do(t, e.authed(t, token, testutil.NewJSONRequest(t, http.MethodPost, "/documents", map[string]any{
		"documents": []map[string]string{
			{"slot": "id_front", "object_key": "uploads/front.jpg"},
			{"slot": "id_back", "object_key": "uploads/back.jpg"},
		},
	})))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var submitted struct {
		DocumentsComplete  bool   `json:"documents_complete"`
		VerificationStatus string `json:"verification_status"`
	}
	testutil.DecodeJSON(t, rec, &submitted)
	assert.True(t, submitted.DocumentsComplete)
	assert.Equal(t, "approved", submitted.VerificationStatus)

	rec = e.do(t, e.authed(t, token, httptest.NewRequest(http.MethodGet, "/documents/status", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		VerificationStatus string   `json:"verification_status"`
		EmailVerified      bool     `json:"email_verified"`
		SubmittedSlots     []string `json:"submitted_slots"`
	}
	testutil.DecodeJSON(t, rec, &status)
	assert.Equal(t, "approved", status.VerificationStatus)
	assert.True(t, status.EmailVerified)
	assert.Equal(t, []string{"id_back", "id_front"}, status.SubmittedSlots)
}

func TestSubmitRejectionsMapToUnprocessable(t *testing.T) {
	e := newEnv(t)
	_, username := e.register(t, "ana@example.com", "importer")
	token := e.login(t, username)

	// Half a pair.
	rec := e.do(t, e.authed(t, token, testutil.NewJSONRequest(t, http.MethodPost, "/documents", map[string]any{
		"documents": []map[string]string{{"slot": "id_front"}},
	})))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "incomplete_pair")

	// Unknown slot name is a plain bad request.
	rec = e.do(t, e.authed(t, token, testutil.NewJSONRequest(t, http.MethodPost, "/documents", map[string]any{
		"documents": []map[string]string{{"slot": "passport"}},
	})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyLinkIsSingleUse(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ana@example.com", "supplier")
	link := e.verifyLink(t)

	rec := e.do(t, httptest.NewRequest(http.MethodGet, link, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, link, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newEnv(t)

	for _, target := range []string{"/me", "/documents", "/documents/status"} {
		rec := e.do(t, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	e := newEnv(t)
	_, username := e.register(t, "ana@example.com", "carrier")
	token := e.login(t, username)

	rec := e.do(t, e.authed(t, token, testutil.NewJSONRequest(t, http.MethodPatch, "/me", map[string]string{
		"company_name": "Carrier Co",
	})))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, e.authed(t, token, httptest.NewRequest(http.MethodGet, "/me", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		CompanyName string `json:"company_name"`
		Role        string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &me)
	assert.Equal(t, "Carrier Co", me.CompanyName)
	assert.Equal(t, "carrier", me.Role)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
