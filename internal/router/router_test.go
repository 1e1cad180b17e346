package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediation-cms/internal/adapters/auth/jwt"
	"mediation-cms/internal/router"
)

const (
	coordinatorID = "coord-1"
	mediatorID    = "med-1"
	otherMediator = "med-2"
)

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()
	h, err := router.NewRouter(opts)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_SubmitServiceRequest(t *testing.T) {
	ts := newServer(t, router.Options{})

	// 1) Envío completo => success + submissionId
	st, body := doReq(t, ts.URL, "POST", "/api/submit-service-request", nil, map[string]any{
		"serviceType": "Mediation",
		"formData": map[string]any{
			"firstName":         "Jane",
			"lastName":          "Doe",
			"email":             "jane@example.com",
			"phone":             "555-123-4567",
			"streetAddress":     "1 Main St",
			"city":              "Springfield",
			"state":             "IL",
			"zipCode":           "62701",
			"preferredContact":  "email",
			"canLeaveVoicemail": "Yes",
			"canText":           "No",
			"disputeType":       "neighbor",
		},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 submit, got %d body=%s", st, string(body))
	}
	var resp struct {
		Success      bool   `json:"success"`
		SubmissionID string `json:"submissionId"`
	}
	_ = json.Unmarshal(body, &resp)
	if !resp.Success || resp.SubmissionID == "" {
		t.Fatalf("expected success with id, body=%s", string(body))
	}

	// 2) Staff ve el registro con el mapeo anidado
	{
		st, body := doReq(t, ts.URL, "GET", "/api/submissions/"+resp.SubmissionID, staff(), nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get submission, got %d body=%s", st, string(body))
		}
		var sub struct {
			Status    string `json:"status"`
			Submitter struct {
				Address struct {
					Street string `json:"street"`
					Zip    string `json:"zip"`
				} `json:"address"`
				ContactPreferences struct {
					CanLeaveVoicemail bool `json:"canLeaveVoicemail"`
					CanText           bool `json:"canText"`
				} `json:"contactPreferences"`
			} `json:"submitter"`
			Details map[string]any `json:"details"`
		}
		_ = json.Unmarshal(body, &sub)
		if sub.Status != "new" {
			t.Fatalf("expected status new, got %q", sub.Status)
		}
		if sub.Submitter.Address.Street != "1 Main St" || sub.Submitter.Address.Zip != "62701" {
			t.Fatalf("address not mapped: %s", string(body))
		}
		if !sub.Submitter.ContactPreferences.CanLeaveVoicemail || sub.Submitter.ContactPreferences.CanText {
			t.Fatalf("contact preferences not mapped: %s", string(body))
		}
		if sub.Details["disputeType"] != "neighbor" {
			t.Fatalf("expected disputeType kept in details: %s", string(body))
		}
	}

	// 3) Anónimo no ve la bandeja
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/submissions", nil, nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 anonymous inbox, got %d", st)
		}
	}
}

func TestHTTP_SubmitServiceRequest_MissingFormData(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "POST", "/api/submit-service-request", nil, map[string]any{
		"serviceType": "Mediation",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", st, string(body))
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Success || !strings.Contains(resp.Message, "Missing") {
		t.Fatalf("unexpected body=%s", string(body))
	}
}

func TestHTTP_SubmitServiceRequest_IdempotencyKey(t *testing.T) {
	ts := newServer(t, router.Options{})

	payload := map[string]any{
		"serviceType": "Facilitation",
		"formData":    map[string]any{"firstName": "Ana", "email": "ana@example.com"},
	}
	headers := map[string]string{"Idempotency-Key": "retry-123"}

	st1, b1 := doReq(t, ts.URL, "POST", "/api/submit-service-request", headers, payload)
	st2, b2 := doReq(t, ts.URL, "POST", "/api/submit-service-request", headers, payload)
	if st1 != http.StatusOK || st2 != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", st1, st2)
	}

	var r1, r2 struct {
		SubmissionID string `json:"submissionId"`
	}
	_ = json.Unmarshal(b1, &r1)
	_ = json.Unmarshal(b2, &r2)
	if r1.SubmissionID == "" || r1.SubmissionID != r2.SubmissionID {
		t.Fatalf("expected same submission id, got %q and %q", r1.SubmissionID, r2.SubmissionID)
	}

	st, body := doReq(t, ts.URL, "GET", "/api/submissions", staff(), nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", st)
	}
	var list []map[string]any
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(list))
	}
}

func TestHTTP_CaseVisibility_AssignedMediatorOnly(t *testing.T) {
	ts := newServer(t, router.Options{})

	// 1) Coordinator crea caso con med-1 asignado
	st, body := doReq(t, ts.URL, "POST", "/api/cases", staff(), map[string]any{
		"title":         "Neighbor dispute",
		"summary":       "Fence line",
		"mediators":     []string{mediatorID},
		"participants":  []string{"part-1"},
		"mediatorNotes": "Both parties agreed to meet.",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create case, got %d body=%s", st, string(body))
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &created)
	if created.ID == "" {
		t.Fatalf("create case: missing id body=%s", string(body))
	}

	// 2) Mediador asignado lee el caso con notas
	{
		st, body := doReq(t, ts.URL, "GET", "/api/cases/"+created.ID, as(mediatorID, "mediator"), nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 for assigned mediator, got %d body=%s", st, string(body))
		}
		if !strings.Contains(string(body), "Both parties agreed") {
			t.Fatalf("expected mediator notes for assigned mediator: %s", string(body))
		}
	}

	// 3) Mediador no asignado => 404, sin datos parciales
	{
		st, body := doReq(t, ts.URL, "GET", "/api/cases/"+created.ID, as(otherMediator, "mediator"), nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for unassigned mediator, got %d", st)
		}
		if strings.Contains(string(body), "Neighbor dispute") {
			t.Fatalf("unassigned mediator got case data: %s", string(body))
		}
	}

	// 4) Participante ve el caso pero no las notas
	{
		st, body := doReq(t, ts.URL, "GET", "/api/cases/"+created.ID, as("part-1", "participant"), nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 for participant, got %d", st)
		}
		if strings.Contains(string(body), "mediatorNotes") {
			t.Fatalf("participant must not see notes: %s", string(body))
		}
	}

	// 5) La lista del mediador no asignado viene vacía
	{
		st, body := doReq(t, ts.URL, "GET", "/api/cases", as(otherMediator, "mediator"), nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		var list []map[string]any
		_ = json.Unmarshal(body, &list)
		if len(list) != 0 {
			t.Fatalf("expected empty list, got %d", len(list))
		}
	}
}

func TestHTTP_LoginAndUsersScope(t *testing.T) {
	signer := jwt.NewSigner(jwt.Config{Secret: "test-secret", TTL: time.Hour})
	ts := newServer(t, router.Options{
		AuthVerifier:  signer,
		TokenIssuer:   signer,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
	})

	// 1) Credenciales inválidas => 401
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/auth/login", nil, map[string]any{
			"email": "admin@example.com", "password": "wrong-password",
		})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 bad login, got %d", st)
		}
	}

	adminToken := login(t, ts.URL, "admin@example.com", "admin-password")

	// 2) Admin crea un participante
	{
		st, body := doReq(t, ts.URL, "POST", "/api/users", bearer(adminToken), map[string]any{
			"email": "pat@example.com", "name": "Pat", "role": "participant", "password": "pat-password",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create user, got %d body=%s", st, string(body))
		}
	}

	// 3) Admin ve ambos usuarios
	if n := countUsers(t, ts.URL, adminToken); n != 2 {
		t.Fatalf("expected admin to see 2 users, got %d", n)
	}

	// 4) El participante solo se ve a sí mismo
	patToken := login(t, ts.URL, "pat@example.com", "pat-password")
	if n := countUsers(t, ts.URL, patToken); n != 1 {
		t.Fatalf("expected participant to see only itself, got %d", n)
	}

	// 5) Sin token el header de debug no sirve: anónimo => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/users", as("admin-ish", "admin"), nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 with debug headers when verifier is set, got %d", st)
		}
	}
}

func TestHTTP_CoordinatorCannotTakeOverAdmin(t *testing.T) {
	signer := jwt.NewSigner(jwt.Config{Secret: "test-secret", TTL: time.Hour})
	ts := newServer(t, router.Options{
		AuthVerifier:  signer,
		TokenIssuer:   signer,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
	})

	adminToken := login(t, ts.URL, "admin@example.com", "admin-password")
	adminID := createdID(t, ts.URL, "/api/users/me", adminToken)

	st, body := doReq(t, ts.URL, "POST", "/api/users", bearer(adminToken), map[string]any{
		"email": "coord@example.com", "name": "Coord", "role": "coordinator", "password": "coord-password",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create coordinator, got %d body=%s", st, string(body))
	}
	coordToken := login(t, ts.URL, "coord@example.com", "coord-password")

	st, _ = doReq(t, ts.URL, "PATCH", "/api/users/"+adminID, bearer(coordToken), map[string]any{
		"password": "taken-over-pw",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 on admin password reset by coordinator, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/api/auth/login", nil, map[string]any{
		"email": "admin@example.com", "password": "taken-over-pw",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected admin password unchanged, login got %d", st)
	}
}

func TestHTTP_DeletedUserTokenIsRejected(t *testing.T) {
	signer := jwt.NewSigner(jwt.Config{Secret: "test-secret", TTL: time.Hour})
	ts := newServer(t, router.Options{
		AuthVerifier:  signer,
		TokenIssuer:   signer,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
	})

	adminToken := login(t, ts.URL, "admin@example.com", "admin-password")
	st, body := doReq(t, ts.URL, "POST", "/api/users", bearer(adminToken), map[string]any{
		"email": "coord@example.com", "name": "Coord", "role": "coordinator", "password": "coord-password",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create coordinator, got %d body=%s", st, string(body))
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &created)

	coordToken := login(t, ts.URL, "coord@example.com", "coord-password")
	if st, _ := doReq(t, ts.URL, "GET", "/api/submissions", bearer(coordToken), nil); st != http.StatusOK {
		t.Fatalf("expected 200 inbox for coordinator, got %d", st)
	}

	// degradado: el token viejo ya no abre el inbox
	st, _ = doReq(t, ts.URL, "PATCH", "/api/users/"+created.ID, bearer(adminToken), map[string]any{"role": "participant"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 demote, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/api/submissions", bearer(coordToken), nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 inbox after demotion, got %d", st)
	}

	if st, _ := doReq(t, ts.URL, "DELETE", "/api/users/"+created.ID, bearer(adminToken), nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 delete, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/api/submissions", bearer(coordToken), nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 inbox after delete, got %d", st)
	}
}

func TestHTTP_AdminDashboardRedirect(t *testing.T) {
	signer := jwt.NewSigner(jwt.Config{Secret: "test-secret"})
	ts := newServer(t, router.Options{
		AuthVerifier:  signer,
		TokenIssuer:   signer,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
	})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	res, err := client.Get(ts.URL + "/admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to /admin/login, got %d %q", res.StatusCode, res.Header.Get("Location"))
	}

	req, _ := http.NewRequest("GET", ts.URL+"/admin", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: login(t, ts.URL, "admin@example.com", "admin-password")})
	res, err = client.Do(req)
	if err != nil {
		t.Fatalf("get admin with cookie: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), "Dashboard") {
		t.Fatalf("expected dashboard, got %d body=%s", res.StatusCode, string(body))
	}
}

func TestHTTP_PublicPages(t *testing.T) {
	ts := newServer(t, router.Options{})

	// borrador: no aparece en el blog público
	st, body := doReq(t, ts.URL, "POST", "/api/posts", staff(), map[string]any{
		"title": "Draft thoughts", "body": "Not yet.",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create post, got %d body=%s", st, string(body))
	}
	st, body = doReq(t, ts.URL, "POST", "/api/posts", staff(), map[string]any{
		"title": "Welcome to mediation", "body": "First paragraph.\n\nSecond paragraph.", "status": "published",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create post, got %d body=%s", st, string(body))
	}

	for _, path := range []string{"/", "/services", "/about", "/events", "/health"} {
		st, _ := doReq(t, ts.URL, "GET", path, nil, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, st)
		}
	}

	st, body = doReq(t, ts.URL, "GET", "/blog", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 blog, got %d", st)
	}
	if !strings.Contains(string(body), "Welcome to mediation") || strings.Contains(string(body), "Draft thoughts") {
		t.Fatalf("blog must list only published posts: %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/blog/welcome-to-mediation", nil, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "Second paragraph.") {
		t.Fatalf("expected post page, got %d", st)
	}

	if st, _ := doReq(t, ts.URL, "GET", "/blog/draft-thoughts", nil, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 for draft post page, got %d", st)
	}
}

func staff() map[string]string { return as(coordinatorID, "coordinator") }

func as(userID, role string) map[string]string {
	return map[string]string{"X-Debug-User-ID": userID, "X-Debug-User-Role": role}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/auth/login", nil, map[string]any{
		"email": email, "password": password,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Token == "" {
		t.Fatalf("login: missing token body=%s", string(body))
	}
	return resp.Token
}

func createdID(t *testing.T, baseURL, path, token string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", path, bearer(token), nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 GET %s, got %d body=%s", path, st, string(body))
	}
	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("GET %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func countUsers(t *testing.T, baseURL, token string) int {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/users", bearer(token), nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list users, got %d body=%s", st, string(body))
	}
	var list []map[string]any
	_ = json.Unmarshal(body, &list)
	return len(list)
}

func doReq(t *testing.T, baseURL, method, path string, headers map[string]string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
