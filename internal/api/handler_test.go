package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/token"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	issuer, err := token.NewIssuer("test-key", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	h := NewHandler(issuer, zap.NewNop())
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
}

func TestGetTokenRequiresRoom(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/get-token")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["error"] != "Room name is required" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestGetTokenDefaults(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/get-token?room=front-desk")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)

	if body["accessToken"] == "" {
		t.Error("missing accessToken")
	}
	if body["room"] != "front-desk" {
		t.Errorf("room = %q", body["room"])
	}
	if body["name"] != "User" {
		t.Errorf("name = %q, want User", body["name"])
	}
	if ok, _ := regexp.MatchString(`^user-[0-9a-f]{8}$`, body["identity"]); !ok {
		t.Errorf("identity = %q, want user-<8 hex>", body["identity"])
	}
}

func TestGetTokenPassesThroughIdentityAndName(t *testing.T) {
	ts := newTestServer(t)

	resp := getJSON(t, ts, "/get-token?room=front-desk&identity=dana&name=Dana")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["identity"] != "dana" || body["name"] != "Dana" {
		t.Errorf("identity=%q name=%q", body["identity"], body["name"])
	}
}

func TestGetTokenGrants(t *testing.T) {
	issuer, err := token.NewIssuer("test-key", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	h := NewHandler(issuer, zap.NewNop())
	ts := httptest.NewServer(h.Router())
	defer ts.Close()

	resp := getJSON(t, ts, "/get-token?room=lobby&identity=dana")
	var body map[string]string
	decodeJSON(t, resp, &body)

	identity, grants, err := issuer.Verify(body["accessToken"])
	if err != nil {
		t.Fatalf("verify minted token: %v", err)
	}
	if identity != "dana" {
		t.Errorf("identity = %q", identity)
	}
	want := token.Grants{RoomJoin: true, Room: "lobby", CanPublish: true, CanSubscribe: true}
	if grants != want {
		t.Errorf("grants = %+v, want %+v", grants, want)
	}
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/get-token", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
