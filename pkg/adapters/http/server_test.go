package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zapflow/zapflow/pkg/adapters/memory"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/session"
)

func newTestHandler() http.Handler {
	return NewHandler(session.NewManager(memory.NewStore()))
}

type flowResponse struct {
	FlowID string      `json:"flow_id"`
	Spec   domain.Spec `json:"spec"`
}

func TestGetHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}

func TestGetInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["app"] != "zapflow-http" {
		t.Errorf("expected app name, got %v", body)
	}
	if body["api_version"] == "" || body["api_version"] == "unknown" {
		t.Errorf("expected api_version parsed from the embedded contract, got %q", body["api_version"])
	}
}

func TestOpenFlow_CreatesDefault(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/onboarding", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.FlowID != "onboarding" {
		t.Errorf("expected flow_id onboarding, got %q", body.FlowID)
	}
	if len(body.Spec.Screens) != 1 || body.Spec.Screens[0].ID != "SCREEN_A" {
		t.Errorf("expected default single-screen spec, got %+v", body.Spec.Screens)
	}

	// The flow now shows up in the listing.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/flows", nil))
	if !strings.Contains(rec.Body.String(), "onboarding") {
		t.Errorf("expected flow listed, got %s", rec.Body.String())
	}
}

func TestGetFlow_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/flows/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestApplyEdit_AddScreen(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("open failed: %d", rec.Code)
	}

	edit, _ := json.Marshal(domain.Edit{Type: domain.EditAddScreen})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1/edits", bytes.NewReader(edit)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Spec.Screens) != 2 {
		t.Errorf("expected 2 screens after add_screen, got %d", len(body.Spec.Screens))
	}
}

func TestApplyEdit_InvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1/edits", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetIssues(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1", nil))

	// Reopen the only screen: it becomes a dead end the validator reports.
	terminal := false
	edit, _ := json.Marshal(domain.Edit{Type: domain.EditSetTerminal, ScreenID: "SCREEN_A", Terminal: &terminal})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1/edits", bytes.NewReader(edit)))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/flows/f1/issues", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body["issues"]) == 0 {
		t.Error("expected at least one issue for a dead-end screen")
	}
	for _, issue := range body["issues"] {
		if strings.Contains(issue, "não é final") {
			return
		}
	}
	t.Errorf("expected dead-end issue, got %v", body["issues"])
}

func TestDocument_RoundTrip(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1", nil))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/flows/f1/document", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := rec.Body.Bytes()
	if !strings.Contains(string(doc), `"data_api_version": "3.0"`) {
		t.Errorf("expected canonical document, got %s", doc)
	}

	// Importing the exported document back is accepted unchanged.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("PUT", "/flows/f2/document", bytes.NewReader(doc)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on import, got %d: %s", rec.Code, rec.Body.String())
	}
	var body flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Spec.Screens) != 1 || body.Spec.Screens[0].ID != "SCREEN_A" {
		t.Errorf("expected imported spec to match, got %+v", body.Spec.Screens)
	}
}

func TestPutDocument_UnknownShapeRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("PUT", "/flows/f1/document", strings.NewReader(`{"foo": 1}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown shape, got %d", rec.Code)
	}
}

func TestPutDocument_LegacyFormUpgraded(t *testing.T) {
	handler := newTestHandler()

	legacy := `{"title": "Cadastro", "fields": [{"name": "nome", "type": "text", "label": "Nome"}]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("PUT", "/flows/f1/document", strings.NewReader(legacy)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body flowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if got := body.Spec.Screens[0].Title.Display(); got != "Cadastro" {
		t.Errorf("expected upgraded legacy form, got title %q", got)
	}
}

func TestGetGraph(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1", nil))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/flows/f1/graph", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "graph TD") {
		t.Errorf("expected mermaid graph, got %s", rec.Body.String())
	}
}

func TestDeleteFlow(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/flows/f1", nil))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("DELETE", "/flows/f1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/flows/f1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestSubscribeEvents_RequiresFlowID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/events", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without flow_id, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/flows", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestDiffMatchesWatch(t *testing.T) {
	diff := domain.SpecDiff{
		FlowID:  "f1",
		Routing: map[string][]string{"SCREEN_A": {"SCREEN_B"}},
	}
	raw, _ := json.Marshal(diff)
	msg := string(raw)

	if !diffMatchesWatch(msg, []string{"routing"}) {
		t.Error("expected routing watch to match")
	}
	if diffMatchesWatch(msg, []string{"screens"}) {
		t.Error("expected screens watch not to match")
	}
	if diffMatchesWatch(msg, []string{"branches"}) {
		t.Error("expected branches watch not to match")
	}
	if !diffMatchesWatch("not-json", []string{"screens"}) {
		t.Error("unparseable payloads must pass through")
	}
}

func TestStreamManager_BroadcastAndCancel(t *testing.T) {
	sm := NewStreamManager()

	ch, cancel := sm.Subscribe("f1")
	other, cancelOther := sm.Subscribe("f2")
	defer cancelOther()

	sm.Broadcast("f1", "hello")

	select {
	case msg := <-ch:
		if msg != "hello" {
			t.Errorf("expected hello, got %q", msg)
		}
	default:
		t.Fatal("expected buffered message")
	}

	select {
	case msg := <-other:
		t.Errorf("subscriber of another flow received %q", msg)
	default:
	}

	cancel()
	if _, open := <-ch; open {
		t.Error("expected channel closed after cancel")
	}

	// Broadcasting to a flow with no subscribers is a no-op.
	sm.Broadcast("f1", "after-cancel")
}
