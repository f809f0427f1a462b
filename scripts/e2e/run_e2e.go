// Package main runs E2E scenarios of the venue booking funnel against a
// running API. Scenarios cover:
//   - General inquiry relayed from the chat widget
//   - Scripted lead capture through to the booking handoff
//   - Invalid email and phone re-prompts
//   - Booking surface open, availability lookup and close
//   - Guest-count validation on submit
//
// Scenarios that reach a relay deliver real records; point RELAY URLs at a
// test inbox before running against a deployed stack.
//
// Usage:
//
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go            # runs all
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go handoff    # runs one
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	apiBase string
	client  = &http.Client{Timeout: 20 * time.Second}
)

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...interface{}) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type turn struct {
	SessionID    string          `json:"session_id"`
	State        string          `json:"state"`
	Surface      string          `json:"surface"`
	Replies      []string        `json:"replies"`
	BlockedDates []string        `json:"blocked_dates"`
	Toast        json.RawMessage `json:"toast"`
}

type bookingState struct {
	Open         bool            `json:"open"`
	State        string          `json:"state"`
	Sent         bool            `json:"sent"`
	BlockedDates []string        `json:"blocked_dates"`
	Toast        json.RawMessage `json:"toast"`
}

func postJSON(path string, payload interface{}, out interface{}) (int, error) {
	body, _ := json.Marshal(payload)
	resp, err := client.Post(apiBase+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if out != nil && len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

func say(session, text string) (turn, error) {
	var out turn
	status, err := postJSON("/chat/message", map[string]string{"session_id": session, "text": text}, &out)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, fmt.Errorf("chat returned %d", status)
	}
	return out, nil
}

func lastReply(tr turn) string {
	if len(tr.Replies) == 0 {
		return ""
	}
	return tr.Replies[len(tr.Replies)-1]
}

func newSession() string {
	return "e2e-" + uuid.NewString()
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func scenarioHealth(t *T) {
	resp, err := client.Get(apiBase + "/health")
	if err != nil {
		t.fatalf("health: %v", err)
		return
	}
	resp.Body.Close()
	t.check("health returns 200", resp.StatusCode == http.StatusOK)
}

func scenarioInquiry(t *T) {
	tr, err := say(newSession(), "[e2e] Do you allow outside catering?")
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("state stays INITIAL", tr.State == "INITIAL")
	t.check("inquiry acknowledged", strings.Contains(lastReply(tr), "get back to you"))
}

func scenarioValidation(t *T) {
	s := newSession()
	for _, text := range []string{"I want to book", "E2E Tester"} {
		if _, err := say(s, text); err != nil {
			t.fatalf("%v", err)
			return
		}
	}
	tr, _ := say(s, "not-an-email")
	t.check("invalid email re-prompts", tr.State == "COLLECTING_EMAIL" && strings.Contains(lastReply(tr), "valid email"))

	tr, _ = say(s, "e2e@example.com")
	t.check("valid email advances", tr.State == "COLLECTING_PHONE")

	tr, _ = say(s, "call me maybe")
	t.check("invalid phone re-prompts", tr.State == "COLLECTING_PHONE" && strings.Contains(lastReply(tr), "valid phone"))

	tr, _ = say(s, "no thanks")
	t.check("phone still required", tr.State == "COLLECTING_PHONE")
}

func scenarioHandoff(t *T) {
	s := newSession()
	script := []struct {
		text  string
		state string
	}{
		{"I'd like to reserve the hall", "COLLECTING_NAME"},
		{"E2E Tester", "COLLECTING_EMAIL"},
		{"e2e@example.com", "COLLECTING_PHONE"},
		{"(555) 010-0000", "COMPLETE"},
	}
	for _, step := range script {
		tr, err := say(s, step.text)
		if err != nil {
			t.fatalf("%v", err)
			return
		}
		t.check(fmt.Sprintf("%q -> %s", step.text, step.state), tr.State == step.state)
	}

	tr, err := say(s, "yes please")
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("handoff opens booking surface", tr.Surface == "booking")
	t.check("handoff sends no chat reply", len(tr.Replies) == 0)
	t.check("blocked dates returned", tr.BlockedDates != nil || len(tr.Toast) > 0)

	var closed bookingState
	status, err := postJSON("/booking/close", map[string]string{"session_id": s}, &closed)
	t.check("close returns 200", err == nil && status == http.StatusOK)
	t.check("close returns to INITIAL", closed.State == "INITIAL" && !closed.Open)
}

func scenarioBookingSurface(t *T) {
	s := newSession()
	var opened bookingState
	status, err := postJSON("/booking/open", map[string]string{"session_id": s}, &opened)
	if err != nil {
		t.fatalf("%v", err)
		return
	}
	t.check("open returns 200", status == http.StatusOK)
	t.check("surface open", opened.Open)

	day := time.Now().AddDate(0, 2, 0).Format("2006-01-02")
	resp, err := client.Get(fmt.Sprintf("%s/booking/availability?session=%s&date=%s", apiBase, s, day))
	if err == nil {
		resp.Body.Close()
	}
	t.check("availability lookup returns 200", err == nil && resp.StatusCode == http.StatusOK)

	form := map[string]interface{}{
		"name":       "E2E Tester",
		"email":      "e2e@example.com",
		"phone":      "555-010-0000",
		"eventDate":  day,
		"eventType":  "Corporate",
		"guestCount": 500,
	}
	var rejected bookingState
	status, err = postJSON("/booking/submit", map[string]interface{}{"session_id": s, "form": form}, &rejected)
	t.check("guest count rejected with 422", err == nil && status == http.StatusUnprocessableEntity)
	t.check("guest count toast shown", strings.Contains(string(rejected.Toast), "Guest count must be between 1 and"))
	t.check("surface stays open", rejected.Open)
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL required")
		os.Exit(1)
	}

	scenarios := []scenario{
		{"health", scenarioHealth},
		{"inquiry", scenarioInquiry},
		{"validation", scenarioValidation},
		{"handoff", scenarioHandoff},
		{"booking-surface", scenarioBookingSurface},
	}

	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed := 0
	totalFailed := 0
	scenarioResults := make([]string, 0)

	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}

		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := &T{name: s.Name}
		s.Fn(t)

		totalPassed += t.passed
		totalFailed += t.failed

		status := "PASS"
		if t.failed > 0 {
			status = "FAIL"
		}
		scenarioResults = append(scenarioResults, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range scenarioResults {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)

	if totalFailed > 0 {
		fmt.Println("\nSOME TESTS FAILED")
		os.Exit(1)
	}
	fmt.Println("\nALL TESTS PASSED")
}
