package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/guessentence/go-server/internal/game"
	"github.com/guessentence/go-server/internal/httpserver"
	"github.com/guessentence/go-server/internal/store"
)

// result mirrors the engine's guess response shape on the wire.
type result struct {
	Match   *game.SafeMatch `json:"match"`
	Message string          `json:"message"`
}

// newTestServer spins up the full router over an in-memory store with one
// ranked sentence and one guest sentence.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test_secret")

	st := store.NewMemory()
	st.AddSentence(&game.Sentence{ID: "s1", Text: "CAT SAT"})
	st.AddSentence(&game.Sentence{ID: "g1", Text: "PLAY FOR FUN", Guest: true})

	eng := game.NewEngine(st, game.DefaultConfig())
	ts := httptest.NewServer(httpserver.New(st, eng).Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any, out any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func getJSON(t *testing.T, c *http.Client, url string, out any) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func signup(t *testing.T, c *http.Client, base, username string) {
	t.Helper()
	resp := postJSON(t, c, base+"/auth/signup",
		map[string]string{"username": username, "password": "hunter2hunter2"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
}

func TestAuthMatchFlow(t *testing.T) {
	ts, c := newTestServer(t)
	signup(t, c, ts.URL, "alice")

	// Fresh account starts with 100 coins.
	var me struct {
		Username string `json:"username"`
		Coins    int    `json:"coins"`
	}
	getJSON(t, c, ts.URL+"/auth/me", &me)
	if me.Username != "alice" || me.Coins != 100 {
		t.Fatalf("me = %+v", me)
	}

	var m game.SafeMatch
	resp := postJSON(t, c, ts.URL+"/match/start", nil, &m)
	if resp.StatusCode != http.StatusOK || m.Status != game.StatusPlaying {
		t.Fatalf("start: %d %+v", resp.StatusCode, m)
	}
	if m.Sentence != nil {
		t.Fatal("playing match exposes the sentence over the wire")
	}

	// Current match mirrors the started one.
	var cur game.SafeMatch
	getJSON(t, c, ts.URL+"/match/current", &cur)
	if cur.ID != m.ID {
		t.Fatalf("current = %q, want %q", cur.ID, m.ID)
	}

	// A vowel guess debits the balance.
	var res result
	postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-letter", map[string]string{"letter": "a"}, &res)
	if res.Match.RevealedMask != "0101010" || res.Message != "Letter revealed." {
		t.Fatalf("guess result: %+v", res)
	}
	getJSON(t, c, ts.URL+"/auth/me", &me)
	if me.Coins != 90 {
		t.Fatalf("coins = %d, want 90", me.Coins)
	}

	// Winning via the full sentence pays the bonus.
	postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-sentence", map[string]string{"sentence": "cat sat"}, &res)
	if res.Match.Status != game.StatusWon {
		t.Fatalf("status = %q", res.Match.Status)
	}
	if res.Match.Sentence == nil || *res.Match.Sentence != "CAT SAT" {
		t.Fatal("won match does not expose the sentence")
	}
	getJSON(t, c, ts.URL+"/auth/me", &me)
	if me.Coins != 190 {
		t.Fatalf("coins = %d, want 190", me.Coins)
	}
}

func TestGuestFlow(t *testing.T) {
	ts, c := newTestServer(t)

	var m game.SafeMatch
	resp := postJSON(t, c, ts.URL+"/match/guest", nil, &m)
	if resp.StatusCode != http.StatusOK || m.Status != game.StatusPlaying {
		t.Fatalf("guest start: %d %+v", resp.StatusCode, m)
	}

	// Guests act on their match by id; no cookies involved.
	var res result
	postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-letter", map[string]string{"letter": "p"}, &res)
	if res.Match.RevealedMask[0] != '1' {
		t.Fatalf("mask = %q", res.Match.RevealedMask)
	}

	var got game.SafeMatch
	getJSON(t, c, ts.URL+"/match/"+m.ID, &got)
	if got.ID != m.ID {
		t.Fatalf("read back %q, want %q", got.ID, m.ID)
	}
}

func TestAuthRequired(t *testing.T) {
	ts, c := newTestServer(t)

	if resp := postJSON(t, c, ts.URL+"/match/start", nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("start without auth: %d", resp.StatusCode)
	}
	if resp := getJSON(t, c, ts.URL+"/match/current", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("current without auth: %d", resp.StatusCode)
	}
	if resp := getJSON(t, c, ts.URL+"/auth/me", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me without auth: %d", resp.StatusCode)
	}
}

func TestOwnershipOverTheWire(t *testing.T) {
	ts, c := newTestServer(t)
	signup(t, c, ts.URL, "alice")

	var m game.SafeMatch
	postJSON(t, c, ts.URL+"/match/start", nil, &m)

	// A cookie-less client is a guest and must not touch alice's match.
	anon := &http.Client{}
	resp := postJSON(t, anon, ts.URL+"/match/"+m.ID+"/guess-letter", map[string]string{"letter": "a"}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("guest on user match: %d", resp.StatusCode)
	}
}

func TestDomainErrorsOverTheWire(t *testing.T) {
	ts, c := newTestServer(t)
	signup(t, c, ts.URL, "alice")

	var m game.SafeMatch
	postJSON(t, c, ts.URL+"/match/start", nil, &m)

	// Malformed letters are rejected at the boundary.
	for _, bad := range []string{"", "ab", "1"} {
		resp := postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-letter", map[string]string{"letter": bad}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("letter %q: %d", bad, resp.StatusCode)
		}
	}
	resp := postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-sentence", map[string]string{"sentence": "  "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty sentence: %d", resp.StatusCode)
	}

	// Second vowel attempt surfaces the domain error as a 400.
	postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-letter", map[string]string{"letter": "a"}, nil)
	resp = postJSON(t, c, ts.URL+"/match/"+m.ID+"/guess-letter", map[string]string{"letter": "e"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("second vowel: %d", resp.StatusCode)
	}

	// Unknown match id.
	resp = postJSON(t, c, ts.URL+"/match/nope/guess-letter", map[string]string{"letter": "a"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown match: %d", resp.StatusCode)
	}
}

func TestCurrentNullWhenIdle(t *testing.T) {
	ts, c := newTestServer(t)
	signup(t, c, ts.URL, "alice")

	resp := getJSON(t, c, ts.URL+"/match/current", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("current: %d", resp.StatusCode)
	}
	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body != nil {
		t.Errorf("current with no match = %v, want null", body)
	}
}

func TestLetterEndpoints(t *testing.T) {
	ts, c := newTestServer(t)

	var costs map[string]int
	getJSON(t, c, ts.URL+"/letters/costs", &costs)
	if len(costs) != 26 {
		t.Fatalf("cost table has %d entries", len(costs))
	}
	if costs["A"] != 10 || costs["T"] != 5 || costs["Z"] != 1 {
		t.Errorf("cost table wrong: A=%d T=%d Z=%d", costs["A"], costs["T"], costs["Z"])
	}

	var sample []struct {
		Letter    string  `json:"letter"`
		Frequency float64 `json:"frequency"`
		Cost      int     `json:"cost"`
	}
	getJSON(t, c, ts.URL+"/letters/random", &sample)
	if len(sample) != 10 {
		t.Errorf("random sample has %d letters", len(sample))
	}
}

func TestSignupValidation(t *testing.T) {
	ts, c := newTestServer(t)

	// Too-short name, too-short password, illegal character.
	cases := []map[string]string{
		{"username": "ab", "password": "longenough1"},
		{"username": "valid_name", "password": "short"},
		{"username": "bad name!", "password": "longenough1"},
	}
	for _, body := range cases {
		resp := postJSON(t, c, ts.URL+"/auth/signup", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("signup %v: %d", body, resp.StatusCode)
		}
	}

	signup(t, c, ts.URL, "alice")
	resp := postJSON(t, c, ts.URL+"/auth/signup",
		map[string]string{"username": "alice", "password": "hunter2hunter2"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup: %d", resp.StatusCode)
	}
}
