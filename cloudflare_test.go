package ddns_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cloudflare/cloudflare-go"

	"github.com/dynip/ddns"
)

const testZone = "023e105f4ecef8ad9ca31a8372d0c353"

type fakeRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
}

// fakeZone is a minimal stand-in for the Cloudflare DNS records API of one zone.
type fakeZone struct {
	t   *testing.T
	srv *httptest.Server

	mu         sync.Mutex
	records    []fakeRecord
	nextID     int
	reads      int
	updates    []fakeRecord
	creates    []fakeRecord
	failReads  int // number of upcoming list calls that fail
	failWrites map[string]bool
	auth       []string
}

func newFakeZone(t *testing.T, records ...fakeRecord) *fakeZone {
	t.Helper()
	z := &fakeZone{t: t, records: records, failWrites: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /zones/{zone}/dns_records", z.list)
	mux.HandleFunc("GET /zones/{zone}/dns_records/{id}", z.get)
	mux.HandleFunc("POST /zones/{zone}/dns_records", z.create)
	mux.HandleFunc("PUT /zones/{zone}/dns_records/{id}", z.update)
	mux.HandleFunc("PATCH /zones/{zone}/dns_records/{id}", z.update)
	z.srv = httptest.NewServer(mux)
	t.Cleanup(z.srv.Close)
	return z
}

// option registers the fake as the client's provider.
func (z *fakeZone) option() func(*ddns.Client) error {
	return ddns.UsingCloudflare("test-token", testZone,
		cloudflare.BaseURL(z.srv.URL),
		cloudflare.UsingRateLimit(1000),
	)
}

func (z *fakeZone) counts() (reads, updates, creates int) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.reads, len(z.updates), len(z.creates)
}

func (z *fakeZone) content(name string) (string, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, r := range z.records {
		if r.Name == name {
			return r.Content, true
		}
	}
	return "", false
}

func (z *fakeZone) list(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.reads++
	z.auth = append(z.auth, r.Header.Get("Authorization"))
	if r.PathValue("zone") != testZone {
		writeError(w, http.StatusNotFound, "zone not found")
		return
	}
	if z.failReads > 0 {
		z.failReads--
		writeError(w, http.StatusBadRequest, "simulated read failure")
		return
	}
	name, typ := r.URL.Query().Get("name"), r.URL.Query().Get("type")
	matches := []fakeRecord{}
	for _, rec := range z.records {
		if rec.Name == name && rec.Type == typ {
			matches = append(matches, rec)
		}
	}
	writeJSON(w, map[string]any{
		"success":  true,
		"errors":   []any{},
		"messages": []any{},
		"result":   matches,
		"result_info": map[string]int{
			"page":        1,
			"per_page":    50,
			"count":       len(matches),
			"total_count": len(matches),
			"total_pages": 1,
		},
	})
}

func (z *fakeZone) get(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, rec := range z.records {
		if rec.ID == r.PathValue("id") {
			writeJSON(w, map[string]any{"success": true, "errors": []any{}, "messages": []any{}, "result": rec})
			return
		}
	}
	writeError(w, http.StatusNotFound, "record not found")
}

func (z *fakeZone) update(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()
	var body fakeRecord
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		z.t.Errorf("decoding update body: %s", err)
	}
	z.updates = append(z.updates, body)
	if z.failWrites[body.Name] {
		writeError(w, http.StatusBadRequest, "simulated write failure")
		return
	}
	id := r.PathValue("id")
	for i := range z.records {
		if z.records[i].ID == id {
			z.records[i].Content = body.Content
			body = z.records[i]
			writeJSON(w, map[string]any{"success": true, "errors": []any{}, "messages": []any{}, "result": body})
			return
		}
	}
	writeError(w, http.StatusNotFound, "record not found")
}

func (z *fakeZone) create(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()
	var body fakeRecord
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		z.t.Errorf("decoding create body: %s", err)
	}
	z.creates = append(z.creates, body)
	if z.failWrites[body.Name] {
		writeError(w, http.StatusBadRequest, "simulated write failure")
		return
	}
	z.nextID++
	body.ID = fmt.Sprintf("created-%d", z.nextID)
	z.records = append(z.records, body)
	writeJSON(w, map[string]any{"success": true, "errors": []any{}, "messages": []any{}, "result": body})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  false,
		"errors":   []map[string]any{{"code": 1000 + code, "message": msg}},
		"messages": []any{},
		"result":   nil,
	})
}
