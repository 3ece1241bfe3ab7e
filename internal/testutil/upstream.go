package testutil

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Upload is one document received by FakeUpstream.
type Upload struct {
	Authorization  string
	ContentType    string
	FileName       string
	IdempotencyKey string
	Body           []byte
}

// FakeUpstream is an httptest server speaking the upstream document-sync API.
// Its auth and sync hosts both point at itself.
type FakeUpstream struct {
	Server *httptest.Server

	mu      sync.Mutex
	calls   map[string]int
	uploads []Upload

	// Handlers return the status code and body for each endpoint. They default to
	// a working upstream: registration yields "RT1", refresh yields a token valid
	// for an hour and uploads are accepted.
	OnDiscovery func() (int, string)
	OnRegister  func(code, deviceID string) (int, string)
	OnRefresh   func(refreshToken string) (int, string)
	OnUpload    func(upload Upload) (int, string)
}

// NewFakeUpstream starts a FakeUpstream that is closed when the test ends.
func NewFakeUpstream(t testing.TB) *FakeUpstream {
	t.Helper()

	f := &FakeUpstream{calls: make(map[string]int)}
	f.OnDiscovery = func() (int, string) {
		body, _ := json.Marshal(map[string]string{"auth_host": f.Server.URL, "sync_host": f.Server.URL})
		return http.StatusOK, string(body)
	}
	f.OnRegister = func(code, deviceID string) (int, string) {
		return http.StatusOK, "RT1"
	}
	f.OnRefresh = func(refreshToken string) (int, string) {
		return http.StatusOK, AccessToken(t, time.Now().Add(time.Hour))
	}
	f.OnUpload = func(upload Upload) (int, string) {
		return http.StatusOK, `{"docID":"remote-1"}`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /discovery", func(w http.ResponseWriter, r *http.Request) {
		f.count("discovery")
		f.reply(w)(f.handlers().discovery())
	})
	mux.HandleFunc("POST /token/json/2/device/new", func(w http.ResponseWriter, r *http.Request) {
		f.count("register")
		var req struct {
			Code     string `json:"code"`
			DeviceID string `json:"deviceID"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.reply(w)(f.handlers().register(req.Code, req.DeviceID))
	})
	mux.HandleFunc("POST /token/json/2/user/new", func(w http.ResponseWriter, r *http.Request) {
		f.count("refresh")
		f.reply(w)(f.handlers().refresh(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")))
	})
	mux.HandleFunc("POST /doc/v2/files", func(w http.ResponseWriter, r *http.Request) {
		f.count("upload")
		body, _ := io.ReadAll(r.Body)
		upload := Upload{
			Authorization:  r.Header.Get("Authorization"),
			ContentType:    r.Header.Get("Content-Type"),
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
			Body:           body,
		}
		if meta, err := base64.StdEncoding.DecodeString(r.Header.Get("rm-meta")); err == nil {
			var parsed struct {
				FileName string `json:"file_name"`
			}
			_ = json.Unmarshal(meta, &parsed)
			upload.FileName = parsed.FileName
		}
		f.mu.Lock()
		f.uploads = append(f.uploads, upload)
		f.mu.Unlock()
		f.reply(w)(f.handlers().upload(upload))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// DiscoveryURL is the URL to configure as the upstream discovery endpoint.
func (f *FakeUpstream) DiscoveryURL() string {
	return f.Server.URL + "/discovery"
}

// Calls returns how many requests reached the named endpoint:
// "discovery", "register", "refresh" or "upload".
func (f *FakeUpstream) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// Uploads returns the documents received so far.
func (f *FakeUpstream) Uploads() []Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Upload(nil), f.uploads...)
}

// Set swaps handlers under the lock so tests can change behavior mid-run.
func (f *FakeUpstream) Set(fn func(f *FakeUpstream)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fakeHandlers struct {
	discovery func() (int, string)
	register  func(code, deviceID string) (int, string)
	refresh   func(refreshToken string) (int, string)
	upload    func(upload Upload) (int, string)
}

func (f *FakeUpstream) handlers() fakeHandlers {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeHandlers{f.OnDiscovery, f.OnRegister, f.OnRefresh, f.OnUpload}
}

func (f *FakeUpstream) count(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[endpoint]++
}

func (f *FakeUpstream) reply(w http.ResponseWriter) func(int, string) {
	return func(status int, body string) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}
