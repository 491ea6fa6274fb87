package checker_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rajuuu28ia/akusayangkamu/modules/checker"
)

// landingPage mimics the marketplace bootstrap page. The api path is buried
// in an ajInit call the client has to scrape.
const landingPage = `<html><head>
<script>var _i=1;</script>
<script>ajInit({"apiUrl":"\/api?hash=test"});</script>
</head><body></body></html>`

func auctionHTML(handle, price, status string) string {
	return fmt.Sprintf(
		`<div class="table-cell"><div class="tm-value">@%s</div></div>`+
			`<div class="tm-value">%s</div><div class="tm-value">%s</div>`,
		handle, price, status)
}

// marketServer is a scripted stand-in for the marketplace. The auction and
// owner funcs decide the response per queried handle.
type marketServer struct {
	srv *httptest.Server

	mu           sync.Mutex
	landingCalls int
	auctionCalls int
	ownerCalls   int

	auction func(query string) string
	owner   func(query string) string
}

func newMarketServer(t *testing.T) *marketServer {
	t.Helper()
	m := &marketServer{
		auction: func(string) string { return auctionHTML("whatever", "Unavailable", "Unavailable") },
		owner:   func(string) string { return "No Telegram users found." },
	}
	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			m.mu.Lock()
			m.landingCalls++
			m.mu.Unlock()
			fmt.Fprint(w, landingPage)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		query := r.FormValue("query")
		switch r.FormValue("method") {
		case "searchAuctions":
			m.mu.Lock()
			m.auctionCalls++
			fn := m.auction
			m.mu.Unlock()
			writeJSON(w, map[string]string{"html": fn(query)})
		case "searchPremiumGiftRecipient":
			m.mu.Lock()
			m.ownerCalls++
			fn := m.owner
			m.mu.Unlock()
			writeJSON(w, map[string]string{"error": fn(query)})
		default:
			http.Error(w, "unknown method", http.StatusBadRequest)
		}
	}))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *marketServer) counts() (landing, auctions, owners int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.landingCalls, m.auctionCalls, m.ownerCalls
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// profilePage scripts one t.me response.
type profilePage struct {
	status int
	body   string
}

// newProfileServer serves scripted profile pages keyed by handle. Handles
// without a script get an empty 200 page, which reads as inconclusive.
func newProfileServer(t *testing.T, pages map[string]profilePage) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[1:]
		page, ok := pages[name]
		if !ok {
			fmt.Fprint(w, "<html><body>Telegram</body></html>")
			return
		}
		w.WriteHeader(page.status)
		fmt.Fprint(w, page.body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func contactBody(name string) string {
	return fmt.Sprintf("<html><body>You can contact @%s right away.</body></html>", name)
}

// testConfig returns the default configuration retargeted at local servers,
// with delays shrunk so tests stay fast.
func testConfig(fragmentURL, profileURL string) checker.Config {
	cfg := checker.DefaultConfig()
	cfg.FragmentBaseURL = fragmentURL
	cfg.ProfileBaseURL = profileURL
	cfg.RequestTimeout = 2 * time.Second
	cfg.MaxRetries = 2
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = 5 * time.Millisecond
	cfg.RateLimit = 1000
	cfg.RateWindow = time.Second
	cfg.AdaptiveBaseDelay = 0
	cfg.AdaptiveJitterMax = 0
	cfg.BatchTimeout = 5 * time.Second
	cfg.BatchDelayBase = time.Millisecond
	return cfg
}
