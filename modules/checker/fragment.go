package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/rajuuu28ia/akusayangkamu/pkg/logger"
	"github.com/rajuuu28ia/akusayangkamu/pkg/ratelimit"
)

// ajInitRe pulls the bootstrap JSON blob out of the marketplace landing page.
// The api endpoint path changes between deployments, so it has to be scraped
// rather than hardcoded.
var ajInitRe = regexp.MustCompile(`(?s)ajInit\((\{.*?})\);`)

// Owner lookup responses carry their meaning in a human-readable error
// sentence rather than a status field.
const (
	premiumOwnerPhrase = "This account is already subscribed to Telegram Premium."
	channelOwnerPhrase = "Please enter a username assigned to a user."
	ownerNotFoundText  = "No Telegram users found."
	badRequestText     = "Bad request"
)

// OwnerClass classifies the account behind a handle as reported by the
// marketplace gift-recipient lookup.
type OwnerClass string

const (
	OwnerUser       OwnerClass = "user"
	OwnerPremium    OwnerClass = "premium"
	OwnerChannel    OwnerClass = "channel"
	OwnerNotFound   OwnerClass = "not_found"
	OwnerBadRequest OwnerClass = "bad_request"
	OwnerUnknown    OwnerClass = "unknown"
)

// Listing is one auction row from a marketplace search. Price is zero when
// the price cell is not numeric.
type Listing struct {
	Handle string
	Price  int
	Status string
}

// FragmentClient talks to the fragment.com marketplace. It resolves the
// ephemeral api endpoint once per process, rate limits every request through
// a shared sliding window, and retries transient failures with backoff.
type FragmentClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *ratelimit.Limiter
	limitKey   string
	backoff    backoff
	maxRetries int
	log        *slog.Logger

	mu     sync.Mutex
	apiURL string
}

// NewFragmentClient builds a marketplace client from cfg. The limiter is
// shared with whoever else talks to the same host.
func NewFragmentClient(cfg Config, limiter *ratelimit.Limiter, log *slog.Logger) *FragmentClient {
	if log == nil {
		log = logger.Discard()
	}
	return &FragmentClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.FragmentBaseURL, "/"),
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		limitKey:   hostKey(cfg.FragmentBaseURL),
		backoff: backoff{
			base:   cfg.RetryBaseDelay,
			max:    cfg.RetryMaxDelay,
			jitter: 0.1,
		},
		maxRetries: cfg.MaxRetries,
		log:        log.With(logger.Component("fragment")),
	}
}

// hostKey reduces a base URL to a limiter key so that every client hitting
// the same host shares one window.
func hostKey(base string) string {
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host
	}
	return base
}

// resolveEndpoint scrapes the api URL from the landing page. The resolved
// value is cached for the lifetime of the client.
func (f *FragmentClient) resolveEndpoint(ctx context.Context) (string, error) {
	f.mu.Lock()
	cached := f.apiURL
	f.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	if err := f.limiter.Acquire(ctx, f.limitKey); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: landing page returned %d", ErrEndpointNotResolved, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var blob string
	for _, script := range scriptTexts(string(body)) {
		if m := ajInitRe.FindStringSubmatch(script); m != nil {
			blob = m[1]
			break
		}
	}
	if blob == "" {
		return "", fmt.Errorf("%w: no ajInit blob on landing page", ErrEndpointNotResolved)
	}

	var boot struct {
		APIURL string `json:"apiUrl"`
	}
	if err := json.Unmarshal([]byte(blob), &boot); err != nil {
		return "", errors.Join(ErrEndpointNotResolved, err)
	}
	if boot.APIURL == "" {
		return "", fmt.Errorf("%w: ajInit blob has no apiUrl", ErrEndpointNotResolved)
	}

	api := boot.APIURL
	if strings.HasPrefix(api, "/") {
		api = f.baseURL + api
	}

	f.mu.Lock()
	f.apiURL = api
	f.mu.Unlock()

	f.log.Debug("resolved marketplace endpoint", slog.String("api_url", api))
	return api, nil
}

// SearchAuctions looks a handle up in the marketplace auction index. It
// retries transient failures up to the configured budget; flood waits
// signaled by the host are slept through without consuming the budget.
func (f *FragmentClient) SearchAuctions(ctx context.Context, name string) (Listing, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; {
		if attempt > 0 {
			if err := sleep(ctx, f.backoff.delay(attempt)); err != nil {
				return Listing{}, err
			}
		}

		listing, err := f.searchAuctionsOnce(ctx, name)
		if err == nil {
			return listing, nil
		}
		if ctx.Err() != nil {
			return Listing{}, ctx.Err()
		}
		if wait, ok := AsFloodWait(err); ok {
			f.log.Warn("marketplace flood wait",
				logger.Candidate(name),
				slog.Duration("wait", wait))
			if err := sleep(ctx, wait); err != nil {
				return Listing{}, err
			}
			continue
		}

		if errors.Is(err, ErrUnexpectedStatusCode) {
			// The scraped endpoint may have rotated; re-resolve next attempt.
			f.mu.Lock()
			f.apiURL = ""
			f.mu.Unlock()
		}

		lastErr = err
		f.log.Debug("auction search attempt failed",
			logger.Candidate(name),
			slog.Int("attempt", attempt+1),
			logger.Error(err))
		attempt++
	}
	return Listing{}, errors.Join(ErrRetriesExhausted, lastErr)
}

func (f *FragmentClient) searchAuctionsOnce(ctx context.Context, name string) (Listing, error) {
	api, err := f.resolveEndpoint(ctx)
	if err != nil {
		return Listing{}, err
	}

	form := url.Values{
		"type":   {"usernames"},
		"query":  {name},
		"method": {"searchAuctions"},
	}
	body, err := f.postForm(ctx, api, form)
	if err != nil {
		return Listing{}, err
	}

	var payload struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Listing{}, errors.Join(ErrMalformedResponse, err)
	}
	if payload.HTML == "" {
		return Listing{}, fmt.Errorf("%w: empty auction fragment", ErrMalformedResponse)
	}

	cells := cellValues(payload.HTML)
	if len(cells) < 3 {
		return Listing{}, fmt.Errorf("%w: auction fragment has %d value cells", ErrMalformedResponse, len(cells))
	}

	listing := Listing{
		Handle: strings.TrimPrefix(cells[0], "@"),
		Status: cells[2],
	}
	if price, err := strconv.Atoi(strings.ReplaceAll(cells[1], ",", "")); err == nil {
		listing.Price = price
	}
	return listing, nil
}

// SearchOwner classifies the account behind a handle using the premium gift
// recipient lookup, which leaks the owner kind in its error sentence.
func (f *FragmentClient) SearchOwner(ctx context.Context, name string) (OwnerClass, error) {
	api, err := f.resolveEndpoint(ctx)
	if err != nil {
		return OwnerUnknown, err
	}

	form := url.Values{
		"query":  {name},
		"months": {"3"},
		"method": {"searchPremiumGiftRecipient"},
	}
	body, err := f.postForm(ctx, api, form)
	if err != nil {
		return OwnerUnknown, err
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return OwnerUnknown, errors.Join(ErrMalformedResponse, err)
	}

	switch {
	case payload.Error == "":
		return OwnerUser, nil
	case strings.Contains(payload.Error, premiumOwnerPhrase):
		return OwnerPremium, nil
	case strings.Contains(payload.Error, channelOwnerPhrase):
		return OwnerChannel, nil
	case strings.Contains(payload.Error, ownerNotFoundText):
		return OwnerNotFound, nil
	case strings.Contains(payload.Error, badRequestText):
		return OwnerBadRequest, nil
	default:
		return OwnerUnknown, nil
	}
}

// postForm submits one rate-limited form request and returns the response
// body. A 429 is translated into a FloodWaitError for the caller to honor.
func (f *FragmentClient) postForm(ctx context.Context, api string, form url.Values) ([]byte, error) {
	if err := f.limiter.Acquire(ctx, f.limitKey); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &FloodWaitError{Duration: retryAfter(resp, 10*time.Second)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// retryAfter reads the Retry-After header, falling back to def when the
// header is absent or unparsable.
func retryAfter(resp *http.Response, def time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

// scriptTexts returns the text content of every script element in doc.
func scriptTexts(doc string) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}
	var scripts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			scripts = append(scripts, sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return scripts
}

// cellValues extracts the text of every element carrying the tm-value class,
// in document order. Auction rows expose handle, price, and status this way.
func cellValues(fragment string) []string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var values []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "tm-value") {
			values = append(values, strings.TrimSpace(nodeText(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return values
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
