package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rajuuu28ia/akusayangkamu/pkg/logger"
	"github.com/rajuuu28ia/akusayangkamu/pkg/ratelimit"
)

// ProfileStatus is what a public profile page reveals about a handle.
type ProfileStatus string

const (
	// ProfileInconclusive means the page loaded but showed neither a ban
	// phrase nor a contact prompt. The handle may still be taken by an
	// account that hides its public page.
	ProfileInconclusive ProfileStatus = "inconclusive"

	// ProfileGone means the platform refused to serve the page at all,
	// which it does for banned and reserved handles.
	ProfileGone ProfileStatus = "gone"

	// ProfileBanned means the page carried an explicit ban phrase.
	ProfileBanned ProfileStatus = "banned"

	// ProfileContactable means the page invited contacting the handle,
	// which only happens for handles assigned to a user account.
	ProfileContactable ProfileStatus = "contactable"

	// ProfileChannel means the page offered joining and carried the channel
	// preview marker.
	ProfileChannel ProfileStatus = "channel"

	// ProfileGroup means the page offered joining without the channel
	// preview marker, which is how group chats render.
	ProfileGroup ProfileStatus = "group"
)

// defaultBanPhrases are body snippets that mark a handle as unregistrable.
var defaultBanPhrases = []string{
	"unavailable to register",
	"username is unavailable",
}

// ProfileClient probes public profile pages. A page that the platform
// refuses to serve, or that carries a ban phrase, marks the handle banned;
// a contact prompt marks it taken.
type ProfileClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *ratelimit.Limiter
	limitKey   string
	banPhrases []string
	log        *slog.Logger
}

// NewProfileClient builds a profile page client from cfg.
func NewProfileClient(cfg Config, limiter *ratelimit.Limiter, log *slog.Logger) *ProfileClient {
	if log == nil {
		log = logger.Discard()
	}
	return &ProfileClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.ProfileBaseURL, "/"),
		userAgent:  cfg.UserAgent,
		limiter:    limiter,
		limitKey:   hostKey(cfg.ProfileBaseURL),
		banPhrases: defaultBanPhrases,
		log:        log.With(logger.Component("webprofile")),
	}
}

// contactPhrase is the literal prompt shown on pages of user accounts.
func contactPhrase(name string) string {
	return fmt.Sprintf("You can contact @%s right away.", name)
}

// Joinable chats prompt with the chat title instead of the handle, so only
// the invariant prefix is matched. Channel pages additionally carry the
// preview link text.
const (
	joinPhrase           = "You can view and join"
	channelPreviewMarker = "Preview channel"
)

// Probe fetches the public profile page for name and classifies it.
func (p *ProfileClient) Probe(ctx context.Context, name string) (ProfileStatus, error) {
	if err := p.limiter.Acquire(ctx, p.limitKey); err != nil {
		return ProfileInconclusive, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+name, nil)
	if err != nil {
		return ProfileInconclusive, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ProfileInconclusive, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return ProfileGone, nil
	case http.StatusOK:
	default:
		return ProfileInconclusive, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProfileInconclusive, err
	}
	page := string(body)

	for _, phrase := range p.banPhrases {
		if strings.Contains(page, phrase) {
			p.log.Debug("ban phrase on profile page", logger.Candidate(name))
			return ProfileBanned, nil
		}
	}
	if strings.Contains(page, contactPhrase(name)) {
		return ProfileContactable, nil
	}
	if strings.Contains(page, joinPhrase) {
		if strings.Contains(page, channelPreviewMarker) {
			return ProfileChannel, nil
		}
		return ProfileGroup, nil
	}
	return ProfileInconclusive, nil
}
