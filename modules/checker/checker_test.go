package checker_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajuuu28ia/akusayangkamu/modules/checker"
)

func newTestChecker(t *testing.T, market *marketServer, profileURL string, opts ...checker.Option) *checker.Checker {
	t.Helper()
	chk, err := checker.New(testConfig(market.srv.URL, profileURL), opts...)
	require.NoError(t, err)
	return chk
}

func TestChecker_Check(t *testing.T) {
	t.Parallel()

	t.Run("screened handles never touch the network", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "abc")
		assert.Equal(t, checker.StatusInvalid, out.Status)

		out = chk.Check(context.Background(), "admin")
		assert.Equal(t, checker.StatusBanned, out.Status)

		landing, auctions, owners := market.counts()
		assert.Zero(t, landing+auctions+owners)
	})

	t.Run("refused profile page means banned", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, map[string]profilePage{
			"jaemin": {status: http.StatusNotFound, body: "nothing here"},
		})
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusBanned, out.Status)

		_, auctions, _ := market.counts()
		assert.Zero(t, auctions, "terminal before the marketplace")
	})

	t.Run("auction listing means for sale", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		market.auction = func(query string) string {
			return auctionHTML(query, "1,000", "Available")
		}
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusForSale, out.Status)
		assert.Equal(t, 1000, out.Price)

		_, _, owners := market.counts()
		assert.Zero(t, owners, "a priced listing ends the pipeline before the owner lookup")
	})

	t.Run("owner lookup classifies taken handles", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			ownerText string
			wantKind  checker.OwnerKind
		}{
			{"plain user", "", checker.KindUser},
			{"premium user", "This account is already subscribed to Telegram Premium.", checker.KindPremiumUser},
			{"channel", "Please enter a username assigned to a user.", checker.KindChannel},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				market := newMarketServer(t)
				market.owner = func(string) string { return tt.ownerText }
				profile := newProfileServer(t, nil)
				chk := newTestChecker(t, market, profile.URL)

				out := chk.Check(context.Background(), "jaemin")
				assert.Equal(t, checker.StatusTaken, out.Status)
				assert.Equal(t, tt.wantKind, out.Owner)
			})
		}
	})

	t.Run("contact prompt overrides a clean owner lookup", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, map[string]profilePage{
			"jaemin": {status: http.StatusOK, body: contactBody("jaemin")},
		})
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusTaken, out.Status)
		assert.Equal(t, checker.KindUser, out.Owner)
	})

	t.Run("nothing found anywhere means available", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusAvailable, out.Status)
	})

	t.Run("terminal outcomes are cached", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		first := chk.Check(context.Background(), "jaemin")
		_, auctionsAfterFirst, _ := market.counts()

		second := chk.Check(context.Background(), "jaemin")
		_, auctionsAfterSecond, _ := market.counts()

		assert.Equal(t, first, second)
		assert.Equal(t, auctionsAfterFirst, auctionsAfterSecond, "second check must be served from cache")
		assert.Equal(t, 1, chk.CacheLen())
	})

	t.Run("unreachable marketplace is indeterminate and uncached", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		market.srv.Close()
		profile := newProfileServer(t, nil)

		cfg := testConfig(market.srv.URL, profile.URL)
		cfg.MaxRetries = 0
		chk, err := checker.New(cfg)
		require.NoError(t, err)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusIndeterminate, out.Status)
		assert.Zero(t, chk.CacheLen())
	})

	t.Run("in-flight auction is indeterminate", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		market.auction = func(query string) string {
			return auctionHTML(query, "Minimum bid", "Auction in progress")
		}
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusIndeterminate, out.Status)
	})

	t.Run("protocol cross-check outranks web evidence", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)

		pool := newTestPool(t)
		pool.Add("primary", &scriptedClient{free: false})
		chk := newTestChecker(t, market, profile.URL, checker.WithCredentialPool(pool))

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusTaken, out.Status)
		assert.Equal(t, checker.KindUser, out.Owner)
	})

	t.Run("protocol confirmation yields available", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)

		pool := newTestPool(t)
		pool.Add("primary", &scriptedClient{free: true})
		chk := newTestChecker(t, market, profile.URL, checker.WithCredentialPool(pool))

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusAvailable, out.Status)
	})

	t.Run("failed contact check and exhausted pool is indeterminate", func(t *testing.T) {
		t.Parallel()

		// The first page fetch works; the contact re-fetch breaks. With the
		// pool also failing, no source produced evidence for a verdict.
		var hits atomic.Int32
		profile := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) > 1 {
				http.Error(w, "upstream hiccup", http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, "<html><body>Telegram</body></html>")
		}))
		t.Cleanup(profile.Close)

		market := newMarketServer(t)
		pool := newTestPool(t)
		pool.Add("broken", &scriptedClient{err: assert.AnError})
		chk := newTestChecker(t, market, profile.URL, checker.WithCredentialPool(pool))

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusIndeterminate, out.Status)
		assert.Zero(t, chk.CacheLen(), "a guess must not be cached")
	})

	t.Run("protocol says taken for a bot handle", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)

		pool := newTestPool(t)
		pool.Add("primary", &scriptedClient{free: false})
		chk := newTestChecker(t, market, profile.URL, checker.WithCredentialPool(pool))

		out := chk.Check(context.Background(), "jaeminbot")
		assert.Equal(t, checker.StatusTaken, out.Status)
		assert.Equal(t, checker.KindBot, out.Owner)
	})

	t.Run("non-user lookup rejections are refined", func(t *testing.T) {
		t.Parallel()

		const rejection = "Please enter a username assigned to a user."

		tests := []struct {
			name     string
			handle   string
			page     string
			wantKind checker.OwnerKind
		}{
			{"bot suffix", "jaeminbot", "", checker.KindBot},
			{"group page", "jaemin", "<html><body>You can view and join Jaemin Chat right away.</body></html>", checker.KindGroup},
			{"channel page", "jaemin", "<html><body>You can view and join Jaemin right away. Preview channel</body></html>", checker.KindChannel},
			{"hidden page", "jaemin", "", checker.KindChannel},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				market := newMarketServer(t)
				market.owner = func(string) string { return rejection }

				pages := map[string]profilePage{}
				if tt.page != "" {
					pages[tt.handle] = profilePage{status: http.StatusOK, body: tt.page}
				}
				profile := newProfileServer(t, pages)
				chk := newTestChecker(t, market, profile.URL)

				out := chk.Check(context.Background(), tt.handle)
				assert.Equal(t, checker.StatusTaken, out.Status)
				assert.Equal(t, tt.wantKind, out.Owner)
			})
		}
	})

	t.Run("joinable page after a clean lookup means taken", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, map[string]profilePage{
			"jaemin": {status: http.StatusOK, body: "<html><body>You can view and join Jaemin Chat right away.</body></html>"},
		})
		chk := newTestChecker(t, market, profile.URL)

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusTaken, out.Status)
		assert.Equal(t, checker.KindGroup, out.Owner)
	})

	t.Run("exhausted pool falls back to web evidence", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)

		pool := newTestPool(t)
		pool.Add("broken", &scriptedClient{err: assert.AnError})
		chk := newTestChecker(t, market, profile.URL, checker.WithCredentialPool(pool))

		out := chk.Check(context.Background(), "jaemin")
		assert.Equal(t, checker.StatusAvailable, out.Status)
	})

	t.Run("cancelled context is indeterminate", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := chk.Check(ctx, "jaemin")
		assert.Equal(t, checker.StatusIndeterminate, out.Status)
		assert.Zero(t, chk.CacheLen())
	})
}

func TestChecker_New(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()

		cfg := checker.DefaultConfig()
		cfg.RateLimit = 0
		_, err := checker.New(cfg)
		require.ErrorIs(t, err, checker.ErrInvalidConfiguration)
	})
}
