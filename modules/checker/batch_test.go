package checker_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajuuu28ia/akusayangkamu/modules/checker"
	"github.com/rajuuu28ia/akusayangkamu/pkg/generator"
)

func candidates(base string, texts ...string) []generator.Candidate {
	out := make([]generator.Candidate, 0, len(texts))
	for _, text := range texts {
		out = append(out, generator.Candidate{
			Text:     text,
			Method:   generator.MethodOnPoint,
			BaseName: base,
		})
	}
	return out
}

func TestOrchestrator_Run(t *testing.T) {
	t.Parallel()

	t.Run("verifies every unique candidate", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		orch := checker.NewOrchestrator(chk, nil, nil)
		t.Cleanup(func() { _ = orch.Store().Close() })

		cands := candidates("jaemin", "jaemins", "jaeminy", "jaemins", "jaemin1")
		result, err := orch.Run(context.Background(), "jaemin", cands)
		require.NoError(t, err)

		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, "jaemin", result.BaseName)
		assert.Len(t, result.Outcomes, 3, "duplicates collapse before dispatch")
		for _, out := range result.Outcomes {
			assert.Equal(t, checker.StatusAvailable, out.Status)
		}
		assert.False(t, result.CompletedAt.Before(result.StartedAt))
	})

	t.Run("session store blocks reprocessing", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)
		chk := newTestChecker(t, market, profile.URL)

		orch := checker.NewOrchestrator(chk, nil, nil)
		t.Cleanup(func() { _ = orch.Store().Close() })

		cands := candidates("jaemin", "jaemins", "jaeminy")
		first, err := orch.Run(context.Background(), "jaemin", cands)
		require.NoError(t, err)
		require.Len(t, first.Outcomes, 2)

		second, err := orch.Run(context.Background(), "jaemin", cands)
		require.NoError(t, err)
		assert.Empty(t, second.Outcomes)
		assert.ElementsMatch(t, []string{"jaemins", "jaeminy"}, second.Skipped)
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		profile := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			inFlight.Add(-1)
			fmt.Fprint(w, "<html><body>Telegram</body></html>")
		}))
		t.Cleanup(profile.Close)

		market := newMarketServer(t)
		cfg := testConfig(market.srv.URL, profile.URL)
		cfg.BatchSize = 6
		cfg.Concurrency = 2
		chk, err := checker.New(cfg)
		require.NoError(t, err)

		orch := checker.NewOrchestrator(chk, nil, nil)
		t.Cleanup(func() { _ = orch.Store().Close() })

		cands := candidates("jaemin",
			"jaemins", "jaeminy", "jaemin1", "jaeminx", "jaeminz", "jaeminq")
		result, err := orch.Run(context.Background(), "jaemin", cands)
		require.NoError(t, err)
		require.Len(t, result.Outcomes, 6)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("cancelled run returns partial result", func(t *testing.T) {
		t.Parallel()

		market := newMarketServer(t)
		profile := newProfileServer(t, nil)

		cfg := testConfig(market.srv.URL, profile.URL)
		cfg.BatchSize = 1
		cfg.BatchDelayBase = 50 * time.Millisecond
		chk, err := checker.New(cfg)
		require.NoError(t, err)

		orch := checker.NewOrchestrator(chk, nil, nil)
		t.Cleanup(func() { _ = orch.Store().Close() })

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		cands := candidates("jaemin",
			"jaemins", "jaeminy", "jaemin1", "jaeminx", "jaeminz", "jaeminq")
		result, err := orch.Run(ctx, "jaemin", cands)
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, len(result.Outcomes), 6)
	})
}

func TestBatchResult_Aggregated(t *testing.T) {
	t.Parallel()

	result := &checker.BatchResult{
		Outcomes: map[string]checker.Outcome{
			"alpha": checker.Available(),
			"bravo": checker.TakenBy(checker.KindUser),
			"delta": checker.Available(),
		},
	}

	grouped := result.Aggregated()
	assert.ElementsMatch(t, []string{"alpha", "delta"}, grouped[checker.StatusAvailable])
	assert.ElementsMatch(t, []string{"bravo"}, grouped[checker.StatusTaken])
}
