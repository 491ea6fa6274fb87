package screener_test

import (
	"testing"

	"github.com/rajuuu28ia/akusayangkamu/pkg/screener"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenFormatRules(t *testing.T) {
	t.Parallel()

	s := screener.New(screener.Config{})

	tests := []struct {
		name   string
		handle string
	}{
		{name: "too short", handle: "abcd"},
		{name: "too long", handle: "abcdefghijklmnopqrstuvwxyzabcdefg"},
		{name: "starts with digit", handle: "1jaemin"},
		{name: "starts with underscore", handle: "_jaemin"},
		{name: "forbidden character", handle: "jae-min"},
		{name: "doubled underscore", handle: "jae__min"},
		{name: "trailing underscore", handle: "jaemin_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Screen(tt.handle)
			assert.False(t, got.Allowed)
			assert.Equal(t, screener.ReasonInvalidFormat, got.Reason)
		})
	}
}

func TestScreenReservedWords(t *testing.T) {
	t.Parallel()

	s := screener.New(screener.Config{})

	t.Run("exact reserved word", func(t *testing.T) {
		got := s.Screen("admin")
		assert.False(t, got.Allowed)
		assert.Equal(t, screener.ReasonReserved, got.Reason)
	})

	t.Run("reserved word as substring", func(t *testing.T) {
		got := s.Screen("telegramfan")
		assert.False(t, got.Allowed)
		assert.Equal(t, screener.ReasonReserved, got.Reason)
	})

	t.Run("one edit from sensitive word", func(t *testing.T) {
		got := s.Screen("telegrem")
		assert.False(t, got.Allowed)
		assert.Equal(t, screener.ReasonNearReserved, got.Reason)
	})

	t.Run("injected reserved set", func(t *testing.T) {
		custom := screener.New(screener.Config{},
			screener.WithReserved(screener.NewWordSet("jaemin")),
			screener.WithSensitive(screener.NewWordSet()),
		)
		assert.False(t, custom.Screen("jaemin").Allowed)
		assert.True(t, custom.Screen("nojaem").Allowed)
	})
}

func TestScreenStatisticalFlags(t *testing.T) {
	t.Parallel()

	s := screener.New(screener.Config{})

	tests := []struct {
		name   string
		handle string
		reason screener.Reason
	}{
		{name: "low diversity", handle: "abababa", reason: screener.ReasonLowDiversity},
		{name: "repeated run", handle: "jaaaamin", reason: screener.ReasonRepeatedRun},
		{name: "low entropy long name", handle: "aaabaaac", reason: screener.ReasonLowEntropy},
		{name: "digit heavy suffix", handle: "jaemin12345", reason: screener.ReasonDigitSuffix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Screen(tt.handle)
			require.False(t, got.Allowed, "expected %q to be rejected", tt.handle)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestScreenAccepts(t *testing.T) {
	t.Parallel()

	s := screener.New(screener.Config{})

	for _, handle := range []string{"jaemin", "jaemins", "nakyoung", "haruto99", "jisung_o"} {
		got := s.Screen(handle)
		assert.True(t, got.Allowed, "expected %q to pass, got %s (%s)", handle, got.Reason, got.Detail)
	}
}

func TestScreenIsIdempotent(t *testing.T) {
	t.Parallel()

	s := screener.New(screener.Config{})
	first := s.Screen("jaemin")
	second := s.Screen("jaemin")
	assert.Equal(t, first, second)
}
