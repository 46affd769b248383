package unminify

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFormatter(calls *int, out string) FormatFunc {
	return func(string) (string, error) {
		*calls++
		return out, nil
	}
}

func TestUnminify_EmptyCodeSkipsFormatters(t *testing.T) {
	calls := 0
	opts := []Option{}
	for _, f := range Formats {
		opts = append(opts, WithFormatter(f, countingFormatter(&calls, "x")))
	}
	u := New(opts...)

	for _, code := range []string{"", "   \n\t"} {
		res, err := u.Unminify(code, "json")
		assert.ErrorIs(t, err, ErrNoCode)
		assert.Nil(t, res)
	}
	assert.Zero(t, calls)
}

func TestUnminify_DeclaredFormatWins(t *testing.T) {
	u := New()

	res, err := u.Unminify(`{"a":1}`, "JS")
	require.NoError(t, err)
	assert.Equal(t, FormatJS, res.Format)
}

func TestUnminify_DetectsWhenUndeclared(t *testing.T) {
	u := New()

	res, err := u.Unminify(`{"a":1}`, "")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, res.Format)
	assert.Equal(t, "{\n  \"a\": 1\n}", res.Output)
}

func TestUnminify_UnsupportedFormat(t *testing.T) {
	_, err := New().Unminify("a", "yaml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnminify_FormatterErrorSurfaces(t *testing.T) {
	u := New(WithFormatter(FormatCSS, func(string) (string, error) {
		return "", errors.New("boom")
	}))

	_, err := u.Unminify(".a{}", "css")
	require.Error(t, err)
	assert.EqualError(t, err, "boom")
}

func TestUnminify_InvalidJSONMessage(t *testing.T) {
	_, err := New().Unminify(`{"a":`, "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestUnminify_XMLDeclarationStripped(t *testing.T) {
	res, err := New().Unminify(`<?xml version="1.0"?><a><b>1</b></a>`, "")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, res.Format)
	assert.Equal(t, "<a>\n  <b>1</b>\n</a>", res.Output)
}

func TestUnminify_Cache(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache, err := NewCache(8, time.Minute, reg)
	require.NoError(t, err)

	calls := 0
	u := New(WithCache(cache), WithFormatter(FormatJS, countingFormatter(&calls, "out\n")))

	first, err := u.Unminify("a()", "js")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := u.Unminify("a()", "js")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "out\n", second.Output)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(cache.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(cache.misses))
}

func TestCache_KeyIncludesFormat(t *testing.T) {
	cache, err := NewCache(8, time.Minute, nil)
	require.NoError(t, err)

	cache.Set(FormatJS, "x", "js-out")
	_, ok := cache.Get(FormatCSS, "x")
	assert.False(t, ok)

	out, ok := cache.Get(FormatJS, "x")
	assert.True(t, ok)
	assert.Equal(t, "js-out", out)
}

func TestCache_Expires(t *testing.T) {
	cache, err := NewCache(8, 20*time.Millisecond, nil)
	require.NoError(t, err)

	cache.Set(FormatJSON, "{}", "{}")
	require.Eventually(t, func() bool {
		_, ok := cache.Get(FormatJSON, "{}")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewCache_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCache(1, time.Minute, reg)
	require.NoError(t, err)

	_, err = NewCache(1, time.Minute, reg)
	assert.Error(t, err)
}
