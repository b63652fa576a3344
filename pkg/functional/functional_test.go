package functional

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseT(t *testing.T) {
	cases := []struct {
		token string
		kind  TKind
		name  string
	}{
		{"radon", Radon, "Radon"},
		{"Radon", Radon, "Radon"},
		{"0", Radon, "Radon"},
		{"t0", Radon, "Radon"},
		{"T1", T1, "T1"},
		{"2", T2, "T2"},
		{"t3", T3, "T3"},
		{" T4 ", T4, "T4"},
		{"5", T5, "T5"},
	}
	for _, c := range cases {
		got, err := ParseT(c.token)
		require.NoError(t, err, c.token)
		assert.Equal(t, c.kind, got.Kind(), c.token)
		assert.Equal(t, c.name, got.Name(), c.token)
	}
}

func TestParseTUnknown(t *testing.T) {
	for _, tok := range []string{"", "6", "T6", "P1", "radonx"} {
		_, err := ParseT(tok)
		require.Error(t, err, tok)
		assert.True(t, errors.Is(err, ErrUnknownFunctional), tok)
		assert.True(t, IsSpecError(err), tok)
	}
}

func TestParseP(t *testing.T) {
	p, err := ParseP("H3")
	require.NoError(t, err)
	assert.Equal(t, Hermite, p.Kind())
	assert.Equal(t, uint(3), p.Order())
	assert.Equal(t, "H3", p.Name())
	assert.True(t, p.Orthonormal())

	p, err = ParseP("3")
	require.NoError(t, err)
	assert.Equal(t, P3, p.Kind())
	assert.Equal(t, "P3", p.Name())
	assert.False(t, p.Orthonormal())

	p, err = ParseP("p1")
	require.NoError(t, err)
	assert.Equal(t, P1, p.Kind())

	p, err = ParseP("h0")
	require.NoError(t, err)
	assert.Equal(t, Hermite, p.Kind())
	assert.Equal(t, uint(0), p.Order())
}

func TestParsePErrors(t *testing.T) {
	cases := map[string]error{
		"H":   ErrMissingOrder,
		"h":   ErrMissingOrder,
		"Hx":  ErrUnparseableOrder,
		"H-1": ErrUnparseableOrder,
		"H3a": ErrUnparseableOrder,
		"P4":  ErrUnknownFunctional,
		"4":   ErrUnknownFunctional,
		"Q":   ErrUnknownFunctional,
		"":    ErrUnknownFunctional,
	}
	for tok, cause := range cases {
		_, err := ParseP(tok)
		require.Error(t, err, tok)
		assert.ErrorIs(t, err, cause, tok)
	}

	_, err := ParseP("H")
	assert.Contains(t, err.Error(), "missing order parameter")
}

func TestResolveRegime(t *testing.T) {
	regime, err := ResolveRegime(nil)
	require.NoError(t, err)
	assert.Equal(t, Regular, regime)

	regime, err = ResolveRegime([]P{{kind: P1}, {kind: P2}})
	require.NoError(t, err)
	assert.Equal(t, Regular, regime)

	regime, err = ResolveRegime([]P{NewHermite(1), NewHermite(4)})
	require.NoError(t, err)
	assert.Equal(t, Orthonormal, regime)

	_, err = ResolveRegime([]P{NewHermite(1), {kind: P2}})
	assert.ErrorIs(t, err, ErrMixedRegime)
}

func TestParseLists(t *testing.T) {
	ts, err := ParseTList([]string{"radon,1", "T2"})
	require.NoError(t, err)
	require.Len(t, ts, 3)
	assert.Equal(t, []string{"Radon", "T1", "T2"}, []string{ts[0].Name(), ts[1].Name(), ts[2].Name()})

	_, err = ParseTList(nil)
	assert.ErrorIs(t, err, ErrNoTFunctionals)

	ps, regime, err := ParsePList([]string{"H1", "h2"})
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	assert.Equal(t, Orthonormal, regime)

	_, _, err = ParsePList([]string{"1", "H2"})
	assert.ErrorIs(t, err, ErrMixedRegime)

	ps, regime, err = ParsePList(nil)
	require.NoError(t, err)
	assert.Empty(t, ps)
	assert.Equal(t, Regular, regime)
}

func TestLabel(t *testing.T) {
	radon, err := NewT(Radon)
	require.NoError(t, err)
	p2, err := NewP(P2)
	require.NoError(t, err)
	assert.Equal(t, "Radon-P2", Label(radon, p2))
	assert.Equal(t, "Radon-H5", Label(radon, NewHermite(5)))

	_, err = NewP(Hermite)
	assert.ErrorIs(t, err, ErrMissingOrder)
	_, err = NewT(TKind(42))
	assert.ErrorIs(t, err, ErrUnknownFunctional)
}

func TestCatalogs(t *testing.T) {
	ts := TCatalog()
	require.Len(t, ts, 6)
	assert.Equal(t, Radon, ts[0].Kind())
	assert.Equal(t, T5, ts[5].Kind())

	ps := PCatalog(2)
	require.Len(t, ps, 6)
	assert.Equal(t, "H2", ps[5].Name())
}
