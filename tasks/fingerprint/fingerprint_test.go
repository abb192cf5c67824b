package fingerprint_test

import (
	"testing"

	"github.com/haydenflinner/magicinvoke/errors"
	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
	"github.com/haydenflinner/magicinvoke/tasks/params"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func TestBuild_OrderIndependent(t *testing.T) {
	t.Parallel()

	// Maps iterate in random order; equality across many builds exercises the
	// sort-before-serialize guarantee.
	values := params.Values{
		"alpha": 1,
		"beta":  "two",
		"gamma": []any{3, "four"},
		"delta": map[string]any{"k1": 1, "k2": 2, "k3": 3},
	}

	first, err := fingerprint.Build(values)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := fingerprint.Build(values.Clone())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_DistinguishesValues(t *testing.T) {
	t.Parallel()

	base := params.Values{"count": 3, "name": "people"}
	baseFP, err := fingerprint.Build(base)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		values params.Values
	}{
		{"changed int", params.Values{"count": 4, "name": "people"}},
		{"changed string", params.Values{"count": 3, "name": "robots"}},
		{"extra param", params.Values{"count": 3, "name": "people", "verbose": false}},
		{"int vs string", params.Values{"count": "3", "name": "people"}},
		{"nil value", params.Values{"count": nil, "name": "people"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fp, err := fingerprint.Build(tc.values)
			require.NoError(t, err)
			assert.Assert(t, fp != baseFP)
		})
	}
}

func TestBuild_ShapeAmbiguity(t *testing.T) {
	t.Parallel()

	// A scalar and a one-element list of it must not collide.
	scalar, err := fingerprint.Build(params.Values{"p": "x"})
	require.NoError(t, err)
	list, err := fingerprint.Build(params.Values{"p": []string{"x"}})
	require.NoError(t, err)

	assert.Assert(t, scalar != list)
}

func TestBuild_StableEncoding(t *testing.T) {
	t.Parallel()

	// Caches survive restarts, so the encoding may never silently change.
	// This pins the current encoding for a trivial parameter set.
	fp, err := fingerprint.Build(params.Values{})
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", fp.String())
}

func TestBuild_EquivalentNumericKinds(t *testing.T) {
	t.Parallel()

	a, err := fingerprint.Build(params.Values{"n": int32(7)})
	require.NoError(t, err)
	b, err := fingerprint.Build(params.Values{"n": int64(7)})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestBuild_UnhashableValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		value any
	}{
		{"channel", make(chan int)},
		{"function", func() {}},
		{"struct", struct{ X int }{1}},
		{"int-keyed map", map[int]string{1: "a"}},
		{"nested unhashable", []any{1, make(chan int)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fingerprint.Build(params.Values{"bad": tc.value})
			require.Error(t, err)
			taskErr, ok := errors.IsTaskError(err)
			require.True(t, ok)
			assert.Equal(t, errors.UnhashableParameterError, taskErr.Type)
			assert.Equal(t, "bad", taskErr.Details["param"])
		})
	}
}

func TestBuild_NilPointerHashesAsNil(t *testing.T) {
	t.Parallel()

	var p *string
	withTypedNil, err := fingerprint.Build(params.Values{"p": p})
	require.NoError(t, err)
	withNil, err := fingerprint.Build(params.Values{"p": nil})
	require.NoError(t, err)

	assert.Equal(t, withNil, withTypedNil)
}
