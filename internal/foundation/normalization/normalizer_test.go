package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnum string

const (
	testEnumAlpha testEnum = "alpha"
	testEnumBeta  testEnum = "beta"
)

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]testEnum{
		"alpha": testEnumAlpha,
		"Beta":  testEnumBeta,
	}, testEnumAlpha)

	tests := []struct {
		name     string
		input    string
		expected testEnum
	}{
		{"exact match", "alpha", testEnumAlpha},
		{"case insensitive", "BETA", testEnumBeta},
		{"with spaces", "  beta  ", testEnumBeta},
		{"invalid falls back to default", "gamma", testEnumAlpha},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}

	_, err := n.NormalizeWithError("gamma")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[alpha beta]")
	assert.Equal(t, []string{"alpha", "beta"}, n.ValidKeys())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SYCL Quickstart", "sycl-quickstart"},
		{"Parallel Sorting", "parallel-sorting"},
		{"ND Kernel", "nd-kernel"},
		{"Multidimensional parallel_for", "multidimensional-parallel_for"},
		{"  Exception in SYCL!  ", "exception-in-sycl"},
		{"Crème Brûlée", "creme-brulee"},
		{"O((log n)^2) complexity", "o-log-n-2-complexity"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
