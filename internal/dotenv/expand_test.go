package dotenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testParams mirrors the binding set used across the expansion tests.
func testParams() map[string]string {
	return map[string]string{
		"abc":      "a",
		"def2":     "b",
		"_ghi":     "c",
		"_j3k_l3_": "d",
		"_":        "e",
	}
}

func TestExpand_NoExpansion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "abc def", "abc def"},
		{"escaped start", `ghi \$jkl`, `ghi \$jkl`},
		{"lone dollar", "$", "$"},
		{"dollar then punctuation", "100$!", "100$!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.in, map[string]string{}))
		})
	}
}

func TestExpand_Unbraced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "$abc $abc", "a a"},
		{"digits", "$def2 $3abc", "b $3abc"},
		{"underscores", "$_ghi$_ghi", "cc"},
		{"complex", "$_j3k_l3_ $_aaa", "d "},
		{"escaped", `\$abc \\$def2`, `\$abc \\b`},
		{"adjacent", "$abc$abc", "aa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.in, testParams()))
		})
	}
}

func TestExpand_Braced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "${abc} ${abc}", "a a"},
		{"digits", "${def2} ${3abc}", "b "},
		{"underscores", "${_ghi}${_ghi}", "cc"},
		{"complex", "${_j3k_l3_} ${_aaa}", "d "},
		{"escaped", `\${abc} \\${def2}`, `\${abc} \\b`},
		{"extra braces", "}}{abc}{{abc${abc{}}$}", "}}{abc}{{abc}$}"},
		{"unterminated", "${abc", "${abc"},
		{"unterminated empty", "${", "${"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.in, testParams()))
		})
	}
}

func TestExpand_NoRecursion(t *testing.T) {
	// A substituted value is replayed, never rescanned.
	params := map[string]string{"A": "$B", "B": "x"}
	assert.Equal(t, "$B", Expand("$A", params))
}

func TestExpand_Determinism(t *testing.T) {
	assert.Equal(t, "xx", Expand("$A$A", map[string]string{"A": "x"}))
	assert.Equal(t, "", Expand("${A}", map[string]string{}))
	assert.Equal(t, "$", Expand("$", map[string]string{}))
	assert.Equal(t, "${A", Expand("${A", map[string]string{"A": "x"}))
}

func TestExpand_Observer(t *testing.T) {
	type ref struct {
		name  string
		bound bool
	}
	var seen []ref
	got := expand("$abc ${def2} $missing ${nope} ${bad!name}", testParams(), func(name string, bound bool) {
		seen = append(seen, ref{name, bound})
	})

	assert.Equal(t, "a b   ", got)
	assert.Equal(t, []ref{
		{"abc", true},
		{"def2", true},
		{"missing", false},
		{"nope", false},
		// bad!name is malformed, not a reference: no observation.
	}, seen)
}
