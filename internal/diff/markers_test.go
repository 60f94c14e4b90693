package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanUpNodeMarkers(t *testing.T) {
	s := string(SentinelFirst)
	u := string(SentinelFirst + 1)

	tests := []struct {
		name string
		in   []DiffOp
		want []DiffOp
	}{
		{
			name: "insert shifted",
			in:   []DiffOp{Equal("a" + s), Insert("b" + s), Equal("c")},
			want: []DiffOp{Equal("a"), Insert(s + "b"), Equal(s + "c")},
		},
		{
			name: "delete shifted",
			in:   []DiffOp{Equal("a" + s), Delete("b" + s), Equal("c")},
			want: []DiffOp{Equal("a"), Delete(s + "b"), Equal(s + "c")},
		},
		{
			name: "emptied equal dropped",
			in:   []DiffOp{Equal(s), Insert("x" + s), Equal("y")},
			want: []DiffOp{Insert(s + "x"), Equal(s + "y")},
		},
		{
			name: "repeated shift",
			in:   []DiffOp{Equal("a" + s + s), Insert("b" + s + s), Equal("c")},
			want: []DiffOp{Equal("a"), Insert(s + s + "b"), Equal(s + s + "c")},
		},
		{
			name: "different markers not crossed",
			in:   []DiffOp{Equal("a" + s), Insert("b" + u), Equal("c")},
			want: []DiffOp{Equal("a" + s), Insert("b" + u), Equal("c")},
		},
		{
			name: "ordinary characters not shifted",
			in:   []DiffOp{Equal("ab"), Insert("cb"), Equal("d")},
			want: []DiffOp{Equal("ab"), Insert("cb"), Equal("d")},
		},
		{
			name: "no trailing equal",
			in:   []DiffOp{Equal("a" + s), Insert("b" + s)},
			want: []DiffOp{Equal("a" + s), Insert("b" + s)},
		},
		{
			name: "neighbors merged after drop",
			in:   []DiffOp{Delete("x"), Equal(s), Delete("y" + s), Equal("z")},
			want: []DiffOp{Delete("x" + s + "y"), Equal(s + "z")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]DiffOp(nil), tt.in...)
			got := CleanUpNodeMarkers(in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, in, "input must not be modified")
		})
	}
}

func TestIsSentinel(t *testing.T) {
	assert.True(t, IsSentinel(SentinelFirst))
	assert.True(t, IsSentinel(SentinelLast))
	assert.False(t, IsSentinel('a'))
	assert.False(t, IsSentinel(SentinelLast+1))
	assert.Equal(t, 6400, SentinelCount)
}
