package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	from := []string{"b", "a", "b"}
	sig := Build(from, nil, "x = 9", []string{"g2", "g1"}, nil)

	assert.Equal(t, []string{"a", "b", "b"}, sig.FromTables)
	assert.Equal(t, []string{}, sig.JoinTables)
	assert.Equal(t, []string{"g2", "g1"}, sig.GroupBy, "GROUP BY keeps its order")
	assert.Equal(t, []string{}, sig.OrderBy)
	assert.Equal(t, []string{"b", "a", "b"}, from, "input is not modified")
}

func TestSignature_Key(t *testing.T) {
	tests := []struct {
		name string
		a, b Signature
	}{
		{
			name: "comma inside a label",
			a:    Build([]string{"a,b"}, nil, "", nil, nil),
			b:    Build([]string{"a", "b"}, nil, "", nil, nil),
		},
		{
			name: "item moved between fields",
			a:    Build([]string{"a"}, nil, "", nil, nil),
			b:    Build(nil, []string{"a"}, "", nil, nil),
		},
		{
			name: "separator inside condition",
			a:    Build(nil, nil, `x|0`, nil, nil),
			b:    Build(nil, nil, `x`, nil, []string{"0"}),
		},
		{
			name: "direction paired differently",
			a:    Build(nil, nil, "", nil, []string{"a", "DESC", "b"}),
			b:    Build(nil, nil, "", nil, []string{"a DESC", "b"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, tt.a.Key(), tt.b.Key())
			assert.NotEqual(t, tt.a.Digest(), tt.b.Digest())
			assert.False(t, tt.a.Equal(tt.b))
		})
	}
}

func TestSignature_Digest(t *testing.T) {
	sig := Build([]string{"t"}, nil, "id = 9", nil, nil)
	digest := sig.Digest()

	assert.Len(t, digest, 16)
	assert.Regexp(t, `^[0-9a-f]{16}$`, digest)
	assert.Equal(t, digest, Build([]string{"t"}, []string{}, "id = 9", []string{}, []string{}).Digest())
}

func TestSignature_Hash(t *testing.T) {
	sig := Build([]string{"t"}, nil, "id = 9", nil, nil)
	hash := sig.Hash()

	assert.Regexp(t, `^[0-9a-f]{64}$`, hash)
	assert.Equal(t, sig.Digest(), hash[:16])
	assert.NotEqual(t, hash, Build([]string{"t"}, nil, "id = 'X'", nil, nil).Hash())
}

func TestSignature_String(t *testing.T) {
	sig := Build([]string{"t"}, nil, "id = 9", nil, []string{"id", "DESC"})
	assert.Equal(t, `from=["t"] join=[] where="id = 9" group_by=[] order_by=["id" "DESC"]`, sig.String())
}
