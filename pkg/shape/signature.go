package shape

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Signature is the structural fingerprint of a statement. Two statements
// with equal signatures share the same shape.
type Signature struct {
	FromTables     []string `json:"from_tables" yaml:"from_tables"`
	JoinTables     []string `json:"join_tables" yaml:"join_tables"`
	WhereCondition string   `json:"where_condition" yaml:"where_condition"`
	GroupBy        []string `json:"group_by" yaml:"group_by"`
	OrderBy        []string `json:"order_by" yaml:"order_by"`
}

// Build assembles a Signature. FROM and JOIN tables are sorted with
// duplicates kept; GROUP BY and ORDER BY keep their order. Inputs are copied.
func Build(fromTables, joinTables []string, whereCondition string, groupBy, orderBy []string) Signature {
	s := Signature{
		FromTables:     clone(fromTables),
		JoinTables:     clone(joinTables),
		WhereCondition: whereCondition,
		GroupBy:        clone(groupBy),
		OrderBy:        clone(orderBy),
	}
	slices.Sort(s.FromTables)
	slices.Sort(s.JoinTables)
	return s
}

func clone(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

// Key encodes the signature as a string suitable for use as a map key.
// Distinct signatures always produce distinct keys.
func (s Signature) Key() string {
	var b strings.Builder
	writeList(&b, s.FromTables)
	b.WriteByte('|')
	writeList(&b, s.JoinTables)
	b.WriteByte('|')
	b.WriteString(strconv.Quote(s.WhereCondition))
	b.WriteByte('|')
	writeList(&b, s.GroupBy)
	b.WriteByte('|')
	writeList(&b, s.OrderBy)
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	b.WriteString(strconv.Itoa(len(items)))
	for _, item := range items {
		b.WriteString(strconv.Quote(item))
	}
}

// Equal reports whether s and other describe the same shape.
func (s Signature) Equal(other Signature) bool {
	return slices.Equal(s.FromTables, other.FromTables) &&
		slices.Equal(s.JoinTables, other.JoinTables) &&
		s.WhereCondition == other.WhereCondition &&
		slices.Equal(s.GroupBy, other.GroupBy) &&
		slices.Equal(s.OrderBy, other.OrderBy)
}

// Hash returns the hex sha256 of the signature's Key. It identifies the
// signature in persistent storage.
func (s Signature) Hash() string {
	sum := sha256.Sum256([]byte(s.Key()))
	return hex.EncodeToString(sum[:])
}

// Digest returns a short stable hex digest of the signature, the first 16
// characters of Hash. It is for display and may collide.
func (s Signature) Digest() string {
	return s.Hash()[:16]
}

func (s Signature) String() string {
	return fmt.Sprintf("from=%q join=%q where=%q group_by=%q order_by=%q",
		s.FromTables, s.JoinTables, s.WhereCondition, s.GroupBy, s.OrderBy)
}
