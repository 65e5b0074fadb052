// namer.go provides generators of sequentially numbered names for labels and anonymous values.

package util

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Namer generates names by appending a monotonically increasing counter to a fixed prefix.
type Namer struct {
	prefix string // String literal prefix of generated names.
	next   int    // Numerical suffix of the next generated name.
}

// ---------------------
// ----- Constants -----
// ---------------------

// Name prefixes for anonymous values.
const (
	PrefixBlock    = "BB_"
	PrefixArgument = "$ARG_"
	PrefixRegLocal = "$REG_"
	PrefixIndLocal = "$IND_"
	PrefixTmpLocal = "$TMP_"
)

// ---------------------
// ----- functions -----
// ---------------------

// NewNamer returns a Namer generating names with the given prefix, starting at zero.
func NewNamer(prefix string) *Namer {
	return &Namer{prefix: prefix}
}

// Next returns a new name.
func (n *Namer) Next() string {
	s := n.Name(n.next)
	n.next++
	return s
}

// Name returns the name with suffix i without advancing the counter.
func (n *Namer) Name(i int) string {
	return fmt.Sprintf("%s%d", n.prefix, i)
}
