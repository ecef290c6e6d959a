// Package ptbr provides string comparison under Brazilian Portuguese
// collation rules. Team and system names carry accented characters, and the
// matrix ordering contract is locale-aware ("É" sorts next to "E", not after
// "Z"), so ordinal byte comparison is not an option anywhere in this repo.
package ptbr

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collate.Collator carries an internal buffer and is not safe for concurrent
// use, so the shared instance is guarded by a mutex. Comparisons are cheap
// relative to the handler work around them.
var (
	mu  sync.Mutex
	col = collate.New(language.BrazilianPortuguese)
)

// Compare returns -1, 0, or +1 per pt-BR collation order.
func Compare(a, b string) int {
	mu.Lock()
	defer mu.Unlock()
	return col.CompareString(a, b)
}

// Less reports whether a sorts before b under pt-BR collation.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}
