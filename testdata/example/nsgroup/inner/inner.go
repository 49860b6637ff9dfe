// Package inner sits beneath a namespace directory.
package inner

// Answer is the canonical number.
const Answer = 42
