// Package subpkg exposes a sample constant.
//
//sophia:export Message hidden
package subpkg

// Message exposes a sample constant.
const Message = "hello"

// hidden is invisible by default but exported via the directive.
const hidden = "shh"

// Skipped is exported in Go but absent from the export list.
const Skipped = "nope"
