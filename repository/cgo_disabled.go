//go:build !cgo

package repository

// CGOEnabled reports whether the sqlite backend is usable. go-sqlite3
// needs cgo; sqlite tests skip without it.
const CGOEnabled = false
