// Package routepath holds the notes service URL paths.
package routepath

const (
	Root   = "/"
	Health = "/healthz"
)
