// Package file provides the TOML configuration store kept in the user's
// config directory (~/.ocm-extractor by default).
package file
