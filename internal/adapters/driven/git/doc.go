// Package git maintains the local mirror with the git command-line tool.
//
// Tool shells out to git for each step of a sparse, shallow clone. State
// inspects and resets the working tree on disk. Runs against one mirror root
// must be serialised by the caller.
package git
