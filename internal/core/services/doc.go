// Package services implements the driving port interfaces.
//
// The extraction pipeline runs precondition check, mirror sync, reference
// load, record load, merge and write in that order. Station importers reuse
// its output (or the French registry) to feed the station store.
//
// Services depend only on domain and the port interfaces.
package services
