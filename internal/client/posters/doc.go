// Package posters builds the pool of poster image URLs used to decorate
// catalog items.
//
// Candidates under BasePath are probed in a fixed order, the result is
// cached in persisted state under a versioned key, and a curated remote
// list stands in when nothing can be found.
package posters
