// Package match ranks names by similarity, to suggest the field a
// misspelled path segment most likely meant.
package match
