// Package model defines the value records shared across nodefinder packages.
//
// Records are treated as immutable once constructed: producers build a fresh
// value and consumers never mutate slices they did not allocate.
package model
