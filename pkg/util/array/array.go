// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package array provides index arithmetic over element arrays.
package array

// Fill assigns v to every element of s. Assignment is element-wise: the
// representation of v is never assumed to be a repeated byte pattern.
// Complexity: O(len(s)).
func Fill[T any](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}

// At returns the address of the i-th element of s. It panics if i is out of
// range, like an index expression.
func At[T any](s []T, i int) *T {
	return &s[i]
}

// Offset returns the byte offset of the element at index in an array of
// elements of elemSize bytes.
func Offset(elemSize, index uintptr) uintptr {
	return elemSize * index
}
