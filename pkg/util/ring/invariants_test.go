// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package ring

import "github.com/cockroachdb/errors"

// checkInvariants returns an error if the internal state of the list is
// inconsistent.
func (l *VectorList[T]) checkInvariants() error {
	switch {
	case l.length < 0 || l.length > len(l.data):
		return errors.AssertionFailedf("length %d outside [0, %d]", l.length, len(l.data))
	case l.length == 0:
		if l.head != 0 || l.tail != 0 {
			return errors.AssertionFailedf("empty list with head=%d tail=%d", l.head, l.tail)
		}
		return nil
	case l.head < 0 || l.head >= len(l.data) || l.tail < 0 || l.tail >= len(l.data):
		return errors.AssertionFailedf("head=%d tail=%d outside storage of %d", l.head, l.tail, len(l.data))
	}
	n := 1
	for p := l.head; p != l.tail; p = l.successor(p) {
		n++
	}
	if n != l.length {
		return errors.AssertionFailedf("head=%d tail=%d span %d elements, length is %d",
			l.head, l.tail, n, l.length)
	}
	if l.length == len(l.data) && l.successor(l.tail) != l.head {
		return errors.AssertionFailedf("full list with successor(tail)=%d != head=%d",
			l.successor(l.tail), l.head)
	}
	return nil
}
