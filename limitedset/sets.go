// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package limitedset

import (
	"sort"
)

// LimitedSet - an ordered set of numbers holding at most 'size' items
//
// when full the smallest numbers are discarded, so the set is a
// sliding window over the most recent (largest) values
//
// not safe for concurrent use, the owner must serialise access
type LimitedSet struct {
	size  int
	items []uint64 // kept in ascending order
}

// New - create a new limited set that holds up to 'n' items
func New(n int) *LimitedSet {
	if n <= 0 {
		n = 1
	}
	return &LimitedSet{
		size:  n,
		items: make([]uint64, 0, n+1),
	}
}

// find the insertion position of n
func (ls *LimitedSet) search(n uint64) int {
	return sort.Search(len(ls.items), func(i int) bool {
		return ls.items[i] >= n
	})
}

// Add - add an item, evicting the smallest items if over the limit
//
// returns false if the item was already present
func (ls *LimitedSet) Add(n uint64) bool {
	i := ls.search(n)
	if i < len(ls.items) && n == ls.items[i] {
		return false
	}
	ls.items = append(ls.items, 0)
	copy(ls.items[i+1:], ls.items[i:])
	ls.items[i] = n

	if excess := len(ls.items) - ls.size; excess > 0 {
		ls.items = append(ls.items[:0], ls.items[excess:]...)
	}
	return true
}

// Exists - check to see if item is in the set
func (ls *LimitedSet) Exists(n uint64) bool {
	i := ls.search(n)
	return i < len(ls.items) && n == ls.items[i]
}

// Remove - delete an item, returns false if it was not present
func (ls *LimitedSet) Remove(n uint64) bool {
	i := ls.search(n)
	if i >= len(ls.items) || n != ls.items[i] {
		return false
	}
	ls.items = append(ls.items[:i], ls.items[i+1:]...)
	return true
}

// Retain - remove every item for which keep returns false
func (ls *LimitedSet) Retain(keep func(uint64) bool) {
	j := 0
	for _, n := range ls.items {
		if keep(n) {
			ls.items[j] = n
			j += 1
		}
	}
	ls.items = ls.items[:j]
}

// Items - copy of the items in ascending order
func (ls *LimitedSet) Items() []uint64 {
	result := make([]uint64, len(ls.items))
	copy(result, ls.items)
	return result
}

// Count - number of items in the set
func (ls *LimitedSet) Count() int {
	return len(ls.items)
}

// Limit - maximum number of items
func (ls *LimitedSet) Limit() int {
	return ls.size
}

// Clear - remove all items
func (ls *LimitedSet) Clear() {
	ls.items = ls.items[:0]
}
