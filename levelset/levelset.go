// Package levelset tracks the contiguously-numbered SSTable files living in
// one level directory, adapted from the corpus's rotating segment-file
// bookkeeping (numbered log segments there, numbered table files here).
package levelset

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/zhangyunhao116/skipset"

	"lsmgo/lsmerr"
)

var tableFilePattern = regexp.MustCompile(`^(\d+)\.data$`)

// Paths names the three companion files that make up one numbered table.
type Paths struct {
	Data, Index, Bloom string
}

// LevelSet tracks which table numbers exist under one level directory.
type LevelSet struct {
	dir  string
	nums *skipset.OrderedSetFunc[int]
	next int
}

// Open scans dir for existing table files, validates that their numbers
// form a contiguous run starting at 0, and returns a LevelSet ready to
// serve lookups or accept a new table.
func Open(dir string) (*LevelSet, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("levelset: create %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("levelset: read %s: %w", dir, err)
	}

	var found []int
	for _, e := range entries {
		m := tableFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, n)
	}
	sort.Ints(found)
	if err := validateContiguous(found); err != nil {
		return nil, err
	}

	less := func(a, b int) bool { return a < b }
	nums := skipset.NewFunc[int](less)
	for _, n := range found {
		nums.Add(n)
	}

	return &LevelSet{dir: dir, nums: nums, next: len(found)}, nil
}

func validateContiguous(sortedNums []int) error {
	for i, n := range sortedNums {
		if n != i {
			return fmt.Errorf("%w: expected table %d, found %d", lsmerr.ErrNonContiguous, i, n)
		}
	}
	return nil
}

// Len reports how many tables currently exist.
func (ls *LevelSet) Len() int { return ls.nums.Len() }

// PathsFor returns the companion-file paths for table number n, whether or
// not that table currently exists.
func (ls *LevelSet) PathsFor(n int) Paths {
	base := filepath.Join(ls.dir, strconv.Itoa(n))
	return Paths{Data: base + ".data", Index: base + ".idx", Bloom: base + ".bloom"}
}

// Next returns the paths a freshly built table should be written to. It
// does not reserve the number; call Commit once the table is durable.
func (ls *LevelSet) Next() Paths {
	return ls.PathsFor(ls.next)
}

// NextNumber returns the table number Next's paths correspond to.
func (ls *LevelSet) NextNumber() int {
	return ls.next
}

// Commit records that table number n now exists on disk.
func (ls *LevelSet) Commit(n int) {
	ls.nums.Add(n)
	if n+1 > ls.next {
		ls.next = n + 1
	}
}

// Numbers returns every existing table number, newest first.
func (ls *LevelSet) Numbers() []int {
	out := make([]int, 0, ls.nums.Len())
	ls.nums.Range(func(n int) bool {
		out = append(out, n)
		return true
	})
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// NumbersAscending returns every existing table number, oldest first.
func (ls *LevelSet) NumbersAscending() []int {
	out := ls.Numbers()
	sort.Ints(out)
	return out
}

// Reset deletes every table file in the directory and returns the set to
// empty, used by compaction to clear level 0 after a merge.
func (ls *LevelSet) Reset() error {
	entries, err := os.ReadDir(ls.dir)
	if err != nil {
		return fmt.Errorf("levelset: read %s: %w", ls.dir, err)
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(ls.dir, e.Name())); err != nil {
			return fmt.Errorf("levelset: remove %s: %w", e.Name(), err)
		}
	}
	less := func(a, b int) bool { return a < b }
	ls.nums = skipset.NewFunc[int](less)
	ls.next = 0
	return nil
}
