package service

import (
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// keyGenerator hands out strictly increasing millisecond tokens. When the clock
// has not advanced (or went backwards) the previous token plus one is used.
type keyGenerator struct {
	now  func() time.Time
	last atomic.Int64
}

func newKeyGenerator(now func() time.Time) *keyGenerator {
	return &keyGenerator{now: now}
}

func (g *keyGenerator) next() int64 {
	for {
		prev := g.last.Load()
		ts := g.now().UnixMilli()
		if ts <= prev {
			ts = prev + 1
		}
		if g.last.CompareAndSwap(prev, ts) {
			return ts
		}
	}
}

// StorageKey builds "<token>-<name>" where name is the base of filename with every
// whitespace run collapsed to "_".
func StorageKey(token int64, filename string) string {
	return strconv.FormatInt(token, 10) + "-" + sanitizeFilename(filename)
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}
