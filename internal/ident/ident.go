// Package ident allocates process-unique table identifiers.
//
// Every generated table lives in the process-wide code registry under a name,
// so freshly created tables need names that cannot collide with each other or
// with caller-chosen ones. Allocate digests a fresh UUID together with a
// monotonic process-local counter and renders the result under a reserved
// prefix that ordinary caller-supplied names are expected to avoid.
package ident

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Prefix is the reserved namespace for allocated identifiers. Caller-supplied
// table names should not start with it.
const Prefix = "fling_"

var counter atomic.Uint64

// Allocate returns a fresh identifier of the form "fling_<32 hex chars>".
// The 128-bit body digests a random UUID, the wall clock, and a process-local
// counter, which keeps the collision probability negligible over a process
// lifetime. It never fails and has no side effect beyond consuming entropy.
func Allocate() string {
	u := uuid.New()

	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(tail[8:], counter.Add(1))

	hi := xxhash.Sum64(u[:])
	lo := xxhash.Sum64(append(u[:], tail[:]...))
	return fmt.Sprintf("%s%016x%016x", Prefix, hi, lo)
}

// IsAllocated reports whether name sits in the reserved namespace, i.e. was
// produced by Allocate rather than chosen by a caller.
func IsAllocated(name string) bool {
	return strings.HasPrefix(name, Prefix)
}
