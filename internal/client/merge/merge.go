// Package merge reconciles a local collection with a freshly pulled remote
// snapshot.
package merge

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
)

// Policy decides what happens to a pending local edit of a record the remote
// also has.
type Policy int

const (
	// RemoteWins keeps the remote copy; the pending local edit is lost.
	RemoteWins Policy = iota
	// KeepLocalPending keeps the local edit in the remote's position and
	// leaves it pending so the next push sends it.
	KeepLocalPending
)

func (p Policy) String() string {
	switch p {
	case RemoteWins:
		return "remote-wins"
	case KeepLocalPending:
		return "keep-local"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "remote-wins":
		return RemoteWins, nil
	case "keep-local":
		return KeepLocalPending, nil
	}
	return RemoteWins, fmt.Errorf("unknown merge policy %q", s)
}

// Result is the merged collection plus counters for logging.
type Result[T models.Record] struct {
	Records []T
	// Carried counts pending local records the remote did not know about.
	Carried int
	// Superseded counts pending local records replaced by the remote copy.
	Superseded int
	// Kept counts pending local records kept over the remote copy.
	Kept int
	// Dropped counts synced local records absent from the remote.
	Dropped int
}

// Merge starts from remote verbatim and prepends, in local order, every
// unsynced local record whose id the remote does not have. Synced local
// records missing from remote are dropped.
func Merge[T models.Record](local, remote []T, policy Policy) Result[T] {
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		remoteIDs[r.Key()] = struct{}{}
	}

	var res Result[T]
	var carried []T
	pendingKnown := make(map[string]T)

	for _, l := range local {
		_, known := remoteIDs[l.Key()]
		switch {
		case !l.Synced() && !known:
			carried = append(carried, l)
		case !l.Synced() && known:
			if policy == KeepLocalPending {
				pendingKnown[l.Key()] = l
				res.Kept++
			} else {
				res.Superseded++
			}
		case l.Synced() && !known:
			res.Dropped++
		}
	}

	res.Carried = len(carried)
	res.Records = make([]T, 0, len(carried)+len(remote))
	res.Records = append(res.Records, carried...)
	for _, r := range remote {
		if l, ok := pendingKnown[r.Key()]; ok {
			res.Records = append(res.Records, l)
			continue
		}
		res.Records = append(res.Records, r)
	}
	return res
}
