package core

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// RecentCommitWindow is how many commit headers a transaction may reference.
// Older references are stale and must be re-signed against a newer commit.
const RecentCommitWindow = 150

var (
	ErrStaleCommit          = errors.New("executor: unknown or expired recent commit")
	ErrDuplicateTransaction = errors.New("executor: transaction already processed")
)

// replayGuard remembers the recent commit hashes a transaction may anchor to
// and the transactions already processed against each of them. Commit hashes
// cover the height, so an anchor that leaves the window never becomes valid
// again and its processed set can be dropped with it.
type replayGuard struct {
	limit     int
	order     []common.Hash
	processed map[common.Hash]map[common.Hash]struct{}
}

func newReplayGuard(limit int, anchor common.Hash) *replayGuard {
	if limit <= 0 {
		limit = 1
	}
	g := &replayGuard{
		limit:     limit,
		processed: make(map[common.Hash]map[common.Hash]struct{}),
	}
	g.advance(anchor)
	return g
}

// latest returns the newest anchor.
func (g *replayGuard) latest() common.Hash {
	return g.order[len(g.order)-1]
}

// advance appends a new anchor and expires the oldest beyond the window.
func (g *replayGuard) advance(anchor common.Hash) {
	if _, ok := g.processed[anchor]; ok {
		return
	}
	g.order = append(g.order, anchor)
	g.processed[anchor] = make(map[common.Hash]struct{})
	for len(g.order) > g.limit {
		delete(g.processed, g.order[0])
		g.order = g.order[1:]
	}
}

// check fails when anchor is outside the window or txHash was already
// processed against it.
func (g *replayGuard) check(anchor, txHash common.Hash) error {
	seen, ok := g.processed[anchor]
	if !ok {
		return ErrStaleCommit
	}
	if _, dup := seen[txHash]; dup {
		return ErrDuplicateTransaction
	}
	return nil
}

func (g *replayGuard) record(anchor, txHash common.Hash) {
	if seen, ok := g.processed[anchor]; ok {
		seen[txHash] = struct{}{}
	}
}
