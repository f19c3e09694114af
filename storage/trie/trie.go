package trie

import (
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	gethtrie "github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/trie/trienode"
	"github.com/ethereum/go-ethereum/triedb"

	"github.com/WillShirley13/testudo-bonds/storage"
)

// Trie is the authenticated key/value store holding ledger records. Keys must
// already be keccak256 hashes. Mutations stay in memory until Commit; Rollback
// drops them.
//
// Trie is not safe for concurrent use.
type Trie struct {
	nodes   *triedb.Database
	current *gethtrie.Trie
	root    common.Hash
}

// NewTrie opens the trie at root over store. A nil or empty root opens the
// empty trie.
func NewTrie(store storage.Database, root []byte) (*Trie, error) {
	t := &Trie{nodes: store.TrieDB()}
	at := gethtypes.EmptyRootHash
	if len(root) > 0 {
		at = common.BytesToHash(root)
	}
	if err := t.open(at); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Trie) open(root common.Hash) error {
	current, err := gethtrie.New(gethtrie.TrieID(root), t.nodes)
	if err != nil {
		return err
	}
	t.current = current
	t.root = root
	return nil
}

// Get returns the value at key, or nil when it is absent.
func (t *Trie) Get(key []byte) ([]byte, error) { return t.current.Get(key) }

func (t *Trie) Update(key, value []byte) error { return t.current.Update(key, value) }

// Delete removes key. Missing keys are ignored.
func (t *Trie) Delete(key []byte) error { return t.current.Delete(key) }

// Hash is the root including uncommitted mutations.
func (t *Trie) Hash() common.Hash { return t.current.Hash() }

// Root is the last committed root.
func (t *Trie) Root() common.Hash { return t.root }

// Rollback drops uncommitted mutations.
func (t *Trie) Rollback() error { return t.open(t.root) }

// Commit flushes pending nodes to the node database under height and returns
// the new root. parent is the root the commit builds on.
func (t *Trie) Commit(parent common.Hash, height uint64) (common.Hash, error) {
	root, nodes := t.current.Commit(false)
	if nodes != nil {
		set := trienode.NewMergedNodeSet()
		if err := set.Merge(nodes); err != nil {
			return common.Hash{}, err
		}
		if err := t.nodes.Update(root, parent, height, set, nil); err != nil {
			return common.Hash{}, err
		}
		if err := t.nodes.Commit(root, false); err != nil {
			return common.Hash{}, err
		}
	}
	if err := t.open(root); err != nil {
		return common.Hash{}, err
	}
	return root, nil
}
