package trie

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/WillShirley13/testudo-bonds/storage"
)

func TestCommittedRecordsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.NewLevelDB(dir)
	require.NoError(t, err)

	tr, err := NewTrie(db, nil)
	require.NoError(t, err)
	require.Equal(t, gethtypes.EmptyRootHash, tr.Root())

	key := crypto.Keccak256Hash([]byte("position"))
	require.NoError(t, tr.Update(key.Bytes(), []byte("record")))
	root, err := tr.Commit(common.Hash{}, 1)
	require.NoError(t, err)
	require.Equal(t, root, tr.Root())
	db.Close()

	db, err = storage.NewLevelDB(dir)
	require.NoError(t, err)
	defer db.Close()
	reopened, err := NewTrie(db, root.Bytes())
	require.NoError(t, err)
	got, err := reopened.Get(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, []byte("record"), got)
}

func TestRollbackDropsUncommittedChanges(t *testing.T) {
	tr, err := NewTrie(storage.NewMemDB(), nil)
	require.NoError(t, err)

	key := crypto.Keccak256Hash([]byte("owner"))
	require.NoError(t, tr.Update(key.Bytes(), []byte{1}))
	first, err := tr.Commit(common.Hash{}, 1)
	require.NoError(t, err)

	require.NoError(t, tr.Update(key.Bytes(), []byte{2}))
	require.NotEqual(t, first, tr.Hash())
	require.NoError(t, tr.Rollback())
	require.Equal(t, first, tr.Hash())

	require.NoError(t, tr.Delete(key.Bytes()))
	got, err := tr.Get(key.Bytes())
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, tr.Rollback())
	got, err = tr.Get(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, []byte{1}, got)
}
