package state

var (
	accountPrefix = []byte("account/")
	kvPrefix      = []byte("kv/")
)
