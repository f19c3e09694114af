package token

import "github.com/WillShirley13/testudo-bonds/crypto"

// Mint describes a fungible asset. Only the authority may create new supply.
type Mint struct {
	Authority crypto.Address
	Decimals  uint8
	Supply    uint64
}

// Account holds a balance of a single mint on behalf of Owner.
type Account struct {
	Mint   crypto.Address
	Owner  crypto.Address
	Amount uint64
}

func mintKey(addr crypto.Address) []byte {
	return append([]byte("token/mint/"), addr[:]...)
}

func accountKey(addr crypto.Address) []byte {
	return append([]byte("token/account/"), addr[:]...)
}
