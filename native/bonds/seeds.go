package bonds

import "github.com/WillShirley13/testudo-bonds/crypto"

var (
	configSeed   = []byte("global_admin")
	ownerSeed    = []byte("user")
	positionSeed = []byte("bond")
)

// ConfigSeeds are the derivation seeds of the configuration record.
func ConfigSeeds() [][]byte {
	return [][]byte{configSeed}
}

// OwnerSeeds are the derivation seeds of wallet's owner record.
func OwnerSeeds(wallet crypto.Address) [][]byte {
	return [][]byte{ownerSeed, wallet.Bytes()}
}

// PositionSeeds are the derivation seeds of the position at index under the
// owner record address.
func PositionSeeds(owner crypto.Address, index uint8) [][]byte {
	return [][]byte{positionSeed, owner.Bytes(), {index}}
}

// ConfigAddress derives the configuration record address.
func ConfigAddress(program crypto.Address) (crypto.Address, uint8, error) {
	return crypto.FindAddress(ConfigSeeds(), program)
}

// OwnerAddress derives wallet's owner record address.
func OwnerAddress(program, wallet crypto.Address) (crypto.Address, uint8, error) {
	return crypto.FindAddress(OwnerSeeds(wallet), program)
}

// PositionAddress derives the position record address for index.
func PositionAddress(program, owner crypto.Address, index uint8) (crypto.Address, uint8, error) {
	return crypto.FindAddress(PositionSeeds(owner, index), program)
}

// RewardsPoolAddress is the configuration record's associated value account.
func RewardsPoolAddress(program, mint crypto.Address) (crypto.Address, error) {
	cfg, _, err := ConfigAddress(program)
	if err != nil {
		return crypto.Address{}, err
	}
	return crypto.AssociatedAddress(cfg, mint)
}
