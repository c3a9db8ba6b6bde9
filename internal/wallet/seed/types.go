package seed

// Manager turns BIP-39 mnemonics into seeds. Implementations hold no seed material,
// so one Manager can serve concurrent derivations.
type Manager interface {
	// Seed returns the 64-byte seed for mnemonic and passphrase, validating the mnemonic first
	Seed(mnemonic string, passphrase string) ([]byte, error)
}
