package seed

// manager derives seeds on demand and keeps nothing between calls
type manager struct{}

// NewManager creates a new SeedManager
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager() Manager {
	return manager{}
}

// Seed converts mnemonic to seed using PBKDF2 (BIP39 standard).
// Every call runs the full derivation and returns a fresh slice the caller owns.
func (manager) Seed(mnemonic string, passphrase string) ([]byte, error) {
	return FromMnemonic(mnemonic, passphrase)
}
