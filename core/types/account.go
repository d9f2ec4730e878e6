package types

// Account is one ledger entry in the settlement store. Balances are
// denominated in the marketplace's single base unit and are tracked as
// unsigned 64-bit integers to match the escrowed amounts on bounty records.
type Account struct {
	Nonce   uint64 `json:"nonce"`
	Balance uint64 `json:"balance"`
}

// Clone returns a copy of the account so callers can mutate it without
// affecting the stored instance.
func (a *Account) Clone() *Account {
	if a == nil {
		return &Account{}
	}
	clone := *a
	return &clone
}
