package transfer

// Asset describes a transferable asset on the target network. A zero Contract
// means the network's native currency.
type Asset struct {
	Symbol   string
	Decimals int
	Contract string
}

// Assets the service knows how to move on base-sepolia.
var (
	ETH = Asset{Symbol: "ETH", Decimals: 18}

	USDC = Asset{
		Symbol:   "USDC",
		Decimals: 6,
		Contract: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
	}
)

// Native reports whether the asset is the network's native currency.
func (a Asset) Native() bool {
	return a.Contract == ""
}
