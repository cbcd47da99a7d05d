package contract

// Tokens deployed by the factory: ERC-20 reads plus a logo URL and an
// owner-controlled transfer fee expressed in basis points.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "token",
		Name:        "Factory Token (ERC-20 + logo + transfer fee)",
		Description: "ERC-20 with logoURL, transferFeePercentage (basis points) and feeCollector, owner-managed.",
		ABI:         tokenABI,
	})
}

var tokenABI = []ABIEntry{
	// ── ERC-20 read ──────────────────────────────────────────────────────────
	{Name: "name", Type: "function", Outputs: []ABIParam{paramString}, StateMutability: "view"},
	{Name: "symbol", Type: "function", Outputs: []ABIParam{paramString}, StateMutability: "view"},
	{Name: "decimals", Type: "function", Outputs: []ABIParam{{Type: "uint8"}}, StateMutability: "view"},
	{Name: "totalSupply", Type: "function", Outputs: []ABIParam{paramUint256}, StateMutability: "view"},
	{
		Name: "balanceOf", Type: "function",
		Inputs:          []ABIParam{named(paramAddress, "account")},
		Outputs:         []ABIParam{paramUint256},
		StateMutability: "view",
	},
	// ── Extensions ───────────────────────────────────────────────────────────
	{Name: "logoURL", Type: "function", Outputs: []ABIParam{paramString}, StateMutability: "view"},
	{Name: "transferFeePercentage", Type: "function", Outputs: []ABIParam{paramUint256}, StateMutability: "view"},
	{Name: "feeCollector", Type: "function", Outputs: []ABIParam{paramAddress}, StateMutability: "view"},
	{Name: "owner", Type: "function", Outputs: []ABIParam{paramAddress}, StateMutability: "view"},
	// ── Owner write ──────────────────────────────────────────────────────────
	{
		Name: "updateLogoURL", Type: "function",
		Inputs:          []ABIParam{named(paramString, "newLogoURL")},
		StateMutability: "nonpayable",
	},
	{
		Name: "setTransferFeePercentage", Type: "function",
		Inputs:          []ABIParam{named(paramUint256, "newFeePercentage")},
		StateMutability: "nonpayable",
	},
	{
		Name: "setFeeCollector", Type: "function",
		Inputs:          []ABIParam{named(paramAddress, "newFeeCollector")},
		StateMutability: "nonpayable",
	},
}
