package contract

// The token factory deploys ERC-20 tokens with an optional transfer fee and
// an explicit or implicit (caller) recipient for the initial supply.
//
// Function selectors are listed by `minttoken abi factory`.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "factory",
		Name:        "Token Factory",
		Description: "Deploys fee-capable ERC-20 tokens and indexes them by creator.",
		ABI:         factoryABI,
	})
}

var (
	paramString  = ABIParam{Name: "", Type: "string"}
	paramAddress = ABIParam{Name: "", Type: "address"}
	paramUint256 = ABIParam{Name: "", Type: "uint256"}
)

func named(p ABIParam, name string) ABIParam {
	p.Name = name
	return p
}

var factoryABI = []ABIEntry{
	// ── Create ───────────────────────────────────────────────────────────────
	{
		Name: "createToken", Type: "function",
		Inputs: []ABIParam{
			named(paramString, "name"), named(paramString, "symbol"), named(paramUint256, "initialSupply"),
			named(paramString, "logoURL"), named(paramAddress, "recipient"),
		},
		Outputs:         []ABIParam{paramAddress},
		StateMutability: "nonpayable",
	},
	{
		Name: "createTokenWithSelf", Type: "function",
		Inputs: []ABIParam{
			named(paramString, "name"), named(paramString, "symbol"), named(paramUint256, "initialSupply"),
			named(paramString, "logoURL"),
		},
		Outputs:         []ABIParam{paramAddress},
		StateMutability: "nonpayable",
	},
	{
		Name: "createTokenWithFee", Type: "function",
		Inputs: []ABIParam{
			named(paramString, "name"), named(paramString, "symbol"), named(paramUint256, "initialSupply"),
			named(paramString, "logoURL"), named(paramUint256, "feePercentage"), named(paramAddress, "feeCollector"),
			named(paramAddress, "recipient"),
		},
		Outputs:         []ABIParam{paramAddress},
		StateMutability: "nonpayable",
	},
	{
		Name: "createTokenWithFeeToSelf", Type: "function",
		Inputs: []ABIParam{
			named(paramString, "name"), named(paramString, "symbol"), named(paramUint256, "initialSupply"),
			named(paramString, "logoURL"), named(paramUint256, "feePercentage"), named(paramAddress, "feeCollector"),
		},
		Outputs:         []ABIParam{paramAddress},
		StateMutability: "nonpayable",
	},
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "getTokenCount", Type: "function",
		Outputs:         []ABIParam{paramUint256},
		StateMutability: "view",
	},
	{
		Name: "getTokensByCreator", Type: "function",
		Inputs:          []ABIParam{named(paramAddress, "creator")},
		Outputs:         []ABIParam{{Name: "", Type: "address[]"}},
		StateMutability: "view",
	},
	{
		Name: "getTokensPaginated", Type: "function",
		Inputs:          []ABIParam{named(paramUint256, "start"), named(paramUint256, "limit")},
		Outputs:         []ABIParam{{Name: "", Type: "address[]"}},
		StateMutability: "view",
	},
	{
		Name: "tokenInfo", Type: "function",
		Inputs: []ABIParam{paramAddress},
		Outputs: []ABIParam{
			named(paramString, "name"), named(paramString, "symbol"), named(paramAddress, "creator"),
			{Name: "exists", Type: "bool"},
		},
		StateMutability: "view",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "TokenCreated", Type: "event",
		Inputs: []ABIParam{
			named(paramAddress, "tokenAddress"), named(paramString, "name"), named(paramString, "symbol"),
			named(paramUint256, "initialSupply"), named(paramAddress, "creator"), named(paramAddress, "recipient"),
		},
	},
}
