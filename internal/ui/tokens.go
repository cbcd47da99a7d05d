package ui

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jamesatomc/token/internal/contract"
)

// TokenTable renders records as a table. mine marks rows the connected
// account owns and may be nil.
func TokenTable(records []*contract.Record, mine func(*contract.Record) bool) *Table {
	t := NewTable([]Column{
		{Title: "Symbol", Width: 10},
		{Title: "Name", Width: 20},
		{Title: "Supply", Width: 18},
		{Title: "Fee", Width: 7},
		{Title: "Address", Width: 13},
		{Title: "Creator", Width: 13},
		{Title: "", Width: 5},
	})
	for _, r := range records {
		flag := ""
		if mine != nil && mine(r) {
			flag = StyleSuccess.Render("owner")
		}
		fee := "-"
		if r.HasFee() {
			fee = r.FeePercentage()
		}
		creator := "-"
		if r.Creator != (common.Address{}) {
			creator = TruncateAddr(r.Creator.Hex())
		}
		t.AddRow(Row{
			r.Symbol,
			r.Name,
			r.FormattedSupply(),
			fee,
			TruncateAddr(r.Address.Hex()),
			creator,
			flag,
		})
	}
	return t
}

// TokenPairs lists a record's fields for KeyValueBlock. owner reports
// whether the connected account owns the token; explorer builds links and
// may return "".
func TokenPairs(r *contract.Record, owner bool, explorer func(addr string) string) [][2]string {
	link := func(addr string) string {
		if u := explorer(addr); u != "" {
			return addr + "  " + Meta(u)
		}
		return addr
	}

	ownerVal := r.Owner.Hex()
	if owner {
		ownerVal = "You (" + ownerVal + ")"
	}

	pairs := [][2]string{
		{"Name", r.Name},
		{"Symbol", r.Symbol},
		{"Address", link(r.Address.Hex())},
		{"Decimals", fmt.Sprintf("%d", r.Decimals)},
		{"Total supply", r.FormattedSupply() + " " + r.Symbol},
		{"Owner", ownerVal},
	}
	if r.Balance != nil {
		pairs = append(pairs, [2]string{"Your balance", r.FormattedBalance() + " " + r.Symbol})
	}
	if r.LogoURL != "" {
		pairs = append(pairs, [2]string{"Logo URL", r.LogoURL})
	}
	fee := "none"
	if r.HasFee() {
		fee = r.FeePercentage() + " to " + r.FeeCollector.Hex()
	}
	pairs = append(pairs, [2]string{"Transfer fee", fee})
	return pairs
}

// TokenItems turns records into picker entries valued by address.
func TokenItems(records []*contract.Record) []PickerItem {
	items := make([]PickerItem, 0, len(records))
	for _, r := range records {
		items = append(items, PickerItem{
			Label:    fmt.Sprintf("%s  %s", r.Symbol, r.Name),
			SubLabel: r.Address.Hex(),
			Value:    r.Address.Hex(),
		})
	}
	return items
}
