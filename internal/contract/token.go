package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jamesatomc/token/internal/provider"
	"github.com/jamesatomc/token/internal/units"
)

// Record is a token snapshot for display. It is fetched fresh on each view
// and never cached.
type Record struct {
	Address                common.Address
	Name                   string
	Symbol                 string
	Decimals               uint8
	TotalSupply            *big.Int
	Creator                common.Address
	Owner                  common.Address
	LogoURL                string
	TransferFeeBasisPoints *big.Int
	FeeCollector           common.Address
	Balance                *big.Int // nil unless a holder was requested
}

// FormattedSupply renders TotalSupply in whole tokens.
func (r *Record) FormattedSupply() string {
	return units.FormatUnits(r.TotalSupply, int(r.Decimals))
}

// FormattedBalance renders Balance in whole tokens.
func (r *Record) FormattedBalance() string {
	return units.FormatUnits(r.Balance, int(r.Decimals))
}

// FeePercentage renders the transfer fee, e.g. "1.5%".
func (r *Record) FeePercentage() string {
	return units.FormatPercentage(r.TransferFeeBasisPoints)
}

// HasFee reports whether a non-zero transfer fee is set.
func (r *Record) HasFee() bool {
	return r.TransferFeeBasisPoints != nil && r.TransferFeeBasisPoints.Sign() > 0
}

// Token is a typed client for a factory-deployed token.
type Token struct {
	*Caller
	log zerolog.Logger
}

// NewToken binds the token at address.
func NewToken(p provider.Provider, address common.Address) *Token {
	return &Token{Caller: newCaller(p, address, tokenContract), log: zerolog.Nop()}
}

// WithLogger returns t logging through l.
func (t *Token) WithLogger(l zerolog.Logger) *Token {
	t.log = l.With().Str("component", "token").Str("token", t.address.Hex()).Logger()
	return t
}

func (t *Token) Name(ctx context.Context) (string, error) {
	return callOne[string](ctx, t.Caller, "name")
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	return callOne[string](ctx, t.Caller, "symbol")
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	return callOne[uint8](ctx, t.Caller, "decimals")
}

func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, t.Caller, "totalSupply")
}

func (t *Token) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return callOne[*big.Int](ctx, t.Caller, "balanceOf", holder)
}

func (t *Token) LogoURL(ctx context.Context) (string, error) {
	return callOne[string](ctx, t.Caller, "logoURL")
}

// TransferFeePercentage returns the fee in basis points.
func (t *Token) TransferFeePercentage(ctx context.Context) (*big.Int, error) {
	return callOne[*big.Int](ctx, t.Caller, "transferFeePercentage")
}

func (t *Token) FeeCollector(ctx context.Context) (common.Address, error) {
	return callOne[common.Address](ctx, t.Caller, "feeCollector")
}

func (t *Token) Owner(ctx context.Context) (common.Address, error) {
	return callOne[common.Address](ctx, t.Caller, "owner")
}

// Record reads every field concurrently. Name, symbol, decimals and total
// supply are required. The logo, fee, fee collector and owner fall back to
// zero values when the token does not expose them. The holder balance is
// read only for a non-zero holder.
func (t *Token) Record(ctx context.Context, holder common.Address) (*Record, error) {
	r := &Record{
		Address:                t.address,
		TransferFeeBasisPoints: new(big.Int),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { r.Name, err = t.Name(gctx); return })
	g.Go(func() (err error) { r.Symbol, err = t.Symbol(gctx); return })
	g.Go(func() (err error) { r.Decimals, err = t.Decimals(gctx); return })
	g.Go(func() (err error) { r.TotalSupply, err = t.TotalSupply(gctx); return })
	if holder != (common.Address{}) {
		g.Go(func() (err error) { r.Balance, err = t.BalanceOf(gctx, holder); return })
	}

	optional := func(field string, read func() error) {
		g.Go(func() error {
			if err := read(); err != nil {
				err = fmt.Errorf("%s: %w: %w", field, provider.ErrFieldUnavailable, err)
				t.log.Debug().Err(err).Str("field", field).Msg("optional field unavailable")
			}
			return nil
		})
	}
	optional("logoURL", func() (err error) {
		v, err := t.LogoURL(gctx)
		if err == nil {
			r.LogoURL = v
		}
		return err
	})
	optional("transferFeePercentage", func() (err error) {
		v, err := t.TransferFeePercentage(gctx)
		if err == nil {
			r.TransferFeeBasisPoints = v
		}
		return err
	})
	optional("feeCollector", func() (err error) {
		v, err := t.FeeCollector(gctx)
		if err == nil {
			r.FeeCollector = v
		}
		return err
	})
	optional("owner", func() (err error) {
		v, err := t.Owner(gctx)
		if err == nil {
			r.Owner = v
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateLogoURL sets a new logo URL. Owner only.
func (t *Token) UpdateLogoURL(ctx context.Context, url string) (*Submission, error) {
	return t.transact(ctx, "updateLogoURL", strings.TrimSpace(url))
}

// SetTransferFeePercentage sets the fee in basis points. Owner only.
func (t *Token) SetTransferFeePercentage(ctx context.Context, bp *big.Int) (*Submission, error) {
	return t.transact(ctx, "setTransferFeePercentage", bp)
}

// SetFeeCollector sets the fee recipient. Owner only.
func (t *Token) SetFeeCollector(ctx context.Context, collector common.Address) (*Submission, error) {
	return t.transact(ctx, "setFeeCollector", collector)
}
