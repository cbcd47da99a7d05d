package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrReverted is returned when a mined transaction has status 0.
var ErrReverted = errors.New("transaction reverted")

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

// Log is one event log emitted by a transaction.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
	Index   uint64
}

// Receipt holds the on-chain receipt of a mined transaction.
type Receipt struct {
	TxHash          common.Hash
	Status          uint64 // 1 = success, 0 = reverted
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress common.Address
	Logs            []Log
}

// Fees is a fee suggestion for an EIP-1559 transaction.
type Fees struct {
	GasPrice *big.Int
	BaseFee  *big.Int // nil on pre-London chains
}

// TipCap returns the priority fee to offer.
func (f Fees) TipCap() *big.Int {
	return new(big.Int).Set(f.GasPrice)
}

// FeeCap returns the max fee per gas: 2*baseFee + tip, or 2*gasPrice when
// the chain reports no base fee.
func (f Fees) FeeCap() *big.Int {
	if f.BaseFee == nil {
		return new(big.Int).Mul(f.GasPrice, big.NewInt(2))
	}
	fc := new(big.Int).Mul(f.BaseFee, big.NewInt(2))
	return fc.Add(fc, f.GasPrice)
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// URL returns the endpoint the client talks to.
func (c *EVMClient) URL() string { return c.url }

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (int64, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_chainId"); err != nil {
		return 0, err
	}
	id, ok := parseBigHex(hexStr)
	if !ok {
		return 0, fmt.Errorf("could not parse chain id: %s", hexStr)
	}
	return id.Int64(), nil
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_blockNumber"); err != nil {
		return 0, err
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return 0, fmt.Errorf("could not parse block number: %s", hexStr)
	}
	return n.Uint64(), nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// CallContract executes a read-only call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, from *common.Address, to common.Address, data []byte) ([]byte, error) {
	params := map[string]string{
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}
	if from != nil {
		params["from"] = from.Hex()
	}
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", params, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas estimates gas for a transaction.
func (c *EVMClient) EstimateGas(ctx context.Context, from common.Address, to *common.Address, data []byte, value *big.Int) (uint64, error) {
	params := map[string]string{"from": from.Hex()}
	if to != nil {
		params["to"] = to.Hex()
	}
	if len(data) > 0 {
		params["data"] = hexutil.Encode(data)
	}
	if value != nil && value.Sign() > 0 {
		params["value"] = hexutil.EncodeBig(value)
	}
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_estimateGas", params, "latest"); err != nil {
		return 0, err
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return 0, fmt.Errorf("could not parse gas estimate: %s", hexStr)
	}
	return n.Uint64(), nil
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_gasPrice"); err != nil {
		return nil, err
	}
	gp, ok := parseBigHex(hexStr)
	if !ok {
		return nil, fmt.Errorf("could not parse gas price: %s", hexStr)
	}
	return gp, nil
}

// SuggestFees fetches the gas price and, when available, the latest base fee.
func (c *EVMClient) SuggestFees(ctx context.Context) (Fees, error) {
	gp, err := c.GasPrice(ctx)
	if err != nil {
		return Fees{}, err
	}
	fees := Fees{GasPrice: gp}

	var head *struct {
		BaseFeePerGas string `json:"baseFeePerGas"`
	}
	if err := c.call(ctx, &head, "eth_getBlockByNumber", "latest", false); err == nil && head != nil {
		if bf, ok := parseBigHex(head.BaseFeePerGas); ok {
			fees.BaseFee = bf
		}
	}
	return fees, nil
}

// PendingNonce returns the transaction count including pending transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	var hexStr string
	if err := c.call(ctx, &hexStr, "eth_getTransactionCount", address.Hex(), "pending"); err != nil {
		return 0, err
	}
	n, ok := parseBigHex(hexStr)
	if !ok {
		return 0, fmt.Errorf("could not parse pending nonce: %s", hexStr)
	}
	return n.Uint64(), nil
}

// SendRawTransaction broadcasts a signed raw transaction.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var r *rawReceipt
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash.Hex()); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	return r.toReceipt(hash), nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A reverted transaction returns its receipt together with ErrReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*Receipt, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if receipt.Status == 0 {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// --- internal JSON-RPC plumbing ---

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// IsRevert reports whether the node rejected the call because the EVM reverted.
func (e *RPCError) IsRevert() bool {
	return e.Code == 3 || strings.Contains(strings.ToLower(e.Message), "revert")
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (c *EVMClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}

type rawLog struct {
	Address  common.Address `json:"address"`
	Topics   []common.Hash  `json:"topics"`
	Data     hexutil.Bytes  `json:"data"`
	LogIndex string         `json:"logIndex"`
}

type rawReceipt struct {
	Status          string          `json:"status"`
	BlockNumber     string          `json:"blockNumber"`
	GasUsed         string          `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress"`
	Logs            []rawLog        `json:"logs"`
}

func (r *rawReceipt) toReceipt(hash common.Hash) *Receipt {
	receipt := &Receipt{TxHash: hash}
	if r.ContractAddress != nil {
		receipt.ContractAddress = *r.ContractAddress
	}
	if s, ok := parseBigHex(r.Status); ok {
		receipt.Status = s.Uint64()
	}
	if bn, ok := parseBigHex(r.BlockNumber); ok {
		receipt.BlockNumber = bn.Uint64()
	}
	if gu, ok := parseBigHex(r.GasUsed); ok {
		receipt.GasUsed = gu.Uint64()
	}
	for _, l := range r.Logs {
		entry := Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
		if idx, ok := parseBigHex(l.LogIndex); ok {
			entry.Index = idx.Uint64()
		}
		receipt.Logs = append(receipt.Logs, entry)
	}
	return receipt
}

func parseBigHex(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	return n, ok
}
