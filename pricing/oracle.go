package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// getPrice(address) function selector.
const getPriceSelector = "0x41976e09"

// OracleSource reads a rate oracle contract over JSON-RPC eth_call.
// The oracle returns (price, decimals); HTTPClient may be injected with
// httptest for tests.
type OracleSource struct {
	SourceName string
	Endpoint   string
	Oracle     string // oracle contract address
	Tier       int
	HTTPClient *http.Client
}

// NewDefaultHTTPClient returns an http.Client with a conservative timeout.
// Per-call deadlines still come from the caller's ctx.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func (o *OracleSource) Name() string   { return o.SourceName }
func (o *OracleSource) TrustTier() int { return o.Tier }

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch performs eth_call against the oracle contract for token.
func (o *OracleSource) Fetch(ctx context.Context, token string, chainID int64) (Quote, error) {
	if o == nil || o.HTTPClient == nil {
		return Quote{}, fmt.Errorf("%w: http client not set", ErrUnavailable)
	}

	callData := getPriceSelector + padAddress(token)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []interface{}{
			map[string]string{"to": o.Oracle, "data": callData},
			"latest",
		},
	})
	if err != nil {
		return Quote{}, fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Quote{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Quote{}, fmt.Errorf("%w: rpc status %d", ErrUnavailable, resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return Quote{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if rr.Error != nil {
		return Quote{}, fmt.Errorf("%w: rpc error %d %s", ErrUnavailable, rr.Error.Code, rr.Error.Message)
	}

	price, err := decodePriceResult(rr.Result)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Token:      token,
		ChainID:    chainID,
		Price:      price,
		ObservedAt: time.Now().UTC(),
		Source:     o.SourceName,
		TrustTier:  o.Tier,
	}, nil
}

// decodePriceResult parses the two ABI words (price, decimals) returned
// by the oracle into a decimal price.
func decodePriceResult(result string) (decimal.Decimal, error) {
	hexData := strings.TrimPrefix(result, "0x")
	if len(hexData) < 128 {
		return decimal.Decimal{}, fmt.Errorf("%w: short oracle result", ErrUnavailable)
	}

	rawPrice, ok := new(big.Int).SetString(hexData[:64], 16)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: bad price word", ErrUnavailable)
	}
	rawDecimals, ok := new(big.Int).SetString(hexData[64:128], 16)
	if !ok || !rawDecimals.IsInt64() || rawDecimals.Int64() > 77 {
		return decimal.Decimal{}, fmt.Errorf("%w: bad decimals word", ErrUnavailable)
	}
	if rawPrice.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive oracle price", ErrUnavailable)
	}

	return decimal.NewFromBigInt(rawPrice, -int32(rawDecimals.Int64())), nil
}

func padAddress(addr string) string {
	a := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	return strings.Repeat("0", 64-len(a)) + a
}
