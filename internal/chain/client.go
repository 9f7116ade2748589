// Package chain talks to the Kaspa REST API (api.kaspa.org and its testnet
// mirror): raw UTXO listing and virtual DAA score, nothing else.
package chain

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/guonaihong/gout"

	"github.com/cosmasken/kaspa402/internal/model"
)

const requestTimeout = 10 * time.Second

// Client is a thin REST client over a single Kaspa network's public API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client for network. baseURLOverride, when non-empty (e.g.
// from KASPA_API_BASE_URL), replaces the network's default REST base URL —
// useful for pointing at a local devnet mirror without changing network.
func New(network model.Network, baseURLOverride string) (*Client, error) {
	baseURL := baseURLOverride
	if baseURL == "" {
		var err error
		baseURL, err = network.BaseURL()
		if err != nil {
			return nil, err
		}
	}
	dialer := &net.Dialer{Timeout: requestTimeout}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				// api.kaspa.org occasionally resolves an AAAA record with
				// no route from CI/container networks; force IPv4 so a
				// dead v6 path never eats the whole timeout budget.
				DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
					return dialer.DialContext(ctx, "tcp4", addr)
				},
			},
		},
	}, nil
}

type utxoEntryWire struct {
	Amount          string `json:"amount"`
	ScriptPublicKey struct {
		Version uint16 `json:"version"`
		Script  string `json:"scriptPublicKey"`
	} `json:"scriptPublicKey"`
	BlockDaaScore string `json:"blockDaaScore"`
	IsCoinbase    bool   `json:"isCoinbase"`
}

// utxoOutpointWire decodes index as a pointer so a payload that omits
// "index" outright can be told apart from a legitimate index 0.
type utxoOutpointWire struct {
	TransactionID string  `json:"transactionId"`
	Index         *uint32 `json:"index"`
}

type addressUTXOWire struct {
	Address      string          `json:"address"`
	Outpoint     utxoOutpointWire `json:"outpoint"`
	UTXOEntry    utxoEntryWire    `json:"utxoEntry"`
}

// GetUTXOs fetches every raw UTXO currently sitting at address.
func (c *Client) GetUTXOs(ctx context.Context, address string) ([]model.RawUTXO, error) {
	var wire []addressUTXOWire
	url := fmt.Sprintf("%s/addresses/%s/utxos", c.baseURL, address)
	if err := gout.New(c.http).GET(url).WithContext(ctx).BindJSON(&wire).Do(); err != nil {
		return nil, fmt.Errorf("chain: get utxos for %s: %w", address, err)
	}

	out := make([]model.RawUTXO, 0, len(wire))
	for _, w := range wire {
		var index uint32
		if w.Outpoint.Index != nil {
			index = *w.Outpoint.Index
		}
		out = append(out, model.RawUTXO{
			Outpoint: model.Outpoint{
				TransactionID: w.Outpoint.TransactionID,
				Index:         index,
			},
			UTXOEntry: model.UTXOEntry{
				Amount: w.UTXOEntry.Amount,
				ScriptPublicKey: model.ScriptPublicKey{
					Version: w.UTXOEntry.ScriptPublicKey.Version,
					Script:  w.UTXOEntry.ScriptPublicKey.Script,
				},
				BlockDAAScore: w.UTXOEntry.BlockDaaScore,
				IsCoinbase:    w.UTXOEntry.IsCoinbase,
			},
			IndexMissing: w.Outpoint.Index == nil,
		})
	}
	return out, nil
}

type blockDAGWire struct {
	VirtualDAAScore string `json:"virtualDaaScore"`
}

// GetVirtualDAAScore fetches the network's current virtual DAA score, the
// reference point UTXO ages are computed against.
func (c *Client) GetVirtualDAAScore(ctx context.Context) (uint64, error) {
	var wire blockDAGWire
	url := fmt.Sprintf("%s/info/blockdag", c.baseURL)
	if err := gout.New(c.http).GET(url).WithContext(ctx).BindJSON(&wire).Do(); err != nil {
		return 0, fmt.Errorf("chain: get virtual daa score: %w", err)
	}
	score, err := strconv.ParseUint(wire.VirtualDAAScore, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chain: parse virtual daa score %q: %w", wire.VirtualDAAScore, err)
	}
	return score, nil
}
