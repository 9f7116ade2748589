// Package fetcher implements the UTXO core's C2: cache-first retrieval,
// single-flight coalescing, retrying REST calls, and raw-to-enriched
// conversion.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cosmasken/kaspa402/internal/cache"
	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/internal/xerrors"
)

// ChainClient is the subset of internal/chain's Client the fetcher needs.
// Declared here, not in internal/chain, so this package depends only on the
// method shapes it actually uses.
type ChainClient interface {
	GetUTXOs(ctx context.Context, address string) ([]model.RawUTXO, error)
	GetVirtualDAAScore(ctx context.Context) (uint64, error)
}

const (
	retryAttempts = 3
	retryBaseMs   = 1000
)

// Fetcher owns the cache and the single-flight map for one chain client.
type Fetcher struct {
	chain            ChainClient
	cache            *cache.Cache
	cacheExpiry      time.Duration
	minUTXOAgeBlocks uint64
	sf               singleflight.Group
	log              *zap.Logger
}

func New(chain ChainClient, cacheExpiry time.Duration, minUTXOAgeBlocks uint64, log *zap.Logger) *Fetcher {
	return &Fetcher{
		chain:            chain,
		cache:            cache.New(),
		cacheExpiry:      cacheExpiry,
		minUTXOAgeBlocks: minUTXOAgeBlocks,
		log:              log,
	}
}

func sfKey(address string, network model.Network) string {
	return fmt.Sprintf("%s:%s", network, address)
}

// Fetch returns the enriched UTXO set for address, reading from cache unless
// forceRefresh is set or the cache is cold. Concurrent callers for the same
// (address, network) coalesce onto a single upstream fetch.
func (f *Fetcher) Fetch(ctx context.Context, address string, network model.Network, forceRefresh bool) ([]model.EnrichedUTXO, error) {
	if !forceRefresh {
		if cached, ok := f.cache.Get(address, network); ok {
			f.log.Debug("fetcher cache hit", zap.String("address", address))
			return cached, nil
		}
	}
	f.log.Debug("fetcher cache miss", zap.String("address", address))

	result, err, shared := f.sf.Do(sfKey(address, network), func() (interface{}, error) {
		return f.fetchAndEnrich(ctx, address, network)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.log.Debug("fetcher single-flight coalesced", zap.String("address", address))
	}
	return result.([]model.EnrichedUTXO), nil
}

func (f *Fetcher) fetchAndEnrich(ctx context.Context, address string, network model.Network) ([]model.EnrichedUTXO, error) {
	var raw []model.RawUTXO
	var virtualScore uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var attempt int
		var fetchErr error
		fetchErr = retry.Do(
			func() error {
				attempt++
				var err error
				raw, err = f.chain.GetUTXOs(gctx, address)
				return err
			},
			retry.Attempts(retryAttempts),
			retry.Delay(retryBaseMs*time.Millisecond),
			retry.DelayType(retry.BackOffDelay),
		)
		if fetchErr != nil {
			return &xerrors.FetchError{Attempts: attempt, Cause: fetchErr}
		}
		return nil
	})
	g.Go(func() error {
		score, err := f.chain.GetVirtualDAAScore(gctx)
		if err != nil {
			f.log.Warn("virtual DAA score fetch failed, degrading to 0", zap.Error(err))
			virtualScore = 0
			return nil
		}
		virtualScore = score
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	enriched := make([]model.EnrichedUTXO, 0, len(raw))
	for _, r := range raw {
		if !r.Valid() {
			continue
		}
		enriched = append(enriched, f.Enrich(r, virtualScore))
	}

	f.cache.Set(address, network, enriched, f.cacheExpiry)
	return enriched, nil
}

// Enrich converts one raw UTXO into its enriched form given the chain's
// current virtual DAA score. Exported so a raw UTXO can be enriched without a
// live fetch; within this module only fetchAndEnrich calls it.
func (f *Fetcher) Enrich(raw model.RawUTXO, virtualScore uint64) model.EnrichedUTXO {
	amount, _ := decimalFromSompi(raw.UTXOEntry.Amount)
	blockScore, _ := parseUint64(raw.UTXOEntry.BlockDAAScore)
	age := model.AgeInBlocks(virtualScore, blockScore)

	return model.EnrichedUTXO{
		Outpoint:        raw.Outpoint,
		Amount:          amount,
		ScriptPublicKey: raw.UTXOEntry.ScriptPublicKey,
		BlockDAAScore:   blockScore,
		IsCoinbase:      raw.UTXOEntry.IsCoinbase,
		Metadata: model.Metadata{
			FetchedAtMs:               model.NowMs(),
			AgeInBlocks:               age,
			IsFresh:                   model.IsFresh(age, f.minUTXOAgeBlocks),
			EstimatedMassContribution: model.EstimatedMassContributionBytes,
		},
	}
}

// CurrentVirtualScore fetches the chain's current virtual DAA score,
// returning "0" rather than an error on failure per the degrade-gracefully
// contract also used inside fetchAndEnrich.
func (f *Fetcher) CurrentVirtualScore(ctx context.Context) string {
	score, err := f.chain.GetVirtualDAAScore(ctx)
	if err != nil {
		f.log.Warn("current virtual score fetch failed, returning 0", zap.Error(err))
		return "0"
	}
	return fmt.Sprintf("%d", score)
}

func (f *Fetcher) Invalidate(address string, network model.Network) {
	f.cache.Invalidate(address, network)
}

func (f *Fetcher) Clear() {
	f.cache.Clear()
}

func (f *Fetcher) CacheStats() cache.Stats {
	return f.cache.Stats()
}
