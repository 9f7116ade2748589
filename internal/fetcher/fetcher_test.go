package fetcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/internal/xerrors"
)

type fakeChain struct {
	mu          sync.Mutex
	calls       int
	utxos       []model.RawUTXO
	utxoErr     error
	virtualDAA  uint64
	virtualErr  error
}

func (f *fakeChain) GetUTXOs(ctx context.Context, address string) ([]model.RawUTXO, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.utxoErr != nil {
		return nil, f.utxoErr
	}
	return f.utxos, nil
}

func (f *fakeChain) GetVirtualDAAScore(ctx context.Context) (uint64, error) {
	if f.virtualErr != nil {
		return 0, f.virtualErr
	}
	return f.virtualDAA, nil
}

func newTestFetcher(chain ChainClient) *Fetcher {
	return New(chain, time.Minute, 10, zap.NewNop())
}

func TestFetchEnrichesAndCaches(t *testing.T) {
	chain := &fakeChain{
		virtualDAA: 100,
		utxos: []model.RawUTXO{
			{
				Outpoint:  model.Outpoint{TransactionID: "a", Index: 0},
				UTXOEntry: model.UTXOEntry{Amount: "500", BlockDAAScore: "50"},
			},
		},
	}
	f := newTestFetcher(chain)

	got, err := f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 50, got[0].Metadata.AgeInBlocks)
	assert.False(t, got[0].Metadata.IsFresh)

	_, err = f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	require.NoError(t, err)
	assert.Equal(t, 1, chain.calls, "second fetch should hit cache, not the chain")
}

func TestFetchFiltersMalformedUTXOs(t *testing.T) {
	chain := &fakeChain{
		utxos: []model.RawUTXO{
			{Outpoint: model.Outpoint{TransactionID: "a"}, UTXOEntry: model.UTXOEntry{Amount: "100"}},
			{Outpoint: model.Outpoint{}, UTXOEntry: model.UTXOEntry{Amount: "100"}},
		},
	}
	f := newTestFetcher(chain)

	got, err := f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchDegradesVirtualScoreOnFailure(t *testing.T) {
	chain := &fakeChain{
		virtualErr: errors.New("boom"),
		utxos: []model.RawUTXO{
			{Outpoint: model.Outpoint{TransactionID: "a"}, UTXOEntry: model.UTXOEntry{Amount: "100", BlockDAAScore: "5"}},
		},
	}
	f := newTestFetcher(chain)

	got, err := f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 0, got[0].Metadata.AgeInBlocks)
	assert.True(t, got[0].Metadata.IsFresh)
}

func TestFetchFailsAfterRetriesExhausted(t *testing.T) {
	chain := &fakeChain{utxoErr: errors.New("upstream down")}
	f := newTestFetcher(chain)

	_, err := f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	require.Error(t, err)
	var fetchErr *xerrors.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Attempts)
}

func TestForceRefreshBypassesCache(t *testing.T) {
	chain := &fakeChain{utxos: []model.RawUTXO{
		{Outpoint: model.Outpoint{TransactionID: "a"}, UTXOEntry: model.UTXOEntry{Amount: "1"}},
	}}
	f := newTestFetcher(chain)

	_, err := f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "addr1", model.Mainnet, true)
	require.NoError(t, err)
	assert.Equal(t, 2, chain.calls)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	chain := &fakeChain{utxos: []model.RawUTXO{
		{Outpoint: model.Outpoint{TransactionID: "a"}, UTXOEntry: model.UTXOEntry{Amount: "1"}},
	}}
	f := newTestFetcher(chain)

	_, _ = f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	f.Invalidate("addr1", model.Mainnet)
	_, _ = f.Fetch(context.Background(), "addr1", model.Mainnet, false)
	assert.Equal(t, 2, chain.calls)
}

func TestConcurrentForcedFetchesAllSucceed(t *testing.T) {
	chain := &fakeChain{utxos: []model.RawUTXO{
		{Outpoint: model.Outpoint{TransactionID: "a"}, UTXOEntry: model.UTXOEntry{Amount: "1"}},
	}}
	f := newTestFetcher(chain)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Fetch(context.Background(), "addr1", model.Mainnet, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
