package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmasken/kaspa402/internal/model"
)

func TestSetThenGetHits(t *testing.T) {
	c := New()
	utxos := []model.EnrichedUTXO{{Outpoint: model.Outpoint{TransactionID: "a"}}}
	c.Set("addr1", model.Mainnet, utxos, time.Minute)

	got, ok := c.Get("addr1", model.Mainnet)
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestGetMissOnColdKey(t *testing.T) {
	c := New()
	_, ok := c.Get("nobody", model.Mainnet)
	assert.False(t, ok)
}

func TestGetMissAfterTTLExpiry(t *testing.T) {
	c := New()
	c.Set("addr1", model.Mainnet, []model.EnrichedUTXO{{}}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("addr1", model.Mainnet)
	assert.False(t, ok)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c := New()
	c.Set("addr1", model.Mainnet, []model.EnrichedUTXO{{}}, time.Minute)
	c.Invalidate("addr1", model.Mainnet)

	_, ok := c.Get("addr1", model.Mainnet)
	assert.False(t, ok)
}

func TestClearRemovesEverything(t *testing.T) {
	c := New()
	c.Set("addr1", model.Mainnet, []model.EnrichedUTXO{{}}, time.Minute)
	c.Set("addr2", model.Mainnet, []model.EnrichedUTXO{{}}, time.Minute)
	c.Clear()
	assert.EqualValues(t, 0, c.Size())
}

func TestSeparateNetworksDoNotCollide(t *testing.T) {
	c := New()
	c.Set("addr1", model.Mainnet, []model.EnrichedUTXO{{Outpoint: model.Outpoint{TransactionID: "m"}}}, time.Minute)
	c.Set("addr1", model.Testnet, []model.EnrichedUTXO{{Outpoint: model.Outpoint{TransactionID: "t"}}}, time.Minute)

	mainnet, _ := c.Get("addr1", model.Mainnet)
	testnet, _ := c.Get("addr1", model.Testnet)
	assert.Equal(t, "m", mainnet[0].Outpoint.TransactionID)
	assert.Equal(t, "t", testnet[0].Outpoint.TransactionID)
}

func TestCleanupReportsAndRemovesExpired(t *testing.T) {
	c := New()
	c.Set("addr1", model.Mainnet, []model.EnrichedUTXO{{}}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	removed := c.Cleanup()
	assert.EqualValues(t, 1, removed)
	assert.EqualValues(t, 0, c.Size())
}

func TestStatsCountsExpiredWithoutRemoving(t *testing.T) {
	c := New()
	c.Set("addr1", model.Mainnet, []model.EnrichedUTXO{{}}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Size)
	assert.EqualValues(t, 1, stats.Expired)
}
