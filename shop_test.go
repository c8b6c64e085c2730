package flagship

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRate struct {
	rate Rate
	err  error
}

func (f fixedRate) LatestRate(context.Context) (Rate, error) { return f.rate, f.err }

type echoAdvisor struct {
	mu     sync.Mutex
	prompt string
}

func (a *echoAdvisor) Advise(_ context.Context, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompt = prompt
	return "  sell more phones\n", nil
}

// startShop opens and runs a shop until the test ends.
func startShop(t *testing.T, store Store, opts Options) *Shop {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return t0 }
	}
	shop, err := Open(context.Background(), store, opts)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- shop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return shop
}

func TestShop_Dispatch(t *testing.T) {
	ctx := context.Background()
	store := &MemStore{}
	shop := startShop(t, store, Options{})

	st, err := shop.Dispatch(ctx, newIPhone("a", 300))
	require.NoError(t, err)
	assert.Len(t, st.Devices, 1)

	saved, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Len(t, saved.Devices, 1, "the snapshot is saved")

	st, err = shop.Dispatch(ctx, DeleteDevice{DeviceID: "zz"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, st.Devices, 1, "the state is unchanged")
}

func TestShop_RefreshOnStart(t *testing.T) {
	ctx := context.Background()
	shop := startShop(t, &MemStore{}, Options{Rates: fixedRate{rate: R(12650)}})

	require.Eventually(t, func() bool {
		st, err := shop.Snapshot(ctx)
		return err == nil && st.ExchangeRate.Equal(R(12650))
	}, time.Second, 5*time.Millisecond)

	st, err := shop.RefreshRate(ctx)
	require.NoError(t, err)
	assert.True(t, st.BuyRate.Equal(R(12610)))
	assert.True(t, st.SellRate.Equal(R(12690)))
}

func TestShop_FailuresBecomeNotices(t *testing.T) {
	ctx := context.Background()
	shop := startShop(t, &MemStore{}, Options{
		Rates:  fixedRate{err: errors.New("rates unreachable")},
		Remote: &memBlobs{fail: errors.New("remote unreachable")},
	})

	require.Eventually(t, func() bool { return len(shop.Notices()) > 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "rates", shop.Notices()[0].Source)

	err := shop.Push(ctx)
	assert.Error(t, err)
	notices := shop.Notices()
	last := notices[len(notices)-1]
	assert.Equal(t, "sync", last.Source)
	assert.Contains(t, last.Message, "remote unreachable")
	assert.Equal(t, t0, last.At)

	st, err := shop.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, st.ExchangeRate.Equal(DefaultExchangeRate), "state is kept")
}

func TestShop_AutoSync(t *testing.T) {
	ctx := context.Background()
	blobs := &memBlobs{}
	shop := startShop(t, &MemStore{}, Options{Remote: blobs, AutoSyncDelay: 20 * time.Millisecond})

	_, err := shop.Dispatch(ctx, ConfigureSync{Settings: SyncSettings{AutoSync: true}})
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err := shop.Dispatch(ctx, newIPhone(id, 100))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		st, err := shop.Snapshot(ctx)
		return err == nil && st.SyncSettings.BlobKey != ""
	}, time.Second, 5*time.Millisecond)

	// give a second push, if any, the time to happen
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, blobs.len(), "changes are pushed once")
	st, err := shop.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "blob-1", st.SyncSettings.BlobKey)
	assert.Equal(t, "2025-03-14T10:30:00Z", st.SyncSettings.LastSync)
}

// countingStore counts the snapshots written to a MemStore.
type countingStore struct {
	MemStore
	mu   sync.Mutex
	puts int
}

func (s *countingStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.MemStore.Put(ctx, key, data)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func TestShop_UnchangedRateIsNotAnEdit(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{}
	saved := mustApply(t, NewState(), UpdateRate{Rate: R(12650)}, ConfigureSync{Settings: SyncSettings{AutoSync: true}})
	require.NoError(t, Save(ctx, store, saved))
	blobs := &memBlobs{}
	shop := startShop(t, store, Options{
		Rates:         fixedRate{rate: R(12650)},
		Remote:        blobs,
		AutoSyncDelay: 20 * time.Millisecond,
	})

	st, err := shop.RefreshRate(ctx)
	require.NoError(t, err)
	assert.True(t, st.ExchangeRate.Equal(R(12650)))
	st, err = shop.RefreshRate(ctx)
	require.NoError(t, err)
	assert.True(t, st.SellRate.Equal(saved.SellRate))

	// leave the debounce timer the time to fire, if it was started
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, blobs.writeCount(), "an unchanged rate is not pushed")
	assert.Equal(t, 1, store.count(), "an unchanged rate is not saved")

	_, err = shop.Dispatch(ctx, SetCash{Amount: USD(10)})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return blobs.writeCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestShop_PushPull(t *testing.T) {
	ctx := context.Background()
	blobs := &memBlobs{}
	shop := startShop(t, &MemStore{}, Options{Remote: blobs})

	_, err := shop.Dispatch(ctx, newIPhone("a", 300))
	require.NoError(t, err)
	require.NoError(t, shop.Push(ctx))

	_, err = shop.Dispatch(ctx, DeleteDevice{DeviceID: "a"})
	require.NoError(t, err)
	st, err := shop.Pull(ctx, "")
	require.NoError(t, err)
	assert.Len(t, st.Devices, 1, "the pushed state is back")
	assert.Equal(t, "blob-1", st.SyncSettings.BlobKey)
}

func TestShop_Advise(t *testing.T) {
	ctx := context.Background()
	advisor := &echoAdvisor{}
	shop := startShop(t, &MemStore{}, Options{Advisor: advisor})
	_, err := shop.Dispatch(ctx, SetPreferences{Language: English})
	require.NoError(t, err)

	text, err := shop.Advise(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sell more phones", text)
	assert.True(t, strings.HasSuffix(advisor.prompt, "Answer in English, as plain text."), advisor.prompt)

	shop = startShop(t, &MemStore{}, Options{})
	_, err = shop.Advise(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestShop_Closed(t *testing.T) {
	shop, err := Open(context.Background(), &MemStore{}, Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shop.Run(ctx))

	_, err = shop.Dispatch(context.Background(), SetCash{Amount: USD(1)})
	assert.ErrorIs(t, err, ErrClosed)
}
