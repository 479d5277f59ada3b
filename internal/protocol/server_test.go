package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aeromatch/internal/metrics"
)

func newTestServer(t *testing.T) *GRPCServer {
	t.Helper()
	s, err := NewGRPCServer(
		EngineParams{MinTick: 900, MaxTick: 1100, ExpectedOrders: 16, MaxOrderID: 1000},
		"BTC-USD", 0, 4*1024*1024, 10, metrics.GetCollector(),
	)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s
}

func TestServerSubmitCancelReplace(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.Submit(ctx, &SubmitRequest{Instrument: "BTC-USD", OrderID: 1, Side: SideBuy, Price: 995, Qty: 10})
	require.NoError(t, err)
	require.Equal(t, ResultFullyRested, resp.Result)

	cancelResp, err := s.Cancel(ctx, &CancelRequest{Instrument: "BTC-USD", OrderID: 1})
	require.NoError(t, err)
	require.True(t, cancelResp.Success)

	cancelResp, err = s.Cancel(ctx, &CancelRequest{Instrument: "BTC-USD", OrderID: 1})
	require.NoError(t, err)
	require.False(t, cancelResp.Success)
}

func TestServerReplaceCrosses(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, &SubmitRequest{Instrument: "BTC-USD", OrderID: 40, Side: SideBuy, Price: 995, Qty: 10})
	require.NoError(t, err)
	_, err = s.Submit(ctx, &SubmitRequest{Instrument: "BTC-USD", OrderID: 41, Side: SideSell, Price: 1000, Qty: 4})
	require.NoError(t, err)

	replaceResp, err := s.Replace(ctx, &ReplaceRequest{Instrument: "BTC-USD", OrderID: 40, NewPrice: 1001, NewQty: 6})
	require.NoError(t, err)
	require.True(t, replaceResp.Success)
	require.Equal(t, ResultPartiallyRested, replaceResp.Result)
}

func TestServerRejectsWrongInstrument(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, &SubmitRequest{Instrument: "ETH-USD", OrderID: 1, Side: SideBuy, Price: 1000, Qty: 1})
	require.Error(t, err)
}

func TestServerStartStopJoinsSpreadLoop(t *testing.T) {
	// newTestServer registers Stop via t.Cleanup; Start here and let that
	// cleanup exercise the spread-loop shutdown path exactly once.
	s := newTestServer(t)
	s.Start()
}

func TestServerRejectsNonPositiveQuantityBeforeTouchingEngine(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Submit(ctx, &SubmitRequest{Instrument: "BTC-USD", OrderID: 1, Side: SideBuy, Price: 1000, Qty: 0})
	require.Error(t, err)

	// The rejected submit must never have reached the engine.
	require.Equal(t, 0, s.engine.LiveOrders())
}
