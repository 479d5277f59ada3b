package protocol

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aeromatch/internal/engine"
	"github.com/aeromatch/internal/metrics"
	"github.com/aeromatch/internal/models"
)

// GRPCServer is the gRPC boundary around a single engine.Engine instance.
// Grounded on aeromatch's internal/protocol/grpc_server.go (listener setup,
// shutdownWg-based graceful stop) but adapted to this engine's
// single-instrument, single-threaded contract: every RPC takes mu before
// touching the engine, since the engine itself is never made
// concurrency-safe (spec §5) and grpc-go dispatches each request on its
// own goroutine.
type GRPCServer struct {
	instrument string

	mu     sync.Mutex
	engine *engine.Engine

	server     *grpc.Server
	listener   net.Listener
	shutdownWg sync.WaitGroup

	metrics *metrics.Collector

	subsMu   sync.Mutex
	subs     map[int]chan *TradeEvent
	nextSub  int
	tradeSeq uint64

	depthLevels  int
	spreadStopCh chan struct{}
	spreadDone   chan struct{}
}

// EngineParams bundles the construction hints NewEngine needs; the server
// owns the engine it matches against, so it builds it internally with
// itself installed as the TradeSink (see OnTrade/OnOrderClosed below).
// The engine can never be fully constructed before its sink exists, so
// the sink and the engine are created together here rather than the
// engine being passed in already built.
type EngineParams struct {
	MinTick, MaxTick int32
	ExpectedOrders   int
	MaxOrderID       uint64
}

// NewGRPCServer builds a GRPCServer listening on port, constructing its own
// engine.Engine over params with itself as the TradeSink, and publishing
// per-call counters to mc. depthLevels sizes the periodic Depth() read
// Start uses to publish the best-bid/best-ask spread gauge.
func NewGRPCServer(params EngineParams, instrument string, port, maxMessageSize, depthLevels int, mc *metrics.Collector) (*GRPCServer, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
	)

	if depthLevels <= 0 {
		depthLevels = 1
	}

	s := &GRPCServer{
		instrument:  instrument,
		server:      srv,
		listener:    lis,
		metrics:     mc,
		subs:        make(map[int]chan *TradeEvent),
		depthLevels: depthLevels,
	}

	eng, err := engine.NewEngine(params.MinTick, params.MaxTick, params.ExpectedOrders, params.MaxOrderID, s)
	if err != nil {
		return nil, err
	}
	s.engine = eng

	RegisterMatchingServer(srv, s)
	return s, nil
}

// Start begins serving gRPC requests on a background goroutine, plus a
// second goroutine that periodically publishes the current spread.
func (s *GRPCServer) Start() {
	s.shutdownWg.Add(1)
	go func() {
		defer s.shutdownWg.Done()
		_ = s.server.Serve(s.listener)
	}()

	s.spreadStopCh = make(chan struct{})
	s.spreadDone = make(chan struct{})
	go s.publishSpreadLoop()
}

// publishSpreadLoop samples the book's best bid/ask on a fixed interval and
// reports it through metrics.Collector.SetSpread, per spec's depth-levels
// sizing hint (cfg.Engine.DepthLevels). A pull-only read of engine.Depth,
// same contract depth.go documents for any periodic publisher.
func (s *GRPCServer) publishSpreadLoop() {
	defer close(s.spreadDone)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			snap := s.engine.Depth(s.depthLevels)
			s.mu.Unlock()
			spread, ok := snap.Spread()
			s.metrics.SetSpread(spread, ok)
		case <-s.spreadStopCh:
			return
		}
	}
}

// Stop gracefully drains in-flight RPCs and waits for Serve to return.
func (s *GRPCServer) Stop() {
	s.server.GracefulStop()
	s.shutdownWg.Wait()
	if s.spreadStopCh != nil {
		close(s.spreadStopCh)
		<-s.spreadDone
	}
	s.subsMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

// Addr returns the listener's bound address, useful in tests that bind to
// port 0.
func (s *GRPCServer) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *GRPCServer) checkInstrument(instrument string) error {
	if instrument != s.instrument {
		return status.Errorf(codes.InvalidArgument, "unknown instrument %q, this service matches %q", instrument, s.instrument)
	}
	return nil
}

// Submit builds and validates a models.Order from the wire request before
// ever translating it into the engine's minimal Order tuple; the engine
// performs its own independent checks and remains the final authority
// (see models.Order.Validate), but malformed input is rejected at the
// boundary rather than shipped across it.
func (s *GRPCServer) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	if err := s.checkInstrument(req.Instrument); err != nil {
		return nil, err
	}

	mo := models.Order{
		ID:         req.OrderID,
		Side:       modelSide(req.Side),
		Price:      req.Price,
		Qty:        req.Qty,
		Instrument: req.Instrument,
		ClientOID:  req.ClientOID,
		Timestamp:  time.Now(),
	}
	if err := mo.Validate(s.instrument); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	order := engine.Order{
		ID:    mo.ID,
		Side:  wireSide(req.Side),
		Price: mo.Price,
		Qty:   mo.Qty,
	}

	timer := metrics.NewTimer(s.metrics.SubmitLatency)
	s.mu.Lock()
	result := s.engine.Submit(order)
	live := s.engine.LiveOrders()
	s.mu.Unlock()
	timer.ObserveDone()

	wireResult := engineResult(result)
	s.metrics.RecordSubmit(wireResult.String())
	s.metrics.SetLiveOrders(live)

	return &SubmitResponse{OrderID: req.OrderID, Result: wireResult}, nil
}

// Cancel adapts a wire CancelRequest, taking the engine mutex.
func (s *GRPCServer) Cancel(ctx context.Context, req *CancelRequest) (*CancelResponse, error) {
	if err := s.checkInstrument(req.Instrument); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ok := s.engine.Cancel(req.OrderID)
	live := s.engine.LiveOrders()
	s.mu.Unlock()

	s.metrics.RecordCancel(ok)
	s.metrics.SetLiveOrders(live)
	return &CancelResponse{OrderID: req.OrderID, Success: ok}, nil
}

// Replace adapts a wire ReplaceRequest, taking the engine mutex. No trades
// can be observed between the cancel and submit halves because both run
// under the same critical section as engine.Engine.Replace itself.
func (s *GRPCServer) Replace(ctx context.Context, req *ReplaceRequest) (*ReplaceResponse, error) {
	if err := s.checkInstrument(req.Instrument); err != nil {
		return nil, err
	}

	s.mu.Lock()
	res := s.engine.Replace(req.OrderID, req.NewPrice, req.NewQty)
	live := s.engine.LiveOrders()
	s.mu.Unlock()

	s.metrics.RecordReplace(res.Success)
	s.metrics.SetLiveOrders(live)
	return &ReplaceResponse{
		OrderID: req.OrderID,
		Success: res.Success,
		Result:  engineResult(res.Add),
	}, nil
}

// StreamTrades fans out every trade recorded by OnTrade to this
// subscriber until the client disconnects.
func (s *GRPCServer) StreamTrades(req *StreamTradesRequest, stream Matching_StreamTradesServer) error {
	if err := s.checkInstrument(req.Instrument); err != nil {
		return err
	}

	ch := make(chan *TradeEvent, 1024)
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	defer func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(ev); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

// OnTrade implements engine.TradeSink. It must never re-enter the engine
// (spec §5). It stamps a models.Trade record, translates it to the wire
// TradeEvent shape, and fans it out to subscriber channels, dropping it
// for any subscriber whose buffer is full rather than blocking the
// matching loop.
func (s *GRPCServer) OnTrade(qty int64, price int32, takerID, makerID uint64) {
	s.metrics.RecordTrade(qty)
	s.tradeSeq++
	trade := models.Trade{
		TradeID:      s.tradeSeq,
		Price:        price,
		Quantity:     qty,
		Timestamp:    time.Now().UnixNano(),
		MakerOrderID: makerID,
		TakerOrderID: takerID,
		Instrument:   s.instrument,
	}
	ev := &TradeEvent{
		Instrument:   trade.Instrument,
		TradeID:      trade.TradeID,
		Price:        trade.Price,
		Qty:          trade.Quantity,
		TakerOrderID: trade.TakerOrderID,
		MakerOrderID: trade.MakerOrderID,
		TimestampNs:  trade.Timestamp,
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// OnOrderClosed implements engine.TradeSink. The service layer has no
// separate closed-id mirror of its own (that bookkeeping belongs to a
// client, per spec §6). It is a no-op here, kept only to satisfy the
// interface the engine requires of its sink.
func (s *GRPCServer) OnOrderClosed(makerID uint64) {}

func wireSide(s Side) engine.Side {
	if s == SideSell {
		return engine.Sell
	}
	return engine.Buy
}

func modelSide(s Side) models.OrderSide {
	if s == SideSell {
		return models.Sell
	}
	return models.Buy
}

func engineResult(r engine.AddResult) AddResult {
	switch r {
	case engine.FullyMatched:
		return ResultFullyMatched
	case engine.FullyRested:
		return ResultFullyRested
	case engine.PartiallyRested:
		return ResultPartiallyRested
	default:
		return ResultRejected
	}
}

func (r AddResult) String() string {
	switch r {
	case ResultFullyMatched:
		return "fully_matched"
	case ResultFullyRested:
		return "fully_rested"
	case ResultPartiallyRested:
		return "partially_rested"
	default:
		return "rejected"
	}
}
