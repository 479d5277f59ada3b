package protocol

// Wire request/response shapes for the Matching gRPC service. These are
// plain structs marshaled by jsonCodec (see codec.go), not protoc-generated
// types; there is no .proto file for this service (see DESIGN.md).

// Side mirrors engine.Side on the wire.
type Side int32

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

// SubmitRequest carries one incoming order.
type SubmitRequest struct {
	Instrument string `json:"instrument"`
	OrderID    uint64 `json:"order_id"`
	ClientOID  string `json:"client_order_id,omitempty"`
	Side       Side   `json:"side"`
	Price      int32  `json:"price"`
	Qty        int64  `json:"qty"`
}

// AddResult mirrors engine.AddResult on the wire.
type AddResult int32

const (
	ResultRejected AddResult = iota
	ResultFullyMatched
	ResultFullyRested
	ResultPartiallyRested
)

// SubmitResponse reports the outcome of a Submit call.
type SubmitResponse struct {
	OrderID uint64    `json:"order_id"`
	Result  AddResult `json:"result"`
}

// CancelRequest names the order id to cancel.
type CancelRequest struct {
	Instrument string `json:"instrument"`
	OrderID    uint64 `json:"order_id"`
}

// CancelResponse reports whether the id was resting.
type CancelResponse struct {
	OrderID uint64 `json:"order_id"`
	Success bool   `json:"success"`
}

// ReplaceRequest names the order id plus its new price/qty.
type ReplaceRequest struct {
	Instrument string `json:"instrument"`
	OrderID    uint64 `json:"order_id"`
	NewPrice   int32  `json:"new_price"`
	NewQty     int64  `json:"new_qty"`
}

// ReplaceResponse reports the outcome of a Replace call.
type ReplaceResponse struct {
	OrderID uint64    `json:"order_id"`
	Success bool      `json:"success"`
	Result  AddResult `json:"result"`
}

// StreamTradesRequest subscribes to the trade feed for an instrument.
type StreamTradesRequest struct {
	Instrument string `json:"instrument"`
}

// TradeEvent is one fill, fanned out to StreamTrades subscribers.
type TradeEvent struct {
	Instrument   string `json:"instrument"`
	TradeID      uint64 `json:"trade_id"`
	Price        int32  `json:"price"`
	Qty          int64  `json:"qty"`
	TakerOrderID uint64 `json:"taker_order_id"`
	MakerOrderID uint64 `json:"maker_order_id"`
	TimestampNs  int64  `json:"timestamp_ns"`
}
