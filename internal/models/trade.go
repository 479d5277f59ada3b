package models

// Trade is the service-level trade record published over the market data
// stream. It mirrors the engine's {qty, price, takerId, makerId} callback,
// stamped with a sequence id and wall-clock time by the service layer.
type Trade struct {
	TradeID      uint64
	Price        int32
	Quantity     int64
	Timestamp    int64
	MakerOrderID uint64
	TakerOrderID uint64
	Instrument   string
	TakerSide    OrderSide
}
