package models

import (
	"testing"
	"time"
)

func TestOrderValidateAcceptsWellFormed(t *testing.T) {
	o := &Order{ID: 1, Side: Buy, Price: 1000, Qty: 5, Instrument: "BTC-USD", Timestamp: time.Now()}
	if err := o.Validate("BTC-USD"); err != nil {
		t.Fatalf("expected well-formed order to validate, got %v", err)
	}
}

func TestOrderValidateRejectsNonPositiveQuantity(t *testing.T) {
	o := &Order{ID: 1, Side: Buy, Price: 1000, Qty: 0, Instrument: "BTC-USD"}
	if err := o.Validate("BTC-USD"); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestOrderValidateRejectsWrongInstrument(t *testing.T) {
	o := &Order{ID: 1, Side: Buy, Price: 1000, Qty: 5, Instrument: "ETH-USD"}
	if err := o.Validate("BTC-USD"); err != ErrWrongInstrument {
		t.Fatalf("expected ErrWrongInstrument, got %v", err)
	}
}
