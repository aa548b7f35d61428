// Package symbol provides trading pair identifiers and the configured symbol table.
package symbol

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol identifies a base/quote trading pair, e.g. "BTC/USDT".
type Symbol string

// Parse validates s as a "BASE/QUOTE" pair and returns it as a Symbol.
func Parse(s string) (Symbol, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return "", fmt.Errorf("symbol: invalid pair %q, want BASE/QUOTE", s)
	}
	return Symbol(s), nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Symbol {
	sym, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sym
}

// Base returns the base asset code ("BTC" for "BTC/USDT").
func (s Symbol) Base() string {
	base, _, _ := strings.Cut(string(s), "/")
	return base
}

// Quote returns the quote asset code ("USDT" for "BTC/USDT").
func (s Symbol) Quote() string {
	_, quote, _ := strings.Cut(string(s), "/")
	return quote
}

// String returns the pair in "BASE/QUOTE" form.
func (s Symbol) String() string {
	return string(s)
}

// Entry pairs a Symbol with its fixed order size, denominated in the base asset.
type Entry struct {
	Symbol    Symbol
	OrderSize decimal.Decimal
}

// Table is the immutable set of configured symbols and their order sizes.
// Built once at startup and safe for concurrent reads.
type Table struct {
	entries []Entry
	sizes   map[Symbol]decimal.Decimal
}

// NewTable builds a table from entries, preserving order.
// Rejects duplicate symbols and non-positive order sizes.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("symbol: table must contain at least one symbol")
	}

	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		sizes:   make(map[Symbol]decimal.Decimal, len(entries)),
	}

	for _, e := range entries {
		if _, err := Parse(string(e.Symbol)); err != nil {
			return nil, err
		}
		if !e.OrderSize.IsPositive() {
			return nil, fmt.Errorf("symbol: order size for %s must be positive, got %s", e.Symbol, e.OrderSize)
		}
		if _, dup := t.sizes[e.Symbol]; dup {
			return nil, fmt.Errorf("symbol: %s configured twice", e.Symbol)
		}
		t.entries = append(t.entries, e)
		t.sizes[e.Symbol] = e.OrderSize
	}

	return t, nil
}

// Symbols returns the configured symbols in configuration order.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Symbol
	}
	return out
}

// OrderSize returns the configured order size for sym.
func (t *Table) OrderSize(sym Symbol) (decimal.Decimal, bool) {
	size, ok := t.sizes[sym]
	return size, ok
}

// Len returns the number of configured symbols.
func (t *Table) Len() int {
	return len(t.entries)
}
