package testutil

import (
	"context"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
)

// MockPriceProvider is a mock implementation of marketdata.Provider for
// testing. It returns predefined quotes per ticker instead of making API
// calls.
type MockPriceProvider struct {
	// Quotes maps tickers to the quote to return.
	Quotes map[string]model.PriceQuote
	// Errors maps tickers to the error to return.
	Errors map[string]error
	// FetchCount tracks how many times FetchClose was called.
	FetchCount int
}

// NewMockPriceProvider creates an empty mock provider.
func NewMockPriceProvider() *MockPriceProvider {
	return &MockPriceProvider{
		Quotes: make(map[string]model.PriceQuote),
		Errors: make(map[string]error),
	}
}

// WithQuote registers a closing price for a ticker.
func (m *MockPriceProvider) WithQuote(ticker string, close float64, date time.Time) *MockPriceProvider {
	m.Quotes[ticker] = model.PriceQuote{
		Ticker:     ticker,
		ClosePrice: close,
		PriceDate:  date,
		Source:     "mock",
	}
	return m
}

// WithError registers an error for a ticker.
func (m *MockPriceProvider) WithError(ticker string, err error) *MockPriceProvider {
	m.Errors[ticker] = err
	return m
}

// FetchClose returns the registered quote or error for the ticker.
func (m *MockPriceProvider) FetchClose(_ context.Context, ticker string) (model.PriceQuote, error) {
	m.FetchCount++
	if err, ok := m.Errors[ticker]; ok {
		return model.PriceQuote{}, err
	}
	return m.Quotes[ticker], nil
}
