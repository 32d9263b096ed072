package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
)

// Provider delivers closing prices for the fund's listed instruments.
type Provider interface {
	// FetchClose returns the most recent closing price for a ticker.
	FetchClose(ctx context.Context, ticker string) (model.PriceQuote, error)
}

// FinanceClient fetches prices from the Yahoo Finance chart API.
//
// Tickers stored in the position table are bare exchange symbols; the
// configured suffix (e.g. ".VN") is appended when querying Yahoo.
type FinanceClient struct {
	httpClient   *http.Client
	tickerSuffix string
}

// NewFinanceClient creates a new Yahoo Finance client. suffix is appended to
// every ticker before querying; pass "" for symbols that are already fully
// qualified.
func NewFinanceClient(suffix string) *FinanceClient {
	return &FinanceClient{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		tickerSuffix: suffix,
	}
}

// FetchClose fetches the last 5 days of daily data for a ticker and returns
// the latest available close. Five days covers weekends and exchange
// holidays, so the most recent trading day is always in range.
func (c *FinanceClient) FetchClose(ctx context.Context, ticker string) (model.PriceQuote, error) {
	symbol := ticker + c.tickerSuffix
	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=5d", symbol)

	response, err := c.query(ctx, url)
	if err != nil {
		return model.PriceQuote{}, err
	}

	indicators, err := parseIndicators(response)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceSourceUnavailable, symbol, err)
	}

	latest := indicators[len(indicators)-1]
	return model.PriceQuote{
		Ticker:     ticker,
		ClosePrice: latest.PriceClose,
		PriceDate:  latest.Date,
		Source:     "yahoo",
	}, nil
}

// parseIndicators flattens a chart response into daily data points, oldest
// first, validating that the arrays line up.
func parseIndicators(response Response) ([]Indicators, error) {
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("no results returned")
	}

	result := response.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return nil, fmt.Errorf("no close prices returned")
	}
	if len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths")
	}

	quote := result.Indicators.Quote[0]
	indicators := make([]Indicators, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		indicators[i].Date = time.Unix(ts, 0).UTC()
		indicators[i].PriceOpen = quote.Open[i]
		indicators[i].PriceClose = quote.Close[i]
		indicators[i].Volume = quote.Volume[i]
		indicators[i].PriceHigh = quote.High[i]
		indicators[i].PriceLow = quote.Low[i]
	}

	return indicators, nil
}

func (c *FinanceClient) query(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrPriceSourceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrPriceSourceUnavailable, err)
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrPriceSourceUnavailable, err)
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("%w: %s", apperrors.ErrPriceSourceUnavailable, *response.Chart.Error)
	}

	return response, nil
}
