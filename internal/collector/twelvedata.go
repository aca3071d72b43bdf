package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// DefaultTwelveDataURL is the TwelveData REST base URL.
const DefaultTwelveDataURL = "https://api.twelvedata.com"

// TwelveDataFetcher implements Fetcher using the TwelveData time_series API.
// Each request tries the configured API keys in order until one succeeds.
type TwelveDataFetcher struct {
	BaseURL string
	APIKeys []string
	Client  *http.Client
}

// NewTwelveDataFetcher creates a new fetcher with optional proxy support.
func NewTwelveDataFetcher(baseURL string, apiKeys []string, proxyURL string) *TwelveDataFetcher {
	if baseURL == "" {
		baseURL = DefaultTwelveDataURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return &TwelveDataFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKeys: keys,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// tdResponse is the JSON shape of a time_series response. Prices arrive as strings.
type tdResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

func (f *TwelveDataFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	if len(f.APIKeys) == 0 {
		return nil, errors.New("twelvedata: no api keys configured")
	}
	var errs []error
	for i, key := range f.APIKeys {
		bars, err := f.fetchWithKey(ctx, symbol, interval, limit, key)
		if err == nil {
			return bars, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("key #%d: %w", i+1, err))
	}
	return nil, fmt.Errorf("twelvedata: all keys failed: %w", errors.Join(errs...))
}

func (f *TwelveDataFetcher) fetchWithKey(ctx context.Context, symbol, interval string, limit int, key string) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(limit))
	q.Set("timezone", "UTC")
	q.Set("apikey", key)
	endpoint := f.BaseURL + "/time_series?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var td tdResponse
	if err := json.NewDecoder(resp.Body).Decode(&td); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if td.Status == "error" {
		return nil, fmt.Errorf("api error %d: %s", td.Code, td.Message)
	}
	if len(td.Values) == 0 {
		return nil, errors.New("no values returned")
	}

	bars := make([]model.OHLCV, 0, len(td.Values))
	for _, v := range td.Values {
		ts, err := parseTDTime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse datetime %q: %w", v.Datetime, err)
		}
		bar := model.OHLCV{Time: ts}
		for _, field := range []struct {
			dst *float64
			src string
		}{
			{&bar.Open, v.Open}, {&bar.High, v.High}, {&bar.Low, v.Low}, {&bar.Close, v.Close},
		} {
			if *field.dst, err = strconv.ParseFloat(field.src, 64); err != nil {
				return nil, fmt.Errorf("parse price %q: %w", field.src, err)
			}
		}
		// Volume is absent for FX and metals.
		if v.Volume != "" {
			bar.Volume, _ = strconv.ParseFloat(v.Volume, 64)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseTDTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
