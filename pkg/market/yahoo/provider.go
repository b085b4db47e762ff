package yahoo

import (
	"net/http"

	"stockchat-api/pkg/market"
)

func init() {
	market.RegisterProvider("yahoo", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithUserAgent(cfg.UserAgent),
		}
		if cfg.MaxRetries > 0 {
			opts = append(opts, WithMaxRetries(cfg.MaxRetries))
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}), WithHTTPTimeout(cfg.HTTPTimeout))
		}
		return NewClient(opts...), nil
	})
}
