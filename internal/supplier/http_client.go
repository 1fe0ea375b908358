package supplier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stocksmith/shopd/internal/config"
)

// HTTPClient is a resty-backed API implementation for suppliers exposing a
// JSON catalog/order API. Delivery reports are plain files dropped by the
// supplier, so report parsing stays local.
type HTTPClient struct {
	name       string
	httpClient *resty.Client
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient builds a supplier client from configuration values.
func NewHTTPClient(internalName string, cfg config.SupplierConfig) *HTTPClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	if cfg.APIKey != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &HTTPClient{
		name:       internalName,
		httpClient: restyClient,
	}
}

// RetrieveProduct fetches the supplier catalog entry for a SKU. A 404 from
// the supplier means the SKU is not carried and is not an error.
func (c *HTTPClient) RetrieveProduct(ctx context.Context, sku string) (*ProductData, error) {
	result := new(ProductData)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		Get(fmt.Sprintf("/products/%s", sku))
	if err != nil {
		return nil, &APIError{Supplier: c.name, Op: "retrieve product", Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, &APIError{
			Supplier: c.name,
			Op:       "retrieve product",
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode()),
		}
	}
	return result, nil
}

// ParseDeliveryReport streams the report file at path.
func (c *HTTPClient) ParseDeliveryReport(ctx context.Context, path string) (ReportIterator, error) {
	return OpenCSVReport(path)
}

// OrderProduct places an order for qty batches of a SKU.
func (c *HTTPClient) OrderProduct(ctx context.Context, sku string, qty int64) error {
	payload := map[string]any{
		"sku": sku,
		"qty": qty,
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/orders")
	if err != nil {
		return &APIError{Supplier: c.name, Op: "order product", Err: err}
	}
	if resp.IsError() {
		return &APIError{
			Supplier: c.name,
			Op:       "order product",
			Err:      fmt.Errorf("order rejected with status %d", resp.StatusCode()),
		}
	}
	return nil
}

// IsAPIError reports whether err is a supplier API failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
