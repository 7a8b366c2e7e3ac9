package stock

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/mamadbah2/hatchery/internal/config"
	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// APIClient is a resty-backed implementation of Ledger.
type APIClient struct {
	httpClient *resty.Client
}

var _ Ledger = (*APIClient)(nil)

const defaultTimeout = 5 * time.Second

// NewClient builds an inventory API client from configuration.
func NewClient(cfg config.StockConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}
	return &APIClient{httpClient: restyClient}
}

type namedEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type scrapRecord struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// apiError represents an inventory API error payload.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *APIClient) ResolveProduct(ctx context.Context, name string) (string, error) {
	return c.resolve(ctx, "products", url.Values{"name": {name}}, "product "+name)
}

func (c *APIClient) ResolvePickingType(ctx context.Context, code string) (string, error) {
	return c.resolve(ctx, "picking-types", url.Values{"code": {code}}, "picking type "+code)
}

func (c *APIClient) resolve(ctx context.Context, path string, query url.Values, label string) (string, error) {
	var found []namedEntity
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetQueryParam("limit", "1").
		SetResult(&found).
		SetError(apiErr).
		Get(path)
	if err := checkResponse(resp, err, apiErr, "resolve "+label); err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", models.NotFoundf("%s", label)
	}
	return found[0].ID, nil
}

func (c *APIClient) OnHandLots(ctx context.Context, productID string) ([]models.StockLot, error) {
	var lots []models.StockLot
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("product", productID).
		SetQueryParams(map[string]string{
			"location_usage": "internal",
			"min_quantity":   "1",
			"order":          "quantity_desc",
		}).
		SetResult(&lots).
		SetError(apiErr).
		Get("products/{product}/lots")
	if err := checkResponse(resp, err, apiErr, "list lots"); err != nil {
		return nil, err
	}
	return lots, nil
}

func (c *APIClient) Scrap(ctx context.Context, req models.ScrapRequest) (string, error) {
	key := idempotencyKey("scraps", req.Origin, req.ProductID, req.LotID, req.LocationID, strconv.Itoa(req.Quantity))
	created, err := c.create(ctx, "scraps", key, req)
	if err != nil {
		return "", err
	}
	if err := c.action(ctx, "scraps/{id}/validate", created); err != nil {
		return "", err
	}
	return created, nil
}

func (c *APIClient) Scrapped(ctx context.Context, productID, origin string) (int, error) {
	var scraps []scrapRecord
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"product_id": productID,
			"origin":     origin,
			"state":      "done",
		}).
		SetResult(&scraps).
		SetError(apiErr).
		Get("scraps")
	if err := checkResponse(resp, err, apiErr, "list scraps"); err != nil {
		return 0, err
	}
	total := 0
	for _, s := range scraps {
		total += s.Quantity
	}
	return total, nil
}

func (c *APIClient) CreateMovement(ctx context.Context, req models.MovementRequest) (string, error) {
	key := idempotencyKey("pickings", req.Origin, req.ProductID, req.Source, req.Destination, strconv.Itoa(req.Quantity))
	return c.create(ctx, "pickings", key, req)
}

func (c *APIClient) ValidateMovement(ctx context.Context, pickingID string) error {
	for _, step := range []string{"confirm", "assign", "validate"} {
		if err := c.action(ctx, "pickings/{id}/"+step, pickingID); err != nil {
			return err
		}
	}
	return nil
}

// idempotencyKey derives a stable key from the request identity so a retried
// request is recognized by the ledger instead of applied twice.
func idempotencyKey(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.Join(parts, "\x00"))).String()
}

func (c *APIClient) create(ctx context.Context, path, key string, body any) (string, error) {
	result := new(createdResponse)
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", key).
		SetBody(body).
		SetResult(result).
		SetError(apiErr).
		Post(path)
	if err := checkResponse(resp, err, apiErr, "create "+path); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("create %s: empty id in response", path)
	}
	return result.ID, nil
}

func (c *APIClient) action(ctx context.Context, path, id string) error {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey(path, id)).
		SetPathParam("id", id).
		SetError(apiErr).
		Post(path)
	return checkResponse(resp, err, apiErr, path)
}

func checkResponse(resp *resty.Response, err error, apiErr *apiError, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	message := apiErr.Error.Message
	if message == "" {
		message = resp.Status()
	}
	if resp.StatusCode() == http.StatusNotFound {
		return models.NotFoundf("%s: %s", op, message)
	}
	return fmt.Errorf("inventory api error: op=%s, status=%d, message=%s", op, resp.StatusCode(), message)
}
