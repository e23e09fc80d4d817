package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/domain"
)

// ProductAPI is the catalog surface of the storefront API.
type ProductAPI interface {
	List(ctx context.Context, page int) (*domain.ProductPage, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
}

type productHTTPClient struct {
	client *Client
	log    *logrus.Logger
}

func NewProductHTTPClient(client *Client, logger *logrus.Logger) ProductAPI {
	return &productHTTPClient{client: client, log: logger}
}

func (c *productHTTPClient) List(ctx context.Context, page int) (*domain.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	c.log.Debugf("ProductClient: fetching products page %d", page)
	var resp domain.ProductPage
	if err := c.client.Do(ctx, http.MethodGet, fmt.Sprintf("/products?page=%d", page), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *productHTTPClient) Get(ctx context.Context, id int) (*domain.Product, error) {
	c.log.Debugf("ProductClient: fetching product %d", id)
	var resp struct {
		Data domain.Product `json:"data"`
	}
	if err := c.client.Do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
