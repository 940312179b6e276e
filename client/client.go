// Package client is a small Go client for the storefront API. A Session is
// passed to every call; Login stores the issued token on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"gadgethub/auth"
	"gadgethub/models"
)

type Session struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewSession(baseURL string, httpClient *http.Client) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Session{BaseURL: baseURL, HTTP: httpClient}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func Register(ctx context.Context, s *Session, in auth.RegisterRequest) (*models.User, error) {
	var u models.User
	if err := s.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func Verify(ctx context.Context, s *Session, identifier, code string) error {
	return s.do(ctx, http.MethodPost, "/api/auth/verify", nil, auth.VerifyRequest{Identifier: identifier, Code: code}, nil)
}

// Login authenticates and keeps the token on s for later calls.
func Login(ctx context.Context, s *Session, identifier, password string) (*auth.LoginResult, error) {
	var res auth.LoginResult
	if err := s.do(ctx, http.MethodPost, "/api/auth/login", nil, auth.LoginRequest{Identifier: identifier, Password: password}, &res); err != nil {
		return nil, err
	}
	s.Token = res.Token
	return &res, nil
}

// Products runs the advanced filter. Zero fields of q are left out.
func Products(ctx context.Context, s *Session, q models.ProductQuery) (*models.ProductPage, error) {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("category", q.Category)
	set("brand", q.Brand)
	set("condition", q.Condition)
	if q.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*q.InStock))
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	// the listing is not enveloped under data: page fields sit beside it
	resp, err := s.send(ctx, http.MethodGet, "/api/products/filter/advanced", v, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var page models.ProductPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode product page: %w", err)
	}
	return &page, nil
}

func Search(ctx context.Context, s *Session, term string) ([]models.Product, error) {
	var out []models.Product
	err := s.do(ctx, http.MethodGet, "/api/products/search", url.Values{"q": {term}}, nil, &out)
	return out, err
}

func AddToCart(ctx context.Context, s *Session, productID string, quantity int) (*models.CartView, error) {
	var c models.CartView
	body := map[string]any{"productId": productID, "quantity": quantity}
	if err := s.do(ctx, http.MethodPost, "/api/cart/add", nil, body, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Cart returns the caller's cart. An empty cart comes back with no items.
func Cart(ctx context.Context, s *Session) (*models.CartView, error) {
	var raw json.RawMessage
	if err := s.do(ctx, http.MethodGet, "/api/cart", nil, nil, &raw); err != nil {
		return nil, err
	}
	c := &models.CartView{Items: []models.CartLine{}}
	if len(raw) > 0 && raw[0] == '[' {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

func PlaceOrder(ctx context.Context, s *Session, shippingAddress string) (*models.Order, error) {
	var o models.Order
	body := map[string]string{"shippingAddress": shippingAddress}
	if err := s.do(ctx, http.MethodPost, "/api/orders", nil, body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func MyOrders(ctx context.Context, s *Session) ([]models.OrderView, error) {
	var out []models.OrderView
	err := s.do(ctx, http.MethodGet, "/api/orders/my", nil, nil, &out)
	return out, err
}

// do sends body as JSON and decodes the envelope's data into out.
func (s *Session) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	resp, err := s.send(ctx, method, path, query, rd)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}

func (s *Session) send(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u := s.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	return s.HTTP.Do(req)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
		apiErr.Message = env.Message
	}
	return apiErr
}
