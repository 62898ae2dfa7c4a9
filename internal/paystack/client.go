package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Config struct {
	BaseURL   string
	SecretKey string
}

// Client wraps the two gateway operations the store uses. It holds no
// local state; every failure it reports is the gateway's.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(cfg Config) *Client {
	return &Client{
		client: &http.Client{
			Transport: &authTransport{
				Secret: cfg.SecretKey,
				Base:   http.DefaultTransport,
			},
			Timeout: 10 * time.Second,
		},
		baseURL: cfg.BaseURL,
	}
}

// authTransport adds the Bearer secret-key header.
type authTransport struct {
	Secret string
	Base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.Secret)
	req.Header.Set("Accept", "application/json")
	return t.Base.RoundTrip(req)
}

// Initialize starts a hosted-payment transaction for email and amount.
// Amount is in major units; the wire format wants subunits.
func (c *Client) Initialize(ctx context.Context, email string, amount float64) (InitResponse, error) {
	body, err := json.Marshal(map[string]string{
		"email":  email,
		"amount": strconv.FormatInt(int64(math.Round(amount*100)), 10),
	})
	if err != nil {
		return InitResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return InitResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out InitResponse
	if err := c.do(req, &out); err != nil {
		return InitResponse{}, err
	}
	return out, nil
}

// Verify asks the gateway for its current knowledge of a reference.
func (c *Client) Verify(ctx context.Context, reference string) (VerifyResponse, error) {
	u := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return VerifyResponse{}, err
	}

	var out VerifyResponse
	if err := c.do(req, &out); err != nil {
		return VerifyResponse{}, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return &APIError{Code: resp.StatusCode, Message: apiErr.Message}
		}
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(b))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
