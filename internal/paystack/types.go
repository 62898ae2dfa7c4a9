package paystack

import "fmt"

// InitResponse is the gateway's answer to initialize-transaction.
type InitResponse struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Data    InitData `json:"data"`
}

type InitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResponse is the gateway's answer to verify-transaction. Data is
// echoed to the confirmation page on success.
type VerifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    VerifyData `json:"data"`
}

type VerifyData struct {
	Status    string   `json:"status"` // "success", "failed", "abandoned", ...
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"` // subunits
	Currency  string   `json:"currency"`
	PaidAt    string   `json:"paid_at"`
	Channel   string   `json:"channel"`
	Fees      int64    `json:"fees"`
	Customer  Customer `json:"customer"`
}

type Customer struct {
	Email string `json:"email"`
}

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack api error (%d): %s", e.Code, e.Message)
}
