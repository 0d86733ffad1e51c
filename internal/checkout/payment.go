package checkout

import (
	"context"
	"fmt"

	"github.com/guonaihong/gout"
	"github.com/shopspring/decimal"

	"github.com/nexchakra/showcase/config"
)

// ChargeRequest is what the storefront hands to the payment collaborator
type ChargeRequest struct {
	OrderNo       string          `json:"order_no"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customer_email"`
}

// ChargeResult is the gateway's answer to a charge attempt
type ChargeResult struct {
	Ref    string `json:"ref"`
	Status string `json:"status"` // pending | success | failed
}

// PaymentClient abstracts the external payment collaborator. The protocol
// itself is out of scope; only charge initiation and status polling are used.
type PaymentClient interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	Status(ctx context.Context, ref string) (string, error)
}

// GatewayClient talks HTTP to the configured payment gateway
type GatewayClient struct {
	baseURL string
	apiKey  string
}

func NewGatewayClient(cfg config.PaymentConfig) *GatewayClient {
	return &GatewayClient{baseURL: cfg.GatewayURL, apiKey: cfg.ApiKey}
}

func (g *GatewayClient) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	var result ChargeResult
	err := gout.POST(g.baseURL + "/v1/charges").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + g.apiKey}).
		SetJSON(req).
		BindJSON(&result).
		Do()
	if err != nil {
		return nil, err
	}
	if result.Ref == "" {
		return nil, fmt.Errorf("gateway returned empty charge ref for order %s", req.OrderNo)
	}
	return &result, nil
}

func (g *GatewayClient) Status(ctx context.Context, ref string) (string, error) {
	var result ChargeResult
	err := gout.GET(g.baseURL + "/v1/charges/" + ref).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + g.apiKey}).
		BindJSON(&result).
		Do()
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// MockClient approves every charge on the first status poll. Used in
// development when no gateway is configured.
type MockClient struct{}

func (MockClient) Charge(_ context.Context, req *ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{Ref: "MOCK-" + req.OrderNo, Status: "pending"}, nil
}

func (MockClient) Status(_ context.Context, _ string) (string, error) {
	return "success", nil
}

// NewPaymentClient picks the gateway or mock implementation from config
func NewPaymentClient(cfg config.PaymentConfig) PaymentClient {
	if cfg.Mock || cfg.GatewayURL == "" {
		return MockClient{}
	}
	return NewGatewayClient(cfg)
}
