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
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateUser(ctx context.Context, name string) (*ledger.User, error) {
	var result ledger.User
	if err := c.post(ctx, "/api/v1/users", map[string]any{"name": name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]ledger.User, error) {
	var result []ledger.User
	if err := c.get(ctx, "/api/v1/users", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) RenameUser(ctx context.Context, id int64, newName string) (*ledger.User, error) {
	var result ledger.User
	if err := c.patch(ctx, "/api/v1/users/"+formatID(id), map[string]any{"name": newName}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListUserEntities(ctx context.Context, userID int64) ([]ledger.EntityInfo, error) {
	var result []ledger.EntityInfo
	if err := c.get(ctx, "/api/v1/users/"+formatID(userID)+"/entities", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) BalanceSheet(ctx context.Context, userID int64) (*ledger.BalanceSheet, error) {
	var result ledger.BalanceSheet
	if err := c.get(ctx, "/api/v1/users/"+formatID(userID)+"/balance-sheet", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type BalanceResponse struct {
	EntityID   int64           `json:"entity_id"`
	Balance    decimal.Decimal `json:"balance"`
	Recomputed bool            `json:"recomputed"`
}

func (c *Client) EntityBalance(ctx context.Context, entityID int64, recompute bool) (*BalanceResponse, error) {
	params := url.Values{}
	if recompute {
		params.Set("recompute", "true")
	}
	var result BalanceResponse
	if err := c.get(ctx, "/api/v1/entities/"+formatID(entityID)+"/balance?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) EntityStatement(ctx context.Context, entityID int64, limit int) ([]ledger.Log, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var result []ledger.Log
	if err := c.get(ctx, "/api/v1/entities/"+formatID(entityID)+"/statement?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) NetPosition(ctx context.Context, entityID, counterpartyID int64) (*ledger.NetPosition, error) {
	var result ledger.NetPosition
	if err := c.get(ctx, "/api/v1/entities/"+formatID(entityID)+"/position/"+formatID(counterpartyID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type BatchResponse struct {
	BatchID string       `json:"batch_id"`
	Lines   []ledger.Log `json:"lines,omitempty"`
}

func (c *Client) PostBatch(ctx context.Context, lines []ledger.Line) (*BatchResponse, error) {
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/batches", map[string]any{"lines": lines}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetBatch(ctx context.Context, batchID string) (*BatchResponse, error) {
	var result BatchResponse
	if err := c.get(ctx, "/api/v1/batches/"+url.PathEscape(batchID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReverseBatch(ctx context.Context, batchID string) (*BatchResponse, error) {
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/batches/"+url.PathEscape(batchID)+"/reverse", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RecordExpense(ctx context.Context, payerID int64, participants []int64, total decimal.Decimal, catalogID int64, note string) (*BatchResponse, error) {
	body := map[string]any{
		"payer_id":     payerID,
		"participants": participants,
		"total":        total,
		"catalog_id":   catalogID,
		"note":         note,
	}
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/expenses", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RecordSettlement(ctx context.Context, debtorID, creditorID int64, amount decimal.Decimal, note string) (*BatchResponse, error) {
	body := map[string]any{
		"debtor_id":   debtorID,
		"creditor_id": creditorID,
		"amount":      amount,
		"note":        note,
	}
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/settlements", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RecordDeposit(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*BatchResponse, error) {
	body := map[string]any{"user_id": userID, "amount": amount, "note": note}
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/deposits", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RecordPrepayment(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*BatchResponse, error) {
	body := map[string]any{"user_id": userID, "amount": amount, "note": note}
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/prepayments", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PostAmortization(ctx context.Context, userID int64, amount decimal.Decimal, catalogID int64, note string) (*BatchResponse, error) {
	body := map[string]any{"user_id": userID, "amount": amount, "catalog_id": catalogID, "note": note}
	var result BatchResponse
	if err := c.post(ctx, "/api/v1/amortizations", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListCatalog(ctx context.Context) ([]ledger.CatalogNode, error) {
	var result []ledger.CatalogNode
	if err := c.get(ctx, "/api/v1/catalog", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CreateCatalog(ctx context.Context, name string, parentID *int64) (*ledger.CatalogNode, error) {
	body := map[string]any{"name": name}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	var result ledger.CatalogNode
	if err := c.post(ctx, "/api/v1/catalog", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReparentCatalog(ctx context.Context, id int64, parentID *int64) (*ledger.CatalogNode, error) {
	var result ledger.CatalogNode
	if err := c.patch(ctx, "/api/v1/catalog/"+formatID(id), map[string]any{"parent_id": parentID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/accounts", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) patch(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "PATCH", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
