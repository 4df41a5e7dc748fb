package wechatpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/httpclient"
)

const (
	prepayEndpoint = "/v3/pay/transactions/native"
	queryEndpoint  = "/v3/pay/transactions/out-trade-no/%s?mchid=%s"
	closeEndpoint  = "/v3/pay/transactions/out-trade-no/%s/close"
)

type Gateway interface {
	Prepay(ctx context.Context, outTradeNo, description string, amountTotal int64) (PrepayResponse, error)
	QueryByOutTradeNo(ctx context.Context, outTradeNo string) (*TransactionResult, error)
	Close(ctx context.Context, outTradeNo string) error
	ParseNotification(headers map[string]string, body []byte) (*TransactionResult, error)
}

type gateway struct {
	cfg      Config
	client   httpclient.HTTPClient
	signer   *Signer
	verifier *Verifier
}

func NewGateway(cfg Config, client httpclient.HTTPClient) (Gateway, error) {
	key, err := LoadPrivateKey(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("loading merchant private key: %w", err)
	}

	pub, err := LoadPublicKey(cfg.PlatformCertPEM)
	if err != nil {
		return nil, fmt.Errorf("loading platform certificate: %w", err)
	}

	return &gateway{
		cfg:      cfg,
		client:   client,
		signer:   NewSigner(cfg.MchID, cfg.SerialNo, key),
		verifier: NewVerifier(pub),
	}, nil
}

func (g *gateway) Prepay(ctx context.Context, outTradeNo, description string, amountTotal int64) (PrepayResponse, error) {
	request := PrepayRequest{
		AppID:       g.cfg.AppID,
		MchID:       g.cfg.MchID,
		Description: description,
		OutTradeNo:  outTradeNo,
		NotifyURL:   g.cfg.NotifyURL,
		Amount:      Amount{Total: amountTotal, Currency: "CNY"},
	}

	var response PrepayResponse
	if err := g.post(ctx, prepayEndpoint, request, &response); err != nil {
		return PrepayResponse{}, err
	}

	return response, nil
}

func (g *gateway) QueryByOutTradeNo(ctx context.Context, outTradeNo string) (*TransactionResult, error) {
	path := fmt.Sprintf(queryEndpoint, url.PathEscape(outTradeNo), g.cfg.MchID)

	auth, err := g.signer.AuthorizationHeader("GET", path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Get(ctx, g.cfg.BaseURL+path, map[string]string{
		"Accept":        "application/json",
		"Authorization": auth,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		return nil, decodeError(resp.StatusCode, resp.Body)
	}

	var result TransactionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding error: %w", err)
	}

	return &result, nil
}

func (g *gateway) Close(ctx context.Context, outTradeNo string) error {
	path := fmt.Sprintf(closeEndpoint, url.PathEscape(outTradeNo))
	return g.post(ctx, path, CloseRequest{MchID: g.cfg.MchID}, nil)
}

// ParseNotification authenticates and opens an inbound webhook payload.
// Callers must treat any returned error as a rejection without state change.
func (g *gateway) ParseNotification(headers map[string]string, body []byte) (*TransactionResult, error) {
	timestamp := headers[HeaderTimestamp]
	nonce := headers[HeaderNonce]
	signature := headers[HeaderSignature]

	if timestamp == "" || nonce == "" || signature == "" {
		return nil, ErrSignatureInvalid
	}

	if err := g.verifier.Verify(timestamp, nonce, body, signature); err != nil {
		return nil, err
	}

	var notification Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		return nil, ErrDecryptFailed
	}

	plaintext, err := DecryptResource(g.cfg.APIv3Key,
		notification.Resource.AssociatedData, notification.Resource.Nonce, notification.Resource.Ciphertext)
	if err != nil {
		return nil, err
	}

	var result TransactionResult
	if err := json.Unmarshal(plaintext, &result); err != nil {
		return nil, ErrDecryptFailed
	}

	return &result, nil
}

// decodeError maps the status to its sentinel and, when the gateway returned
// a structured error body, wraps the sentinel with the reported code and
// message.
func decodeError(statusCode int, body io.Reader) error {
	err := MapStatusToError(statusCode)

	var detail errorResponse
	if decodeErr := json.NewDecoder(body).Decode(&detail); decodeErr != nil || detail.Code == "" {
		return err
	}

	return fmt.Errorf("%w: %s %s", err, detail.Code, detail.Message)
}

func (g *gateway) post(ctx context.Context, path string, request any, response any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encoding error: %w", err)
	}

	auth, err := g.signer.AuthorizationHeader("POST", path, body)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": auth,
	}

	resp, err := g.client.Post(ctx, g.cfg.BaseURL+path, bytes.NewReader(body), headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != StatusOK && resp.StatusCode != StatusNoContent {
		return decodeError(resp.StatusCode, resp.Body)
	}

	if response == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("decoding error: %w", err)
	}

	return nil
}
