package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/httpclient"
)

type Config struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Request struct {
	OrderID       int64  `json:"order_id"`
	OrderType     string `json:"order_type"`
	ContactTarget string `json:"contact_target"`
	ContactMethod string `json:"contact_method,omitempty"`
	Content       string `json:"content"`
	Remark        string `json:"remark,omitempty"`
}

type Response struct {
	DispatchID string `json:"dispatch_id"`
	Status     string `json:"status"`
}

// Dispatcher hands a fulfillable order to the delivery backend that performs
// the actual SMS, call, or human relay.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (Response, error)
}

type dispatcher struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewDispatcher(cfg Config, client httpclient.HTTPClient) Dispatcher {
	return &dispatcher{cfg: cfg, client: client}
}

func (d *dispatcher) Dispatch(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := d.client.Post(ctx, d.cfg.URL, bytes.NewReader(body), headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Response{}, errors.New(ErrorCodeTimeout)
		}

		return Response{}, errors.New(ErrorCodeNetworkError)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest {
			return Response{}, errors.New(ErrorCodeInvalidTarget)
		}

		return Response{}, errors.New(ErrorCodeServerError)
	}

	var res Response
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Response{}, errors.New(ErrorCodeServerError)
	}

	return res, nil
}
