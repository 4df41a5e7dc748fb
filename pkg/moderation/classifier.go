package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/httpclient"
)

const (
	StatusOK        = "ok"
	StatusForbidden = "forbidden"
)

type Config struct {
	Enable  bool          `mapstructure:"enable"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Result struct {
	Status         string   `json:"status"`
	ForbiddenWords []string `json:"forbidden_words,omitempty"`
}

func (r Result) Forbidden() bool {
	return r.Status == StatusForbidden
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

type classifier struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewClassifier(cfg Config, client httpclient.HTTPClient) Classifier {
	return &classifier{cfg: cfg, client: client}
}

func (c *classifier) Classify(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Result{}, err
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := c.client.Post(ctx, c.cfg.URL, bytes.NewReader(body), headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{}, errors.New(ErrorCodeTimeout)
		}

		return Result{}, errors.New(ErrorCodeNetworkError)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.New(ErrorCodeServerError)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, errors.New(ErrorCodeServerError)
	}

	return result, nil
}
