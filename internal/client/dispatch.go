package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"AquaLink/internal/model/dto"
)

// DispatchClient 走 HTTP 调服务端派发接口，挂在触发机的 Dispatcher 口上
type DispatchClient struct {
	hc      *client.Client
	baseURL string
	token   string
}

type errorEnvelope struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

// APIError 服务端返回的业务错误
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// RetryAfter 仅限流错误携带，单位秒
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: %s (retry after %ds)", e.Code, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewDispatchClient(baseURL, token string) (*DispatchClient, error) {
	hc, err := client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &DispatchClient{hc: hc, baseURL: baseURL, token: token}, nil
}

// Dispatch POST /v1/alerts
func (c *DispatchClient) Dispatch(ctx context.Context, req dto.DispatchRequest) (*dto.DispatchSummary, error) {
	body, status, err := c.post(ctx, "/v1/alerts", req)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusCreated && status != consts.StatusOK {
		return nil, decodeAPIError(status, body)
	}

	var out struct {
		Data dto.DispatchSummary `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode dispatch response: %w", err)
	}
	return &out.Data, nil
}

// Resolve POST /v1/alerts/{id}/resolve
func (c *DispatchClient) Resolve(ctx context.Context, alertID int64) (*dto.AlertItem, error) {
	body, status, err := c.post(ctx, fmt.Sprintf("/v1/alerts/%d/resolve", alertID), nil)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, decodeAPIError(status, body)
	}

	var out struct {
		Data dto.AlertItem `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode resolve response: %w", err)
	}
	return &out.Data, nil
}

// GetActive GET /v1/alerts/active，没有活跃报警时返回 nil
func (c *DispatchClient) GetActive(ctx context.Context) (*dto.AlertItem, error) {
	body, status, err := c.do(ctx, consts.MethodGet, "/v1/alerts/active", nil)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, decodeAPIError(status, body)
	}

	var out struct {
		Data *dto.AlertItem `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode active alert response: %w", err)
	}
	return out.Data, nil
}

// GetSettings GET /v1/settings/emergency
func (c *DispatchClient) GetSettings(ctx context.Context) (*dto.EmergencySettingsItem, error) {
	body, status, err := c.do(ctx, consts.MethodGet, "/v1/settings/emergency", nil)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, decodeAPIError(status, body)
	}

	var out struct {
		Data dto.EmergencySettingsItem `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode settings response: %w", err)
	}
	return &out.Data, nil
}

func (c *DispatchClient) post(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	return c.do(ctx, consts.MethodPost, path, payload)
}

func (c *DispatchClient) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		req.SetBody(body)
	}

	if err := c.hc.Do(ctx, req, resp); err != nil {
		return nil, 0, fmt.Errorf("request %s %s: %w", method, path, err)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, resp.StatusCode(), nil
}

func decodeAPIError(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Code == "" {
		return &APIError{StatusCode: status, Code: "UNKNOWN", Message: string(body)}
	}

	apiErr := &APIError{
		StatusCode: status,
		Code:       env.Error.Code,
		Message:    env.Error.Message,
	}
	if v, ok := env.Error.Details["retry_after_seconds"]; ok {
		if f, ok := v.(float64); ok {
			apiErr.RetryAfter = int(f)
		}
	}
	return apiErr
}
