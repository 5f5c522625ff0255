package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// Client — n8n 自动化平台客户端
// 两个 webhook：发货通知（装箱单推送给物流流程）和船名→客户名的 CRM 查询
// =============================================================================

// Client n8n webhook 客户端
type Client struct {
	shippingURL    string       // 发货通知 webhook
	vesselCheckURL string       // 船名查询 webhook
	httpClient     *http.Client // HTTP客户端
}

// NewClient 创建 n8n 客户端实例
func NewClient(shippingURL, vesselCheckURL string) *Client {
	return &Client{
		shippingURL:    shippingURL,
		vesselCheckURL: vesselCheckURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FileRef 附件下载引用
type FileRef struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	DownloadURL string `json:"download_url"`
}

// SeapodInfo 发货载荷里的设备版本信息
type SeapodInfo struct {
	Serial        string `json:"serial"`
	HWVersion     string `json:"hw_version"`
	SWVersion     string `json:"sw_version"`
	SeapodVersion string `json:"seapod_version"`
}

// ShipmentPayload 发货通知载荷
type ShipmentPayload struct {
	Order       interface{} `json:"order"`
	Items       interface{} `json:"items"`
	Files       []FileRef   `json:"files"`
	SeapodInfo  *SeapodInfo `json:"seapod_info"`
	TriggeredAt time.Time   `json:"triggered_at"`
}

// NotifyShipment 推送发货载荷，非 2xx 一律视为失败。
// 调用方负责失败后的处理（订单保持原状态），这里不做重试。
func (c *Client) NotifyShipment(ctx context.Context, payload *ShipmentPayload) error {
	if c.shippingURL == "" {
		return fmt.Errorf("shipping webhook url not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode shipment payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.shippingURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create shipment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post shipment webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("shipment webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// LookupVessel 船名→客户名。返回 found=false 表示 CRM 查不到该船。
func (c *Client) LookupVessel(ctx context.Context, vessel string) (string, bool, error) {
	if vessel == "" {
		return "", false, fmt.Errorf("vessel name is required")
	}
	if c.vesselCheckURL == "" {
		return "", false, fmt.Errorf("vessel check webhook url not configured")
	}

	body, _ := json.Marshal(map[string]string{"vessel": vessel})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.vesselCheckURL, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("create vessel lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("post vessel lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("vessel lookup returned %d", resp.StatusCode)
	}

	// CRM 流程返回 {"account": "MSC"} 或 {"account": null}
	var result struct {
		Account *string `json:"account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, fmt.Errorf("decode vessel lookup response: %w", err)
	}
	if result.Account == nil || *result.Account == "" {
		return "", false, nil
	}
	return *result.Account, true, nil
}
