package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SMSGatewayClient sends messages through a JSON HTTP SMS gateway.
type SMSGatewayClient struct {
	URL        string
	APIKey     string
	SenderName string
	HTTPClient *http.Client
}

func NewSMSGatewayClient(url, apiKey, senderName string) *SMSGatewayClient {
	return &SMSGatewayClient{
		URL:        url,
		APIKey:     apiKey,
		SenderName: senderName,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type smsGatewayResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (s *SMSGatewayClient) Send(ctx context.Context, recipientPhone, message string) error {
	payload := map[string]interface{}{
		"sender":  s.SenderName,
		"phone":   recipientPhone,
		"message": message,
	}

	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway failed with status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var gatewayResp smsGatewayResponse
	if err := json.Unmarshal(respBody, &gatewayResp); err != nil {
		return err
	}

	if gatewayResp.Code != "" && gatewayResp.Code != "000" {
		return fmt.Errorf("sms gateway error: %s", gatewayResp.Detail)
	}

	return nil
}
