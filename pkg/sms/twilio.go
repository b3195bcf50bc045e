package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"AquaLink/config"
	"AquaLink/pkg/logger"
)

type TwilioClient struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioClient 创建 Twilio SMS 客户端
// 需要配置 TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_PHONE_NUMBER
func NewTwilioClient() (*TwilioClient, error) {
	cfg := config.Cfg

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("twilio credentials are not configured")
	}
	if cfg.TwilioPhoneNumber == "" {
		return nil, fmt.Errorf("twilio phone number is not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioClient{
		client: client,
		from:   cfg.TwilioPhoneNumber,
	}, nil
}

// Send 通过 Twilio Messages API 发送，body 即短信正文
func (c *TwilioClient) Send(ctx context.Context, phone, body string) (*SendResponse, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(phone)
	params.SetBody(body)

	resp, err := c.client.ApiV2010.CreateMessage(params)
	if err != nil {
		logger.Logger.Error("Failed to send SMS",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp.ErrorCode != nil {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		logger.Logger.Error("SMS send failed",
			zap.Int("code", *resp.ErrorCode),
			zap.String("message", msg),
		)
		return nil, fmt.Errorf("SMS send failed: %d - %s", *resp.ErrorCode, msg)
	}

	result := &SendResponse{
		Provider: "twilio",
		Code:     "OK",
	}
	if resp.Sid != nil {
		result.MessageID = *resp.Sid
	}
	if resp.Status != nil {
		result.Message = *resp.Status
	}

	logger.Logger.Info("SMS sent successfully",
		zap.String("phone", phone),
		zap.String("sid", result.MessageID),
	)

	return result, nil
}
