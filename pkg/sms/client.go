package sms

import (
	"context"
	"fmt"
	"sync"

	"AquaLink/config"
	"AquaLink/pkg/logger"

	"go.uber.org/zap"
)

// SendResponse 网关返回的发送结果
type SendResponse struct {
	MessageID string // 网关侧消息 ID，用于写入 notification_logs
	Code      string // 网关返回码，"OK" 表示接受
	Message   string // 网关返回的描述信息
	RequestID string
	Provider  string // aliyun / twilio / mock
}

// Client 短信网关客户端接口
// body 为完整的短信正文，由上层（dispatch 服务）拼好
type Client interface {
	Send(ctx context.Context, phone, body string) (*SendResponse, error)
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

// Init 初始化 SMS 客户端，根据 SMS_PROVIDER 选择实现
func Init() error {
	smsOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.SMSProvider {
		case "aliyun":
			smsClient, smsErr = NewAliyunClient()
		case "twilio":
			smsClient, smsErr = NewTwilioClient()
		case "mock":
			smsClient = NewMockClient()
		default:
			smsErr = fmt.Errorf("unsupported SMS provider: %s", cfg.SMSProvider)
		}

		if smsErr != nil {
			logger.Logger.Error("Failed to initialize SMS client", zap.Error(smsErr))
			return
		}

		logger.Logger.Info("SMS client initialized successfully",
			zap.String("provider", cfg.SMSProvider),
		)
	})

	return smsErr
}

// SetClient 注入客户端实例，测试用
func SetClient(c Client) {
	smsClient = c
}

func GetClient() Client {
	if smsClient == nil {
		panic("SMS client not initialized, call sms.Init() first")
	}
	return smsClient
}

func Send(ctx context.Context, phone, body string) (*SendResponse, error) {
	return GetClient().Send(ctx, phone, body)
}
