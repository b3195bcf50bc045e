package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"AquaLink/config"
	"AquaLink/pkg/logger"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	openapiutil "github.com/alibabacloud-go/openapi-util/service"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	pkgerrors "AquaLink/pkg/errors"
)

type AliyunClient struct {
	client       *openapi.Client
	signName     string
	templateCode string
}

// NewAliyunClient 创建阿里云 SMS 客户端
// 使用环境变量自动获取 AccessKey 和 SecretKey
// 需要设置环境变量：ALIBABA_CLOUD_ACCESS_KEY_ID 和 ALIBABA_CLOUD_ACCESS_KEY_SECRET
func NewAliyunClient() (*AliyunClient, error) {
	// 使用环境变量或配置文件自动获取凭据（推荐方式）
	// https://help.aliyun.com/document_detail/378661.html
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	openapiConfig := &openapi.Config{
		Credential: cred,
		Endpoint:   tea.String("dysmsapi.aliyuncs.com"),
	}

	client, err := openapi.NewClient(openapiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun client: %w", err)
	}

	cfg := config.Cfg
	if cfg.SMSSignName == "" {
		return nil, pkgerrors.ErrSignNameRequired
	}
	if cfg.SMSTemplateCode == "" {
		return nil, pkgerrors.ErrTemplateCodeRequired
	}

	return &AliyunClient{
		client:       client,
		signName:     cfg.SMSSignName,
		templateCode: cfg.SMSTemplateCode,
	}, nil
}

func (c *AliyunClient) createApiInfo(action string) *openapi.Params {
	return &openapi.Params{
		Action:      tea.String(action),
		Version:     tea.String("2017-05-25"),
		Protocol:    tea.String("HTTPS"),
		Method:      tea.String("POST"),
		AuthType:    tea.String("AK"),
		Style:       tea.String("RPC"),
		Pathname:    tea.String("/"),
		ReqBodyType: tea.String("json"),
		BodyType:    tea.String("json"),
	}
}

// Send 通过 SendSms API 发送告警短信
// 阿里云不支持自由正文，body 作为模板参数 content 注入
func (c *AliyunClient) Send(ctx context.Context, phone, body string) (*SendResponse, error) {
	templateParam, err := json.Marshal(map[string]string{"content": body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template param: %w", err)
	}

	params := c.createApiInfo("SendSms")

	queries := map[string]interface{}{
		"PhoneNumbers":  tea.String(phone),
		"SignName":      tea.String(c.signName),
		"TemplateCode":  tea.String(c.templateCode),
		"TemplateParam": tea.String(string(templateParam)),
	}

	runtime := &util.RuntimeOptions{}
	request := &openapi.OpenApiRequest{
		Query: openapiutil.Query(queries),
	}

	resp, err := c.client.CallApi(params, request, runtime)
	if err != nil {
		logger.Logger.Error("Failed to send SMS",
			zap.String("phone", phone),
			zap.String("template", c.templateCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp["statusCode"] != nil {
		statusCode := resp["statusCode"].(int)
		if statusCode != 200 {
			logger.Logger.Error("SMS API returned error",
				zap.Int("statusCode", statusCode),
				zap.Any("body", resp["body"]),
			)
			return nil, fmt.Errorf("SMS API error: statusCode=%d", statusCode)
		}
	}

	result := &SendResponse{Provider: "aliyun", Code: "OK"}

	if resp["body"] != nil {
		bodyBytes, _ := json.Marshal(resp["body"])
		var bodyMap map[string]interface{}
		if err := json.Unmarshal(bodyBytes, &bodyMap); err == nil {
			if code, ok := bodyMap["Code"].(string); ok {
				result.Code = code
			}
			if msg, ok := bodyMap["Message"].(string); ok {
				result.Message = msg
			}
			if reqID, ok := bodyMap["RequestId"].(string); ok {
				result.RequestID = reqID
			}
			if bizID, ok := bodyMap["BizId"].(string); ok {
				result.MessageID = bizID
			}
		}
	}

	if result.Code != "OK" {
		logger.Logger.Error("SMS send failed",
			zap.String("code", result.Code),
			zap.String("message", result.Message),
		)
		return nil, fmt.Errorf("SMS send failed: %s - %s", result.Code, result.Message)
	}

	logger.Logger.Info("SMS sent successfully",
		zap.String("phone", phone),
		zap.String("template", c.templateCode),
	)

	return result, nil
}
