package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 派发相关指标
	DispatchTotal    metric.Int64Counter
	DispatchDuration metric.Float64Histogram

	// 短信相关指标
	SMSSentTotal    metric.Int64Counter
	SMSSendDuration metric.Float64Histogram
	ResendTotal     metric.Int64Counter

	// HTTP 相关指标
	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("aqualink")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.DispatchTotal, err = meter.Int64Counter(
		"alert_dispatch_total",
		metric.WithDescription("Total number of alert dispatches"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return err
	}

	metrics.DispatchDuration, err = meter.Float64Histogram(
		"alert_dispatch_duration_seconds",
		metric.WithDescription("Time spent dispatching an alert in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	metrics.SMSSendDuration, err = meter.Float64Histogram(
		"sms_send_duration_seconds",
		metric.WithDescription("Time spent sending SMS in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.ResendTotal, err = meter.Int64Counter(
		"alert_resend_total",
		metric.WithDescription("Total number of resend attempts"),
		metric.WithUnit("{resend}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerRequestTotal, err = meter.Int64Counter(
		"http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerDuration, err = meter.Float64Histogram(
		"http_server_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordDispatch 记录一次派发结果
func (m *OTelMetrics) RecordDispatch(ctx context.Context, outcome string, isTest bool) {
	m.DispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("is_test", isTest),
	))
}

// RecordSMS 记录一次短信投递结果
func (m *OTelMetrics) RecordSMS(ctx context.Context, status string) {
	m.SMSSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordResend 记录一次重发
func (m *OTelMetrics) RecordResend(ctx context.Context, status string) {
	m.ResendTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}
