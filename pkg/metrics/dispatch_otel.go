package metrics

import (
	"context"
)

// 包级辅助函数，指标未初始化时（单测）全部是空操作

// RecordDispatchSuccess 记录派发成功
func RecordDispatchSuccess(ctx context.Context, isTest bool) {
	if m := GetMetrics(); m != nil {
		m.RecordDispatch(ctx, "success", isTest)
	}
}

// RecordDispatchRejected 记录派发被限流拒绝
func RecordDispatchRejected(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordDispatch(ctx, "rate_limited", false)
	}
}

// RecordDispatchFailed 记录派发失败
func RecordDispatchFailed(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordDispatch(ctx, "failed", false)
	}
}

// RecordSMSSuccess 记录短信投递成功
func RecordSMSSuccess(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordSMS(ctx, "delivered")
	}
}

// RecordSMSFailure 记录短信投递失败
func RecordSMSFailure(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordSMS(ctx, "failed")
	}
}

// RecordResendSuccess 记录重发成功
func RecordResendSuccess(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordResend(ctx, "delivered")
	}
}

// RecordResendFailure 记录重发失败
func RecordResendFailure(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordResend(ctx, "failed")
	}
}
