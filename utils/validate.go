package utils

import (
	"regexp"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidatePhone 校验 E.164 格式手机号，如 +6591234567
func ValidatePhone(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// ValidateCoordinates 校验经纬度取值范围
func ValidateCoordinates(latitude, longitude float64) bool {
	if latitude < -90 || latitude > 90 {
		return false
	}
	if longitude < -180 || longitude > 180 {
		return false
	}
	return true
}

// ValidateAccuracy 定位精度（米）必须非负，nil 表示平台未提供
func ValidateAccuracy(accuracy *float64) bool {
	return accuracy == nil || *accuracy >= 0
}

// ValidateCountdown 倒计时秒数范围 1-30
func ValidateCountdown(seconds int) bool {
	return seconds >= 1 && seconds <= 30
}
