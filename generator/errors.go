package generator

import (
	"context"
	"errors"
	"io"
	"net"

	openai "github.com/openai/openai-go"
)

var (
	// ErrGenerationTransient 标记可重试的失败：超时、连接错误、限流和 5xx。
	ErrGenerationTransient = errors.New("generation: transient failure")
	// ErrGenerationFatal 标记不可重试的失败，立即返回。
	ErrGenerationFatal = errors.New("generation: fatal failure")
	// ErrGenerationExhausted 在所有重试用尽后返回。
	ErrGenerationExhausted = errors.New("generation: retries exhausted")
)

// Transient 判断一次调用失败是否值得重试。
// ctx 已结束时一律不重试。
func Transient(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrGenerationFatal) {
		return false
	}
	if errors.Is(err, ErrGenerationTransient) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch code := apiErr.StatusCode; {
		case code == 408, code == 409, code == 429, code >= 500:
			return true
		default:
			return false
		}
	}
	// 单次请求超时，外层 ctx 仍有效
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
