package githubapi

import (
	"errors"
	"fmt"
)

// Phân loại lỗi của adapter: NotFound, RateLimited và Transient.
// Aggregator dựa vào phân loại này để quyết định hủy toàn bộ phiên fetch.
var (
	ErrNotFound    = errors.New("github: user not found")
	ErrRateLimited = errors.New("github: rate limit exceeded")
)

// TransientError bao các lỗi không thành công còn lại của GitHub API
// (HTTP non-2xx, payload hỏng, lỗi mạng)
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("github: transient error in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}
