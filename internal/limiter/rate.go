package limiter

import (
	"context"
	"sync"
	"time"
)

// Giới hạn số lượng request trong 1 giây
type RateLimiter struct {
	requestTimes []time.Time
	maxRequests  int
	retryDelay   time.Duration
	mu           sync.Mutex
}

func NewRateLimiter(maxRequests int, retryDelay time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if retryDelay <= 0 {
		retryDelay = 100 * time.Millisecond
	}
	return &RateLimiter{
		requestTimes: make([]time.Time, 0, maxRequests),
		maxRequests:  maxRequests,
		retryDelay:   retryDelay,
	}
}

// Allow kiểm tra xem có thể thực hiện request mới hay không
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	oneSecondAgo := now.Add(-1 * time.Second)

	// Loại bỏ các request cũ hơn 1 giây
	validTimes := make([]time.Time, 0, len(r.requestTimes))
	for _, t := range r.requestTimes {
		if t.After(oneSecondAgo) {
			validTimes = append(validTimes, t)
		}
	}
	r.requestTimes = validTimes

	// Nếu số lượng request trong 1 giây vừa qua nhỏ hơn giới hạn
	// thì add request mới và cho phép thực hiện
	if len(r.requestTimes) < r.maxRequests {
		r.requestTimes = append(r.requestTimes, now)
		return true
	}

	return false
}

// Wait chặn cho tới khi được phép gửi request kế tiếp hoặc context bị huỷ
func (r *RateLimiter) Wait(ctx context.Context) error {
	for !r.Allow() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}
	return nil
}
