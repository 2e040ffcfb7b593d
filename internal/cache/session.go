// Gói cache cung cấp bộ nhớ đệm phạm vi một phiên fetch.
// Mỗi lần aggregation tạo một Session mới, dùng xong bỏ, không chia sẻ
// giữa các phiên để tránh lẫn dữ liệu giữa các user.

package cache

import "fmt"

// Session là key/value store không TTL, không eviction.
// Chỉ một goroutine sở hữu một Session nên không cần khoá.
type Session struct {
	entries map[string]interface{}
	misses  int
}

func NewSession() *Session {
	return &Session{
		entries: make(map[string]interface{}),
	}
}

// GetOrFetch trả giá trị đã có dưới key, hoặc gọi producer rồi lưu kết quả.
// Lỗi của producer không được lưu lại.
func (s *Session) GetOrFetch(key string, producer func() (interface{}, error)) (interface{}, error) {
	if value, ok := s.entries[key]; ok {
		return value, nil
	}

	value, err := producer()
	if err != nil {
		return nil, err
	}

	s.entries[key] = value
	s.misses++
	return value, nil
}

// Len trả số entry hiện có
func (s *Session) Len() int {
	return len(s.entries)
}

// Misses trả số lần producer đã được gọi
func (s *Session) Misses() int {
	return s.misses
}

// Key tạo khoá dạng resource_username
func Key(resource, username string) string {
	return fmt.Sprintf("%s_%s", resource, username)
}

// YearKey tạo khoá dạng resource_username_year cho tài nguyên theo năm
func YearKey(resource, username string, year int) string {
	return fmt.Sprintf("%s_%s_%d", resource, username, year)
}
