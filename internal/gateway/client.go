// Gói gateway gọi tới dịch vụ leaderboard/user-count bên ngoài.
// Lỗi của gateway không làm hỏng Profile đã tính xong: caller báo lỗi
// riêng nhưng vẫn giữ kết quả.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/log"
)

// GatewayError đánh dấu lỗi phía dịch vụ persistence,
// phân biệt với lỗi của pipeline tổng hợp
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// TopContribution là bản ghi dẫn đầu về contribution
type TopContribution struct {
	Username      string `json:"username"`
	Contributions int    `json:"contributions"`
}

// TopFollower là bản ghi dẫn đầu về follower
type TopFollower struct {
	Username  string `json:"username"`
	Followers int    `json:"followers"`
}

// LeaderboardSnapshot là phản hồi của update-leaderboard
type LeaderboardSnapshot struct {
	TopContributions TopContribution `json:"topContributions"`
	TopFollowers     TopFollower     `json:"topFollowers"`
}

type updateLeaderboardRequest struct {
	Username      string `json:"username"`
	Contributions int    `json:"contributions"`
	Followers     int    `json:"followers"`
	AvatarUrl     string `json:"avatar_url"`
}

type userCountResponse struct {
	TotalUsers int64 `json:"totalUsers"`
}

type Client struct {
	Logger     log.Logger
	Config     *cfg.Config
	httpClient *http.Client
}

func NewClient(logger log.Logger, config *cfg.Config) (*Client, error) {
	timeout := time.Duration(config.Gateway.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		Logger:     logger,
		Config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// UpdateLeaderboard gửi số liệu của user vừa fetch và nhận lại
// các bản ghi dẫn đầu hiện tại
func (c *Client) UpdateLeaderboard(ctx context.Context, username string, contributions, followers int, avatarUrl string) (*LeaderboardSnapshot, error) {
	body := updateLeaderboardRequest{
		Username:      username,
		Contributions: contributions,
		Followers:     followers,
		AvatarUrl:     avatarUrl,
	}

	snapshot := &LeaderboardSnapshot{}
	if err := c.post(ctx, "/api/update-leaderboard", body, snapshot); err != nil {
		return nil, &GatewayError{Op: "update-leaderboard", Err: err}
	}
	return snapshot, nil
}

// IncrementUserCount tăng bộ đếm khách toàn cục và trả tổng mới
func (c *Client) IncrementUserCount(ctx context.Context) (int64, error) {
	result := &userCountResponse{}
	if err := c.post(ctx, "/api/increment-user", nil, result); err != nil {
		return 0, &GatewayError{Op: "increment-user", Err: err}
	}
	return result.TotalUsers, nil
}

// UserCount đọc bộ đếm khách hiện tại
func (c *Client) UserCount(ctx context.Context) (int64, error) {
	url := c.Config.Gateway.BaseUrl + "/api/user-count"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &GatewayError{Op: "user-count", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &GatewayError{Op: "user-count", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &GatewayError{Op: "user-count", Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	result := &userCountResponse{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return 0, &GatewayError{Op: "user-count", Err: err}
	}
	return result.TotalUsers, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonBytes)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.Gateway.BaseUrl+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
