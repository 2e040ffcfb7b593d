// Gói githubapi cung cấp một caller cho GitHub API, để lấy dữ liệu người dùng,
// repository, event và lịch contribution.
// Nó xử lý xác thực bằng mã thông báo truy cập nếu được cung cấp.
// Caller chịu trách nhiệm thực hiện yêu cầu API và ánh xạ lỗi về phân loại
// NotFound / RateLimited / Transient.

package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/log"
)

type Caller struct {
	Logger     log.Logger
	Config     *cfg.Config
	httpClient *http.Client
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	return &Caller{
		Logger: logger,
		Config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// HandleRateLimit xử lý rate limit dựa trên thông tin từ header API
func (c *Caller) HandleRateLimit(ctx context.Context, resp *http.Response) (bool, error) {
	rateRemaining := resp.Header.Get("X-RateLimit-Remaining")

	if resp.StatusCode == http.StatusForbidden && rateRemaining == "0" {
		resetTimeStr := resp.Header.Get("X-RateLimit-Reset")
		resetTimeInt, err := strconv.ParseInt(resetTimeStr, 10, 64)

		if err != nil {
			// Nếu không thể parse được thời gian reset, sử dụng cấu hình mặc định
			c.Logger.Warn(ctx, "Rate limit hit! Cannot determine reset time, assuming %d minutes", c.Config.GithubApi.RateLimitResetMin)
			return true, fmt.Errorf("%w: reset time unknown", ErrRateLimited)
		}

		resetTime := time.Unix(resetTimeInt, 0)
		c.Logger.Warn(ctx, "Rate limit hit! GitHub API quota exhausted until %v", resetTime.Format(time.RFC3339))
		return true, fmt.Errorf("%w: reset at %s", ErrRateLimited, resetTime.Format(time.RFC3339))
	}

	return false, nil
}

func (c *Caller) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Config.GithubApi.AccessToken))
	}
	return req, nil
}

// FetchUser lấy hồ sơ người dùng qua REST API
func (c *Caller) FetchUser(ctx context.Context, username string) (*UserResponse, error) {
	url := fmt.Sprintf("%s/users/%s", c.Config.GithubApi.ApiUrl, username)

	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewTransientError("fetch user", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("fetch user", err)
	}
	defer resp.Body.Close()

	// Kiểm tra rate limit
	isRateLimited, rateLimitErr := c.HandleRateLimit(ctx, resp)
	if isRateLimited {
		return nil, rateLimitErr
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, username)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransientError("fetch user", fmt.Errorf("unexpected status: %s", resp.Status))
	}

	user := &UserResponse{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, NewTransientError("fetch user", err)
	}

	return user, nil
}

// FetchAllRepos lấy toàn bộ repository của người dùng, theo trang.
// Tiếp tục gọi trang kế tiếp cho tới khi nhận được trang ngắn hơn per_page.
// Bất kỳ trang nào lỗi thì huỷ toàn bộ, không trả danh sách một phần.
func (c *Caller) FetchAllRepos(ctx context.Context, username string) ([]RepoResponse, error) {
	perPage := c.Config.GithubApi.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	var all []RepoResponse
	page := 1
	for {
		repos, err := c.fetchRepoPage(ctx, username, page, perPage)
		if err != nil {
			return nil, err
		}

		all = append(all, repos...)
		if len(repos) < perPage {
			break
		}
		page++
	}

	c.Logger.Debug(ctx, "Fetched %d repositories for %s", len(all), username)
	return all, nil
}

func (c *Caller) fetchRepoPage(ctx context.Context, username string, page, perPage int) ([]RepoResponse, error) {
	url := fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d", c.Config.GithubApi.ApiUrl, username, perPage, page)

	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewTransientError("fetch repos", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("fetch repos", err)
	}
	defer resp.Body.Close()

	// Kiểm tra rate limit
	isRateLimited, rateLimitErr := c.HandleRateLimit(ctx, resp)
	if isRateLimited {
		return nil, rateLimitErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransientError("fetch repos", fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var repos []RepoResponse
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, NewTransientError("fetch repos", err)
	}

	return repos, nil
}

// FetchEventsForYear lấy event của người dùng trong phạm vi một năm dương lịch
func (c *Caller) FetchEventsForYear(ctx context.Context, username string, year int) ([]EventResponse, error) {
	from := fmt.Sprintf("%d-01-01T00:00:00Z", year)
	to := fmt.Sprintf("%d-12-31T23:59:59Z", year)
	url := fmt.Sprintf("%s/users/%s/events?per_page=100&since=%s&until=%s", c.Config.GithubApi.ApiUrl, username, from, to)

	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewTransientError("fetch events", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("fetch events", err)
	}
	defer resp.Body.Close()

	// Kiểm tra rate limit
	isRateLimited, rateLimitErr := c.HandleRateLimit(ctx, resp)
	if isRateLimited {
		return nil, rateLimitErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransientError("fetch events", fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var events []EventResponse
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewTransientError("fetch events", err)
	}

	return events, nil
}

// FetchContributionCalendar truy vấn GraphQL API lấy lịch contribution
// trong cửa sổ [from, to]. Khi withDays là true, phản hồi kèm theo
// số contribution của từng ngày để phục vụ tính streak.
func (c *Caller) FetchContributionCalendar(ctx context.Context, username string, from, to time.Time, withDays bool) (*CalendarResponse, error) {
	calendarFields := "totalContributions"
	if withDays {
		calendarFields = "totalContributions weeks { contributionDays { contributionCount date } }"
	}

	query := fmt.Sprintf(
		`{ user(login: %q) { contributionsCollection(from: %q, to: %q) { contributionCalendar { %s } } } }`,
		username,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
		calendarFields,
	)

	body, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, NewTransientError("contribution calendar", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.Config.GithubApi.GraphqlUrl, body)
	if err != nil {
		return nil, NewTransientError("contribution calendar", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("contribution calendar", err)
	}
	defer resp.Body.Close()

	// Kiểm tra rate limit
	isRateLimited, rateLimitErr := c.HandleRateLimit(ctx, resp)
	if isRateLimited {
		return nil, rateLimitErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewTransientError("contribution calendar", fmt.Errorf("unexpected status: %s", resp.Status))
	}

	graphqlResp := &graphqlCalendarResponse{}
	if err := json.NewDecoder(resp.Body).Decode(graphqlResp); err != nil {
		return nil, NewTransientError("contribution calendar", err)
	}

	// GraphQL trả 200 kể cả khi có lỗi, phải kiểm tra mảng errors
	if len(graphqlResp.Errors) > 0 {
		first := graphqlResp.Errors[0]
		if first.Type == "NOT_FOUND" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, username)
		}
		if first.Type == "RATE_LIMITED" {
			return nil, fmt.Errorf("%w: graphql quota", ErrRateLimited)
		}
		return nil, NewTransientError("contribution calendar", fmt.Errorf("graphql: %s", first.Message))
	}

	if graphqlResp.Data.User == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, username)
	}

	calendar := graphqlResp.Data.User.ContributionsCollection.ContributionCalendar
	return &calendar, nil
}
