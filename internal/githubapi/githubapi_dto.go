// Gói dto cung cấp các đối tượng truyền dữ liệu cho dự án
// Chuyển đổi phản hồi GitHub API thành cấu trúc Go

package githubapi

import "time"

type UserResponse struct {
	Login           string `json:"login"`
	AvatarUrl       string `json:"avatar_url"`
	HtmlUrl         string `json:"html_url"`
	Email           string `json:"email"`
	TwitterUsername string `json:"twitter_username"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	PublicRepos     int    `json:"public_repos"`
}

type RepoResponse struct {
	Id       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Language string `json:"language"`
	Private  bool   `json:"private"`
	Fork     bool   `json:"fork"`
	// Có thể thêm nhiều trường tại đây
}

type EventRepo struct {
	Id      int64  `json:"id"`
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

type EventPullRequest struct {
	Merged bool `json:"merged"`
}

type EventCommit struct {
	Sha string `json:"sha"`
}

type EventPayload struct {
	Action      string            `json:"action"`
	PullRequest *EventPullRequest `json:"pull_request"`
	Commits     []EventCommit     `json:"commits"`
}

type EventResponse struct {
	Id        string       `json:"id"`
	Type      string       `json:"type"`
	Repo      EventRepo    `json:"repo"`
	Payload   EventPayload `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
}

// CalendarResponse ánh xạ contributionsCollection.contributionCalendar
// của GraphQL API
type CalendarResponse struct {
	TotalContributions int            `json:"totalContributions"`
	Weeks              []CalendarWeek `json:"weeks"`
}

type CalendarWeek struct {
	ContributionDays []CalendarDay `json:"contributionDays"`
}

type CalendarDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
}

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlCalendarResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar CalendarResponse `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}
