package stats

import "github.com/gitstats/git-stats/internal/badge"

// LanguageUsage là một cặp (ngôn ngữ, số repo dùng ngôn ngữ đó)
type LanguageUsage struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// Profile là bản ghi tổng hợp hoàn chỉnh của một user sau một lần fetch
// thành công. Hoặc đầy đủ, hoặc không tồn tại - không có profile dở dang.
type Profile struct {
	Login           string `json:"login"`
	AvatarUrl       string `json:"avatar_url"`
	HtmlUrl         string `json:"html_url"`
	Email           string `json:"email,omitempty"`
	TwitterHandle   string `json:"twitter,omitempty"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	PublicRepoCount int    `json:"public_repos"`

	LanguageUsage           []LanguageUsage `json:"language_usage"`
	LifetimeContributions   int             `json:"lifetime_contributions"`
	CurrentStreak           int             `json:"current_streak"`
	OpenSourceContributions int             `json:"open_source_contributions"`

	ContributionBadge badge.Badge `json:"contribution_badge"`
	FollowerBadge     badge.Badge `json:"follower_badge"`
}

// TopLanguages trả tối đa n ngôn ngữ dùng nhiều nhất
func (p *Profile) TopLanguages(n int) []string {
	if n > len(p.LanguageUsage) {
		n = len(p.LanguageUsage)
	}
	names := make([]string, 0, n)
	for _, usage := range p.LanguageUsage[:n] {
		names = append(names, usage.Language)
	}
	return names
}
