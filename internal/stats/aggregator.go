// Gói stats ghép nhiều lời gọi GitHub API thành một Profile nhất quán.
// Không có endpoint "tổng đời" phía GitHub nên aggregator phải lặp từng
// năm từ epoch year tới năm hiện tại và cộng dồn.
// Mọi lời gọi đều tuần tự, một request một thời điểm, qua rate limiter.

package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/internal/badge"
	"github.com/gitstats/git-stats/internal/cache"
	"github.com/gitstats/git-stats/internal/githubapi"
	"github.com/gitstats/git-stats/internal/limiter"
	"github.com/gitstats/git-stats/pkg/log"
)

// Source là phần adapter mà aggregator cần tới
type Source interface {
	FetchUser(ctx context.Context, username string) (*githubapi.UserResponse, error)
	FetchAllRepos(ctx context.Context, username string) ([]githubapi.RepoResponse, error)
	FetchEventsForYear(ctx context.Context, username string, year int) ([]githubapi.EventResponse, error)
	FetchContributionCalendar(ctx context.Context, username string, from, to time.Time, withDays bool) (*githubapi.CalendarResponse, error)
}

type Aggregator struct {
	Logger      log.Logger
	Config      *cfg.Config
	Source      Source
	rateLimiter *limiter.RateLimiter
}

func NewAggregator(logger log.Logger, config *cfg.Config, source Source) (*Aggregator, error) {
	rateLimiter := limiter.NewRateLimiter(
		config.GithubApi.RequestsPerSecond,
		time.Duration(config.GithubApi.ThrottleDelay)*time.Millisecond,
	)

	return &Aggregator{
		Logger:      logger,
		Config:      config,
		Source:      source,
		rateLimiter: rateLimiter,
	}, nil
}

// Fetch tạo một Profile hoàn chỉnh cho username tại thời điểm now.
// Bất kỳ bước nào lỗi thì huỷ toàn bộ, không trả profile một phần.
// now được truyền vào thay vì đọc đồng hồ để test kiểm soát được thời gian.
func (a *Aggregator) Fetch(ctx context.Context, username string, now time.Time) (*Profile, error) {
	startTime := time.Now()
	session := cache.NewSession()
	epochYear := a.Config.Stats.EpochYear
	if epochYear <= 0 {
		epochYear = 2008
	}
	currentYear := now.Year()

	// 1. Hồ sơ user. Lỗi ở đây thì dừng ngay, không gọi gì thêm.
	user, err := a.fetchUser(ctx, session, username)
	if err != nil {
		return nil, err
	}

	// 2. Toàn bộ repository, suy ra mức dùng ngôn ngữ
	repos, err := a.fetchRepos(ctx, session, username)
	if err != nil {
		return nil, err
	}
	languageUsage := countLanguages(repos)

	// 3. Tổng contribution trọn đời, cộng dồn từng năm
	lifetime := 0
	for year := epochYear; year <= currentYear; year++ {
		total, err := a.fetchYearTotal(ctx, session, username, year)
		if err != nil {
			return nil, fmt.Errorf("contributions for %d: %w", year, err)
		}
		lifetime += total
	}

	// 4. Streak hiện tại từ lịch theo ngày của năm nay
	streak, err := a.fetchStreak(ctx, session, username, now)
	if err != nil {
		return nil, err
	}

	// 5. Contribution mã nguồn mở: chỉ đếm PR đã merge trên repo công khai.
	// Push event không được tính để tránh đếm trùng cùng một thay đổi.
	openSource := 0
	for year := epochYear; year <= currentYear; year++ {
		count, err := a.fetchOpenSourceForYear(ctx, session, username, year)
		if err != nil {
			return nil, fmt.Errorf("events for %d: %w", year, err)
		}
		openSource += count
	}

	// 6. Huy hiệu
	contribBadge, followerBadge := badge.Classify(lifetime, user.Followers)

	// 7. Lắp ráp profile
	profile := &Profile{
		Login:                   user.Login,
		AvatarUrl:               user.AvatarUrl,
		HtmlUrl:                 user.HtmlUrl,
		Email:                   user.Email,
		TwitterHandle:           user.TwitterUsername,
		Followers:               user.Followers,
		Following:               user.Following,
		PublicRepoCount:         user.PublicRepos,
		LanguageUsage:           languageUsage,
		LifetimeContributions:   lifetime,
		CurrentStreak:           streak,
		OpenSourceContributions: openSource,
		ContributionBadge:       contribBadge,
		FollowerBadge:           followerBadge,
	}

	a.Logger.Info(ctx, "Aggregated profile for %s in %v: %d repos, %d contributions, streak %d, %d api calls",
		username, time.Since(startTime).Round(time.Millisecond), len(repos), lifetime, streak, session.Misses())

	return profile, nil
}

func (a *Aggregator) fetchUser(ctx context.Context, session *cache.Session, username string) (*githubapi.UserResponse, error) {
	value, err := session.GetOrFetch(cache.Key("user", username), func() (interface{}, error) {
		if err := a.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		return a.Source.FetchUser(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	return value.(*githubapi.UserResponse), nil
}

func (a *Aggregator) fetchRepos(ctx context.Context, session *cache.Session, username string) ([]githubapi.RepoResponse, error) {
	value, err := session.GetOrFetch(cache.Key("repos", username), func() (interface{}, error) {
		if err := a.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		return a.Source.FetchAllRepos(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	return value.([]githubapi.RepoResponse), nil
}

func (a *Aggregator) fetchYearTotal(ctx context.Context, session *cache.Session, username string, year int) (int, error) {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)

	value, err := session.GetOrFetch(cache.YearKey("contrib", username, year), func() (interface{}, error) {
		if err := a.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		return a.Source.FetchContributionCalendar(ctx, username, from, to, false)
	})
	if err != nil {
		return 0, err
	}
	return value.(*githubapi.CalendarResponse).TotalContributions, nil
}

// fetchStreak lấy lịch theo ngày từ 1/1 năm nay tới hôm nay rồi đi ngược
// từ ngày gần nhất: mỗi ngày có contribution > 0 cộng một vào streak,
// gặp ngày 0 đầu tiên thì dừng hẳn.
func (a *Aggregator) fetchStreak(ctx context.Context, session *cache.Session, username string, now time.Time) (int, error) {
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	value, err := session.GetOrFetch(cache.Key("calendar_days", username), func() (interface{}, error) {
		if err := a.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		return a.Source.FetchContributionCalendar(ctx, username, from, now, true)
	})
	if err != nil {
		return 0, err
	}

	calendar := value.(*githubapi.CalendarResponse)
	return WalkStreak(calendar, now), nil
}

func (a *Aggregator) fetchOpenSourceForYear(ctx context.Context, session *cache.Session, username string, year int) (int, error) {
	value, err := session.GetOrFetch(cache.YearKey("events", username, year), func() (interface{}, error) {
		if err := a.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		return a.Source.FetchEventsForYear(ctx, username, year)
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, event := range value.([]githubapi.EventResponse) {
		if event.Repo.Private {
			continue
		}
		if event.Type != "PullRequestEvent" {
			continue
		}
		if event.Payload.Action == "closed" && event.Payload.PullRequest != nil && event.Payload.PullRequest.Merged {
			count++
		}
	}
	return count, nil
}

// WalkStreak đếm chuỗi ngày liên tiếp gần nhất có contribution.
// Ngày sau hôm nay (tuần hiện tại của lịch có thể chứa ngày tương lai)
// bị bỏ qua.
func WalkStreak(calendar *githubapi.CalendarResponse, now time.Time) int {
	today := now.UTC().Format("2006-01-02")

	days := make([]githubapi.CalendarDay, 0, len(calendar.Weeks)*7)
	for _, week := range calendar.Weeks {
		for _, day := range week.ContributionDays {
			if day.Date > today {
				continue
			}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].ContributionCount == 0 {
			break
		}
		streak++
	}
	return streak
}

// countLanguages đếm ngôn ngữ chính của từng repo, bỏ repo không khai báo
// ngôn ngữ, sắp giảm dần theo số lượng
func countLanguages(repos []githubapi.RepoResponse) []LanguageUsage {
	counts := make(map[string]int)
	for _, repo := range repos {
		if repo.Language == "" {
			continue
		}
		counts[repo.Language]++
	}

	usage := make([]LanguageUsage, 0, len(counts))
	for language, count := range counts {
		usage = append(usage, LanguageUsage{Language: language, Count: count})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		return usage[i].Language < usage[j].Language
	})
	return usage
}
