// Gói badge phân loại huy hiệu theo ngưỡng số liệu.
// Hàm thuần, không trạng thái, phải được tính lại mỗi khi đầu vào đổi.

package badge

type Badge string

const (
	ContribTier1 Badge = "contributions-tier-1"
	ContribTier2 Badge = "contributions-tier-2"
	ContribTier3 Badge = "contributions-tier-3"
	ContribTier4 Badge = "contributions-tier-4"
	ContribTier5 Badge = "contributions-tier-5"

	FollowerTier1 Badge = "followers-tier-1"
	FollowerTier2 Badge = "followers-tier-2"
	FollowerTier3 Badge = "followers-tier-3"
	FollowerTier4 Badge = "followers-tier-4"
)

// ForContributions chọn huy hiệu contribution theo các dải ngưỡng,
// so sánh chặt "<", dải khớp đầu tiên thắng
func ForContributions(contributions int) Badge {
	switch {
	case contributions < 100:
		return ContribTier1
	case contributions < 1000:
		return ContribTier2
	case contributions < 5000:
		return ContribTier3
	case contributions < 10000:
		return ContribTier4
	default:
		return ContribTier5
	}
}

// ForFollowers chọn huy hiệu follower theo các dải ngưỡng
func ForFollowers(followers int) Badge {
	switch {
	case followers < 50:
		return FollowerTier1
	case followers < 250:
		return FollowerTier2
	case followers < 1000:
		return FollowerTier3
	default:
		return FollowerTier4
	}
}

// Classify trả đúng một huy hiệu contribution và một huy hiệu follower
func Classify(contributions, followers int) (Badge, Badge) {
	return ForContributions(contributions), ForFollowers(followers)
}
