package model

// ProfileMessage là cấu trúc snapshot profile gửi tới Kafka sau mỗi lần
// fetch thành công; consumer dùng nó để cập nhật bảng xếp hạng
type ProfileMessage struct {
	Username      string `json:"username"`
	Contributions int    `json:"contributions"`
	Followers     int    `json:"followers"`
	AvatarUrl     string `json:"avatar_url"`
	Streak        int    `json:"streak"`
	OpenSource    int    `json:"open_source"`
}
