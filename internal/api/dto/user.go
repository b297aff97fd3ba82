package dto

// UserProfileDTO 用户公开资料投影
type UserProfileDTO struct {
	UserID    uint64 `json:"userId"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
}

// BlockListDTO 拉黑列表
type BlockListDTO struct {
	UserIDs []uint64 `json:"userIds"`
}
