package consts

const (
	MimePrefixImage = "image"
	MimePrefixVideo = "video"
)

const (
	DefaultAvatarURL = "default_avatar.png"
)

// 上下文中用户身份的 key，由鉴权中间件写入
const (
	CtxUserID = "user_id"
)
