package consts

const (
	UserSimpleInfoKey = "user:simple:info:"
	UserBlockKey      = "user:block:"
	IMEventChannel    = "im:event"
	IMPresenceKey     = "im:presence:"
)

const (
	MediaSweepLock = "lock:media:sweep"
)
