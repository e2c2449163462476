package consts

const (
	// DocChannelPrefix 文档路径变更通知的 Redis 频道前缀
	DocChannelPrefix = "doc:"
)

const (
	FeedEventPostCreated   = "post_created"
	FeedEventPostModerated = "post_moderated"
	FeedEventPostDeleted   = "post_deleted"
)
