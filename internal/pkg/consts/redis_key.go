package consts

const (
	PostViewKey         = "post:view:"
	PostReactionKey     = "post:reaction:"
	PostCommentKey      = "post:comment:"
	PostDirtyKey        = "post:dirty"
	PostDirtyProcessing = "post:dirty:processing"
)
