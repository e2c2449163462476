package dto

// FeedTrackReq WS 客户端上行：声明当前关注的帖子全集
type FeedTrackReq struct {
	Track []string `json:"track"`
}

// FeedUpdateDTO WS 服务端下行：某个帖子的最新聚合
type FeedUpdateDTO struct {
	Type           string           `json:"type"` // update / forbidden
	PostID         string           `json:"postId"`
	Post           *PostDTO         `json:"post,omitempty"`
	Comments       []*CommentDTO    `json:"comments,omitempty"`
	ReactionCounts map[string]int64 `json:"reactionCounts,omitempty"`
}
