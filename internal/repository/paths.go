package repository

import (
	"Classfeed/internal/docstore"
)

// 路径方案：posts/{postId}、comments/{postId}/{commentId}、
// reactions/{postId}/{userId}、views/{postId}/{userId}

func PostPath(postID string) string {
	return docstore.Join("posts", postID)
}

func CommentsPath(postID string) string {
	return docstore.Join("comments", postID)
}

func CommentPath(postID, commentID string) string {
	return docstore.Join("comments", postID, commentID)
}

func ReactionsPath(postID string) string {
	return docstore.Join("reactions", postID)
}

func ReactionPath(postID, userID string) string {
	return docstore.Join("reactions", postID, userID)
}

func ViewsPath(postID string) string {
	return docstore.Join("views", postID)
}

func ViewPath(postID, userID string) string {
	return docstore.Join("views", postID, userID)
}
