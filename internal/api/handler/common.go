package handler

import (
	"Classfeed/internal/api/dto"
	"Classfeed/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

// currentUser 取出 AuthMiddleware 注入的用户快照
func currentUser(c *gin.Context) model.UserSnapshot {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(model.UserSnapshot); ok {
			return user
		}
	}
	return model.UserSnapshot{}
}

func toPostDTO(post *model.Post) *dto.PostDTO {
	if post == nil {
		return nil
	}
	out := &dto.PostDTO{}
	_ = copier.Copy(out, post)
	out.CreatedAt = post.CreatedAt.Format(time.RFC3339)
	out.UpdatedAt = post.UpdatedAt.Format(time.RFC3339)
	return out
}

func toPostDTOs(posts []*model.Post) []*dto.PostDTO {
	out := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostDTO(p))
	}
	return out
}

func toCommentDTO(comment *model.Comment) *dto.CommentDTO {
	if comment == nil {
		return nil
	}
	out := &dto.CommentDTO{}
	_ = copier.Copy(out, comment)
	out.Edited = comment.Edited()
	out.CreatedAt = comment.CreatedAt.Format(time.RFC3339)
	out.UpdatedAt = comment.UpdatedAt.Format(time.RFC3339)
	return out
}

func toCommentDTOs(comments []*model.Comment) []*dto.CommentDTO {
	out := make([]*dto.CommentDTO, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentDTO(cm))
	}
	return out
}
