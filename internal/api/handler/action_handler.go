package handler

import (
	"Classfeed/internal/api/dto"
	"Classfeed/internal/pkg/response"
	"Classfeed/internal/service"

	"github.com/gin-gonic/gin"
)

type ActionHandler struct {
	reactionSvc service.ReactionService
	commentSvc  service.CommentService
	viewSvc     service.ViewService
}

func NewActionHandler(reactionSvc service.ReactionService, commentSvc service.CommentService, viewSvc service.ViewService) *ActionHandler {
	return &ActionHandler{
		reactionSvc: reactionSvc,
		commentSvc:  commentSvc,
		viewSvc:     viewSvc,
	}
}

// ToggleReaction 表态翻转：没有则加，同类则删，异类则换
func (s *ActionHandler) ToggleReaction(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	var req dto.ReactionToggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.reactionSvc.ToggleReaction(c.Request.Context(), user, postID, req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}

	counts, err := s.reactionSvc.GetCounts(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ReactionToggleDTO{
		Result: string(result),
		Counts: counts,
	})
}

func (s *ActionHandler) GetReactionCounts(c *gin.Context) {
	postID := c.Param("post_id")

	counts, err := s.reactionSvc.GetCounts(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ReactionCountsDTO{Counts: counts})
}

func (s *ActionHandler) CreateComment(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	var req dto.CommentCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.commentSvc.CreateComment(c.Request.Context(), user, postID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toCommentDTO(comment))
}

func (s *ActionHandler) UpdateComment(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")
	commentID := c.Param("comment_id")

	var req dto.CommentUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.commentSvc.UpdateComment(c.Request.Context(), user, postID, commentID, req.Content); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *ActionHandler) DeleteComment(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")
	commentID := c.Param("comment_id")

	if err := s.commentSvc.DeleteComment(c.Request.Context(), user, postID, commentID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *ActionHandler) ListComments(c *gin.Context) {
	postID := c.Param("post_id")

	comments, err := s.commentSvc.ListComments(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toCommentDTOs(comments))
}

func (s *ActionHandler) GetCommentCount(c *gin.Context) {
	postID := c.Param("post_id")

	count, err := s.commentSvc.GetCommentCount(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.CommentCountDTO{PostID: postID, CommentCount: count})
}

// AddView 记录浏览，同一用户重复浏览只刷新时间不加计数
func (s *ActionHandler) AddView(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	if err := s.viewSvc.AddView(c.Request.Context(), user, postID); err != nil {
		response.Error(c, err)
		return
	}

	count, err := s.viewSvc.GetViewCount(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ViewCountDTO{PostID: postID, ViewCount: count})
}

func (s *ActionHandler) GetViewCount(c *gin.Context) {
	postID := c.Param("post_id")

	count, err := s.viewSvc.GetViewCount(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ViewCountDTO{PostID: postID, ViewCount: count})
}
