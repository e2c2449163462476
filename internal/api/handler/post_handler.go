package handler

import (
	"Classfeed/internal/api/dto"
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/minio"
	"Classfeed/internal/pkg/response"
	"Classfeed/internal/service"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

// CreatePost 发帖，multipart 表单，附件可选
func (s *PostHandler) CreatePost(c *gin.Context) {
	user := currentUser(c)

	var req dto.PostCreateReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["attachments"]
	}

	attachments, err := s.uploadAttachments(c, files)
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), user, req.Content, attachments)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toPostDTO(post))
}

func (s *PostHandler) GetPost(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	post, err := s.postSvc.GetPost(c.Request.Context(), user, postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toPostDTO(post))
}

func (s *PostHandler) ListFeed(c *gin.Context) {
	user := currentUser(c)

	posts, err := s.postSvc.ListFeed(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toPostDTOs(posts))
}

// ListPending 审核队列，仅对审核角色开放
func (s *PostHandler) ListPending(c *gin.Context) {
	posts, err := s.postSvc.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toPostDTOs(posts))
}

func (s *PostHandler) ModeratePost(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	var req dto.PostModerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.postSvc.ModeratePost(c.Request.Context(), user, postID, req.Approve, req.Reason); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *PostHandler) EditPost(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	var req dto.PostEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.postSvc.EditPost(c.Request.Context(), user, postID, req.Content); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ResubmitPost 被拒帖子修改后重新送审，multipart 表单
func (s *PostHandler) ResubmitPost(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	var req dto.PostCreateReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["attachments"]
	}

	attachments, err := s.uploadAttachments(c, files)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := s.postSvc.ResubmitPost(c.Request.Context(), user, postID, req.Content, attachments); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	user := currentUser(c)
	postID := c.Param("post_id")

	if err := s.postSvc.DeletePost(c.Request.Context(), user, postID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func (s *PostHandler) uploadAttachments(c *gin.Context, files []*multipart.FileHeader) ([]model.Attachment, error) {
	attachments := make([]model.Attachment, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}

		objectName := fmt.Sprintf("attachments/%s%s", uuid.New().String(), filepath.Ext(fh.Filename))
		contentType := fh.Header.Get("Content-Type")

		key, err := minio.UploadFile(c.Request.Context(), objectName, f, fh.Size, contentType)
		_ = f.Close()
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, model.Attachment{
			Name: fh.Filename,
			Path: key,
			URL:  minio.GetPublicURL(key),
			Type: contentType,
		})
	}
	return attachments, nil
}
