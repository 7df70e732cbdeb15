package handler

import (
	"net/http"

	upload "anoa.com/campusrecruit/internal/modules/upload/service"
	commonDto "anoa.com/campusrecruit/pkg/dto"
	"anoa.com/campusrecruit/pkg/response"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service upload.UploadService
}

func NewUploadHandler(service upload.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// FormFile opens an optional multipart part. It returns nil,nil when the
// field is absent; the caller must invoke the returned close func.
func FormFile(c *gin.Context, field string) (*commonDto.FileUpload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &commonDto.FileUpload{
		Reader:      file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}, func() { _ = file.Close() }, nil
}

func (h *UploadHandler) handle(c *gin.Context, field string, kind upload.Kind) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, upload.MaxFileSize+1<<20)

	file, closeFn, err := FormFile(c, field)
	defer closeFn()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read uploaded file"})
		return
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no file uploaded"})
		return
	}

	res, err := h.service.Upload(c.Request.Context(), kind, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      res.URL,
		"public_id": res.PublicID,
		"format":   res.Format,
	})
}

func (h *UploadHandler) UploadResume(c *gin.Context) {
	h.handle(c, "resume", upload.KindResume)
}

func (h *UploadHandler) UploadFile(c *gin.Context) {
	h.handle(c, "file", upload.KindFile)
}
