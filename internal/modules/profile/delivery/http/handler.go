package handler

import (
	"net/http"

	profileDto "anoa.com/campusrecruit/internal/modules/profile/dto"
	profile "anoa.com/campusrecruit/internal/modules/profile/service"
	uploadHttp "anoa.com/campusrecruit/internal/modules/upload/delivery/http"
	"anoa.com/campusrecruit/pkg/response"
	"anoa.com/campusrecruit/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetStudentProfile(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.profileService.GetStudentProfile(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) UpdateStudentProfile(c *gin.Context) {
	p, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input profileDto.UpdateStudentProfileInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	image, closeImage, err := uploadHttp.FormFile(c, "profileImage")
	defer closeImage()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read profile image"})
		return
	}

	resume, closeResume, err := uploadHttp.FormFile(c, "resume")
	defer closeResume()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read resume"})
		return
	}

	res, err := h.profileService.UpdateStudentProfile(c.Request.Context(), p, input, image, resume)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "profile": res})
}
