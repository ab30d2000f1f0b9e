package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/services"
	"github.com/printcraft-studio/printcraft-api/utils"
)

// UploadController handles image uploads attached to conversation messages
type UploadController struct {
	images services.ImageService
}

// NewUploadController creates an upload controller
func NewUploadController(images services.ImageService) *UploadController {
	return &UploadController{images: images}
}

// UploadImage handles POST /api/admin/uploads - accepts a multipart PNG
// under the "image" field, stores it, and returns a presigned URL suitable
// for the image_url field of a message
func (uc *UploadController) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "An image file is required",
			},
		})
		return
	}

	s3Key, err := uc.images.UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store image",
			},
		})
		return
	}

	imageURL, err := uc.images.GetImageURL(s3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to generate image URL",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"s3_key":    s3Key,
			"image_url": imageURL,
		},
	})
}
