package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/bacon13/picfeed/feed"
	"github.com/bacon13/picfeed/file_store"
	"github.com/bacon13/picfeed/ingestion"
	"github.com/bacon13/picfeed/repository"
	"github.com/bacon13/picfeed/utils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Responses use the envelope {success, message?, data?, error?} with a
// numeric code on failures so clients can branch without parsing messages.

// HealthHandler reports liveness.
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "api server is healthy",
		})
	}
}

// CreatePostHandler accepts a multipart upload with an "image" field and
// creates a post owned by the verified caller.
func CreatePostHandler(svc *ingestion.Service, maxImageBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerId := c.Request.Header.Get("sub")

		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"code":    utils.ErrorInvalidMedia,
				"error":   "multipart field 'image' is required",
			})
			return
		}
		defer file.Close()

		// Read at most one byte past the cap so oversized uploads are
		// rejected without buffering the whole body.
		image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"code":    utils.ErrorInvalidMedia,
				"error":   "fail to read uploaded image",
			})
			return
		}

		post, err := svc.CreatePost(c.Request.Context(), callerId, image, header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    toPostView(post),
		})
	}
}

// FeedHandler serves the global reverse-chronological feed. This view is
// public, no identity is required.
func FeedHandler(engine *feed.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := engine.GetFeed(c.Request.Context(), c.Query("cursor"), parseLimit(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    toPageView(page),
		})
	}
}

// UserPostsHandler serves the verified caller's own posts.
func UserPostsHandler(engine *feed.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerId := c.Request.Header.Get("sub")
		page, err := engine.GetUserPosts(c.Request.Context(), callerId, c.Query("cursor"), parseLimit(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    toPageView(page),
		})
	}
}

// VerifyHandler returns the caller's profile record, creating it on first
// sight of a new subject.
func VerifyHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetOrCreate(c.Request.Context(), c.Request.Header.Get("sub"), c.Request.Header.Get("email"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "token is valid",
			"data":    toUserView(user),
		})
	}
}

// GetProfileHandler returns the caller's profile record.
func GetProfileHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Get(c.Request.Context(), c.Request.Header.Get("sub"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error":   "user not found",
				})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    toUserView(user),
		})
	}
}

type updateProfileRequest struct {
	ProfileImages []string `json:"profile_images" binding:"required"`
}

// UpdateProfileHandler replaces the caller's profile image list.
func UpdateProfileHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		if err := users.UpdateProfileImages(c.Request.Context(), c.Request.Header.Get("sub"), req.ProfileImages); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error":   "user not found",
				})
				return
			}
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "profile updated successfully",
		})
	}
}

// writeError maps each failure kind to a distinct status and numeric code.
// No kind is fatal to the process, each request fails independently.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, utils.ErrorInternal
	switch {
	case errors.Is(err, ingestion.ErrUnauthenticated), errors.Is(err, feed.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, utils.ErrorTokenAuthFail
	case errors.Is(err, ingestion.ErrInvalidMedia):
		status, code = http.StatusUnsupportedMediaType, utils.ErrorInvalidMedia
	case errors.Is(err, ingestion.ErrPayloadTooLarge):
		status, code = http.StatusRequestEntityTooLarge, utils.ErrorPayloadTooLarge
	case errors.Is(err, feed.ErrInvalidCursor):
		status, code = http.StatusBadRequest, utils.ErrorInvalidCursor
	case errors.Is(err, file_store.ErrStorageUnavailable):
		status, code = http.StatusServiceUnavailable, utils.ErrorStorageUnavailable
	case errors.Is(err, file_store.ErrQuotaExceeded):
		status, code = http.StatusInsufficientStorage, utils.ErrorQuotaExceeded
	case errors.Is(err, ingestion.ErrMetadataWriteFailed):
		status, code = http.StatusBadGateway, utils.ErrorMetadataWrite
	case errors.Is(err, repository.ErrWriteConflict):
		status, code = http.StatusConflict, utils.ErrorWriteConflict
	}
	c.JSON(status, gin.H{
		"success": false,
		"code":    code,
		"error":   err.Error(),
	})
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
