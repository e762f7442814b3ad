package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// uploadField is the multipart field every image upload uses
const uploadField = "file"

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func respondCreated(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func respondMessage(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: msg}))
}

// idParam parses a positive id path parameter, writing a 400 on failure
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// openUpload opens the uploaded file, writing a 400 when it is missing
func openUpload(ctx *gin.Context) (multipart.File, bool) {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(uploadField, "file is required"))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("uploaded file could not be read"))
		return nil, false
	}
	return f, true
}
