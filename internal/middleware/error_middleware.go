package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/logger"
)

type errorMapping struct {
	targets  []error
	status   int
	code     dto.ErrorCode
	severity dto.ErrorSeverity
}

// Order matters: specific sentinels come before the generic ones they resemble.
var errorMappings = []errorMapping{
	{[]error{apperrors.ErrValidationFailed, apperrors.ErrInvalidEmail, apperrors.ErrInvalidPassword, apperrors.ErrInvalidRole},
		http.StatusBadRequest, dto.ErrorCodeValidationFailed, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrBadRequest},
		http.StatusBadRequest, dto.ErrorCodeBadRequest, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrInvalidCredentials},
		http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrTokenExpired},
		http.StatusUnauthorized, dto.ErrorCodeExpiredToken, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked},
		http.StatusUnauthorized, dto.ErrorCodeInvalidToken, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrTokenNotFound},
		http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrAccountDisabled},
		http.StatusForbidden, dto.ErrorCodeAccountDisabled, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrPermissionDenied, apperrors.ErrOrganizationInactive},
		http.StatusForbidden, dto.ErrorCodeForbidden, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrResourceNotFound, apperrors.ErrUserNotFound, apperrors.ErrOrganizationNotFound,
		apperrors.ErrEventNotFound, apperrors.ErrOpportunityNotFound, apperrors.ErrPaymentNotFound},
		http.StatusNotFound, dto.ErrorCodeResourceNotFound, dto.ErrorSeverityInfo},
	{[]error{apperrors.ErrEmailAlreadyExists, apperrors.ErrResourceAlreadyExists, apperrors.ErrAlreadyRegistered,
		apperrors.ErrAlreadyApplied, apperrors.ErrConnectionAlreadyExists},
		http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, dto.ErrorSeverityInfo},
	{[]error{apperrors.ErrInvalidStateTransition},
		http.StatusConflict, dto.ErrorCodeInvalidStateTransition, dto.ErrorSeverityInfo},
	{[]error{apperrors.ErrConflict, apperrors.ErrEventFull, apperrors.ErrRegistrationClosed},
		http.StatusConflict, dto.ErrorCodeConflict, dto.ErrorSeverityInfo},
	{[]error{apperrors.ErrUploadTooLarge},
		http.StatusRequestEntityTooLarge, dto.ErrorCodePayloadTooLarge, dto.ErrorSeverityWarning},
	{[]error{apperrors.ErrUnsupportedMediaType},
		http.StatusUnsupportedMediaType, dto.ErrorCodeUnsupportedMediaType, dto.ErrorSeverityWarning},
}

// StatusFor returns the HTTP status and error code for err
func StatusFor(err error) (int, dto.ErrorCode, dto.ErrorSeverity) {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m.status, m.code, m.severity
			}
		}
	}
	return http.StatusInternalServerError, dto.ErrorCodeInternalServer, dto.ErrorSeverityCritical
}

// HandleAPIError writes the error envelope for err. Unknown errors become a
// 500 with a generic message; the cause is only logged.
func HandleAPIError(c *gin.Context, err error) {
	status, code, severity := StatusFor(err)

	message := apperrors.Message(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
		message = "An unexpected error occurred"
	}

	detail := dto.NewErrorDetail(code, message).WithSeverity(severity)

	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		if field, ok := ce.Details["field"].(string); ok {
			detail.WithField(field)
		}
		detail.WithDetails(ce.Details)
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

// HandleBindError writes a 400 for a failed request binding
func HandleBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
