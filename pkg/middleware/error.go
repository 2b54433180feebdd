package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/verzoeken/pkg/context"
	apierrors "github.com/Ramsey-B/verzoeken/pkg/errors"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

type ErrorResponse struct {
	Code          string                   `json:"code"`
	Title         string                   `json:"title"`
	Status        int                      `json:"status"`
	Detail        string                   `json:"detail"`
	RequestID     string                   `json:"requestId"`
	TraceID       string                   `json:"traceId"`
	InvalidParams []apierrors.InvalidParam `json:"invalidParams"`
}

func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		// Check if the response is already committed
		if c.Response().Committed {
			return
		}

		response := ErrorResponse{
			Code:          "error",
			Status:        http.StatusInternalServerError,
			Detail:        "Internal Server Error",
			RequestID:     context.GetRequestID(ctx),
			TraceID:       tracing.GetTraceID(ctx),
			InvalidParams: []apierrors.InvalidParam{},
		}

		if verr, ok := apierrors.AsValidationError(err); ok {
			response.Code = verr.Code()
			response.Status = http.StatusBadRequest
			response.Title = "Invalid input."
			response.Detail = verr.Error()
			response.InvalidParams = verr.Params
			logger.WithContext(ctx).WithError(err).Warn("api is rejecting invalid input")
			_ = c.JSON(response.Status, response)
			return
		}

		logger.WithContext(ctx).WithError(err).Error("api is returning an error")

		// Handle specific Echo errors
		if he, ok := err.(*echo.HTTPError); ok {
			response.Status = he.Code
			if msg, ok := he.Message.(string); ok {
				response.Detail = msg
			}
		}

		if httperror.IsHTTPError(err) {
			response.Status = httperror.GetStatusCode(err)
			response.Detail = httperror.ToHTTPError(err).Error()
		}

		response.Title = http.StatusText(response.Status)
		switch response.Status {
		case http.StatusNotFound:
			response.Code = "not_found"
		case http.StatusUnauthorized:
			response.Code = "not_authenticated"
		case http.StatusMethodNotAllowed:
			response.Code = "method_not_allowed"
		case http.StatusBadRequest:
			response.Code = apierrors.CodeParseError
		}

		_ = c.JSON(response.Status, response)
	}
}
