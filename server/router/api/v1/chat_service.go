package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/helpgpt/server/internal/errors"
	"github.com/hrygo/helpgpt/server/internal/observability"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *APIV1Service) chat(c echo.Context) error {
	reqCtx := observability.NewRequestContext(slog.Default(), "web")
	c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)

	// Malformed bodies are treated as an empty message.
	var req chatRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		reqCtx.Debug("chat body not decoded", slog.String("error", err.Error()))
	}
	reqCtx.Debug("chat request", slog.Int(observability.LogFieldMessageLen, len(req.Message)))

	reply, err := s.Chat.Reply(ctx, req.Message)
	if err != nil {
		return writeError(c, reqCtx, err)
	}
	return c.JSON(http.StatusOK, chatResponse{Reply: reply})
}

func writeError(c echo.Context, reqCtx *observability.RequestContext, err error) error {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.Wrap(err, apierrors.ErrCodeInternal, "internal")
	}
	if apiErr.Status() >= http.StatusInternalServerError {
		reqCtx.Warn("request failed",
			slog.String(observability.LogFieldErrorCode, string(apiErr.Code)),
			slog.String("error", apiErr.Error()))
	}
	return c.JSON(apiErr.Status(), errorResponse{Error: apiErr.Message, Details: apiErr.Details})
}
