package middleware

import (
	"strings"

	"github.com/deppfellow/tutorial-service/internal/errs"
	"github.com/labstack/echo/v4"
)

const (
	// ClientMessageIDHeader identifies a single client message. It is
	// mandatory on every tutorial endpoint.
	ClientMessageIDHeader = "clientMessageId"

	// TransactionIDHeader groups several client messages. It is optional.
	TransactionIDHeader = "transactionId"

	ClientMessageIDKey = "client_message_id"
	TransactionIDKey   = "transaction_id"
)

// RequireTraceHeaders rejects requests without a non-blank clientMessageId
// header and stores both trace headers in the Echo context.
func RequireTraceHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientMessageID := strings.TrimSpace(c.Request().Header.Get(ClientMessageIDHeader))
			if clientMessageID == "" {
				return errs.NewMissingHeaderError(ClientMessageIDHeader)
			}

			c.Set(ClientMessageIDKey, clientMessageID)
			if transactionID := strings.TrimSpace(c.Request().Header.Get(TransactionIDHeader)); transactionID != "" {
				c.Set(TransactionIDKey, transactionID)
			}

			return next(c)
		}
	}
}

// GetClientMessageID returns the clientMessageId accepted by
// RequireTraceHeaders, or "" outside the tutorial routes.
func GetClientMessageID(c echo.Context) string {
	if id, ok := c.Get(ClientMessageIDKey).(string); ok {
		return id
	}
	return ""
}

func GetTransactionID(c echo.Context) string {
	if id, ok := c.Get(TransactionIDKey).(string); ok {
		return id
	}
	return ""
}
