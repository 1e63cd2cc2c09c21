package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/ghkit/errors"
)

// maxPayloadBytes bounds the request body read by the gin adapter.
// GitHub caps webhook payloads at 25MB.
const maxPayloadBytes = 25 << 20

// GinHandler adapts an Ingestor to a gin route:
//
//	r := gin.New()
//	r.POST("/webhooks/github", webhook.GinHandler(ingestor))
//
// Validation failures map to 400/401; handler failures map to 500 so
// the sender re-delivers.
func GinHandler(in *Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for name := range c.Request.Header {
			headers[name] = c.Request.Header.Get(name)
		}

		if err := in.Handle(c.Request.Context(), payload, headers); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func statusFor(err error) int {
	apiErr, ok := errors.AsAPIError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch apiErr.Kind {
	case errors.KindWebhookSignature:
		return http.StatusUnauthorized
	case errors.KindWebhookPayload, errors.KindWebhookDeliveryID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
