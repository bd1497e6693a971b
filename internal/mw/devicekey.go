package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceKeyHeader carries the shared secret devices send with telemetry.
const DeviceKeyHeader = "x-api-key"

// DeviceKey rejects requests whose x-api-key header does not match key.
func DeviceKey(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(DeviceKeyHeader))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "API key invalid"})
			return
		}
		c.Next()
	}
}
