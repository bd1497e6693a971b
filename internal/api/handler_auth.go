package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Demo credentials; there is no user store behind the login endpoint.
const (
	demoUsername = "admin"
	demoPassword = "123456"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Hello handles GET /api/hello.
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Backend OK ✅"})
}

// Login handles POST /api/login against the hardcoded demo account.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)

	if req.Username == demoUsername && req.Password == demoPassword {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    gin.H{"username": req.Username, "role": "admin"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "message": "Sai tài khoản hoặc mật khẩu"})
}
