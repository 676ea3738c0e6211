package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type updateSettingsRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Server) ListSettings(c *gin.Context) {
	resp, err := s.settingsSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Values) == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.settingsSvc.Update(c.Request.Context(), req.Values); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.settingsSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
