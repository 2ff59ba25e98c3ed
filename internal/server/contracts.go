package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
)

// PublishContractVersion moves a draft version to Published.
func (s *Server) PublishContractVersion(c *gin.Context) {
	_, err := s.contractSvc.Publish(c.Request.Context(), contractdomain.PublishRequest{
		VersionID: c.Param("id"),
		UserID:    c.Query("userId"),
		Note:      c.Query("note"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
