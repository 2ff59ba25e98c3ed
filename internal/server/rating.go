package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/freightrate/internal/observability/scope"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/zap"
)

func (s *Server) bindQuoteRequest(c *gin.Context) (ratingdomain.Request, bool) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return ratingdomain.Request{}, false
	}
	if err := validateQuoteRequest(&req); err != nil {
		AbortWithError(c, err)
		return ratingdomain.Request{}, false
	}

	scope.From(c.Request.Context()).SetQuote(req.RequestID, req.Mode)

	domainReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return ratingdomain.Request{}, false
	}
	return domainReq, true
}

func (s *Server) Quote(c *gin.Context) {
	req, ok := s.bindQuoteRequest(c)
	if !ok {
		return
	}

	resp, err := s.ratingSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.apiMetrics.ObserveQuoteTotal(req.Mode.String(), resp.Total.InexactFloat64())
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Commit(c *gin.Context) {
	req, ok := s.bindQuoteRequest(c)
	if !ok {
		return
	}

	unlock, ok := s.lockCommit(c, req.RequestID)
	if !ok {
		return
	}
	defer unlock()

	resp, err := s.quoteSvc.Commit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	scope.From(c.Request.Context()).SetQuote(resp.RequestID, "")
	if resp.Replayed {
		c.Header("Idempotent-Replayed", "true")
	} else {
		s.apiMetrics.ObserveQuoteTotal(req.Mode.String(), resp.Quote.Total.InexactFloat64())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetQuote(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("requestId"))
	scope.From(c.Request.Context()).SetQuote(requestID, "")

	resp, err := s.quoteSvc.Get(c.Request.Context(), requestID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	scope.From(c.Request.Context()).SetQuote("", resp.Mode)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetQuotePDF(c *gin.Context) {
	requestID := strings.TrimSpace(c.Param("requestId"))
	scope.From(c.Request.Context()).SetQuote(requestID, "")

	resp, err := s.quoteSvc.Get(c.Request.Context(), requestID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	scope.From(c.Request.Context()).SetQuote("", resp.Mode)

	doc, err := s.docs.Render(c.Request.Context(), resp)
	if err != nil {
		s.log.Error("quote document render failed", zap.String("request_id", resp.RequestID), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"quote-%s.pdf\"", resp.Quote.QuoteID))
	c.Data(http.StatusOK, "application/pdf", doc)
}
