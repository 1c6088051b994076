package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"TitanQuant/internal/analyzer"
)

type analyzeRequest struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name"`
	Balance      float64 `json:"account_balance"`
	RiskFraction float64 `json:"risk_fraction"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	res := s.analyzer.Analyze(c.Request.Context(), analyzer.Request{
		Code:         req.Code,
		Name:         req.Name,
		Balance:      req.Balance,
		RiskFraction: req.RiskFraction,
	})
	if err := s.recorder.RecordAnalysis(res); err != nil {
		log.Printf("[WARN] record analysis: %v", err)
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleMarket(c *gin.Context) {
	mc := s.collector.MarketContext(c.Request.Context())
	if err := s.recorder.RecordMarketContext(&mc); err != nil {
		log.Printf("[WARN] record market context: %v", err)
	}
	c.JSON(http.StatusOK, mc)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
