package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/api/middleware"
)

// RegisterRoutes 注册全部业务路由，apiKey 为空时不启用认证
func RegisterRoutes(r *gin.Engine, ph *PrinterHandler, hh *HistoryHandler, apiKey string, logger *zap.Logger) {
	g := r.Group("/api", middleware.APIKeyAuth(apiKey, logger))

	p := g.Group("/printer")
	{
		p.GET("/ping", ph.Ping)
		p.POST("/power", ph.Power)
		p.GET("/datetime", ph.GetDateTime)
		p.PUT("/datetime", ph.SetDateTime)
		p.GET("/params", ph.GetParameters)
		p.GET("/faults", ph.GetFaults)
		p.POST("/faults/reset", ph.ResetFaults)
		p.GET("/jets", ph.AvailableJets)
		p.GET("/jets/:id/status", ph.GetJetStatus)
		p.GET("/jets/:id/speed", ph.GetJetSpeed)
		p.GET("/jets/:id/counter", ph.GetJetCounter)
		p.POST("/jets/:id/counter/reset", ph.ResetJetCounter)
		p.PUT("/jets/:id/variables", ph.SetVariables)
	}

	if hh != nil {
		hist := g.Group("/history")
		{
			hist.GET("/status", hh.ListStatusSamples)
			hist.GET("/params", hh.ListParameterSamples)
			hist.GET("/counters", hh.ListCounterSamples)
			hist.GET("/faults", hh.ListFaultEvents)
			hist.GET("/faults/active", hh.ActiveFaultEvents)
			hist.GET("/faults/stats", hh.FaultStats)
		}
		g.GET("/snapshot", hh.Snapshot)
	}
}
