package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/storage"
	"github.com/taoyao-code/cij-gateway/internal/storage/pg"
	redisstore "github.com/taoyao-code/cij-gateway/internal/storage/redis"
)

// HistoryHandler 历史数据与快照查询处理器。
// repo/cache/stats 均可为 nil，未启用的能力返回 404。
type HistoryHandler struct {
	repo   storage.HistoryRepo
	cache  *redisstore.SnapshotCache
	stats  *pg.StatsRepo
	logger *zap.Logger
}

// NewHistoryHandler 创建历史查询处理器
func NewHistoryHandler(repo storage.HistoryRepo, cache *redisstore.SnapshotCache, stats *pg.StatsRepo, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, cache: cache, stats: stats, logger: logger}
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, offset = 100, 0
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			limit = vv
		}
	}
	if v := c.Query("offset"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			offset = vv
		}
	}
	return limit, offset
}

func (h *HistoryHandler) requireRepo(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history storage not enabled"})
		return false
	}
	return true
}

// ListStatusSamples 查询状态采样历史
func (h *HistoryHandler) ListStatusSamples(c *gin.Context) {
	if !h.requireRepo(c) {
		return
	}
	limit, offset := pageParams(c)
	jet, _ := strconv.Atoi(c.Query("jet"))

	list, err := h.repo.ListStatusSamples(c.Request.Context(), jet, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": list})
}

// ListParameterSamples 查询参数采样历史
func (h *HistoryHandler) ListParameterSamples(c *gin.Context) {
	if !h.requireRepo(c) {
		return
	}
	limit, offset := pageParams(c)
	list, err := h.repo.ListParameterSamples(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": list})
}

// ListCounterSamples 查询计数采样历史
func (h *HistoryHandler) ListCounterSamples(c *gin.Context) {
	if !h.requireRepo(c) {
		return
	}
	limit, offset := pageParams(c)
	jet, _ := strconv.Atoi(c.Query("jet"))

	list, err := h.repo.ListCounterSamples(c.Request.Context(), jet, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": list})
}

// ListFaultEvents 查询故障事件历史
func (h *HistoryHandler) ListFaultEvents(c *gin.Context) {
	if !h.requireRepo(c) {
		return
	}
	limit, offset := pageParams(c)
	list, err := h.repo.ListFaultEvents(c.Request.Context(), c.Query("fault"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

// ActiveFaultEvents 查询未恢复的故障事件
func (h *HistoryHandler) ActiveFaultEvents(c *gin.Context) {
	if !h.requireRepo(c) {
		return
	}
	list, err := h.repo.ActiveFaultEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

// FaultStats 查询窗口内故障聚合统计，?hours= 默认 24
func (h *HistoryHandler) FaultStats(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history storage not enabled"})
		return
	}
	hours := 24
	if v := c.Query("hours"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil && vv > 0 {
			hours = vv
		}
	}
	list, err := h.stats.FaultStats(c.Request.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": list, "window_hours": hours})
}

// Snapshot 查询最近一轮采集快照
func (h *HistoryHandler) Snapshot(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot cache not enabled"})
		return
	}
	snap, err := h.cache.Load(c.Request.Context())
	if errors.Is(err, redisstore.ErrNoSnapshot) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}
