package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/printer"
	"github.com/taoyao-code/cij-gateway/internal/protocol/s8"
)

// PrinterHandler 喷码机控制 API 处理器
type PrinterHandler struct {
	sess   *printer.Session
	logger *zap.Logger
}

// NewPrinterHandler 创建喷码机控制 API 处理器
func NewPrinterHandler(sess *printer.Session, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{sess: sess, logger: logger}
}

// writeError 将会话层错误映射为 HTTP 状态码：
// 设备拒绝 409，应答畸形 502，链路不可达 503
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, s8.ErrNotAcknowledged):
		c.JSON(http.StatusConflict, gin.H{"error": "device rejected command"})
	case errors.Is(err, s8.ErrMalformedField), errors.Is(err, s8.ErrChecksumMismatch):
		c.JSON(http.StatusBadGateway, gin.H{"error": "malformed device response"})
	case errors.Is(err, printer.ErrTransport):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "printer unreachable"})
	case errors.Is(err, s8.ErrInvalidDateTime):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// jetID 解析路径中的喷头号
func jetID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid jet id"})
		return 0, false
	}
	return id, true
}

// Ping 对话就绪探测
func (h *PrinterHandler) Ping(c *gin.Context) {
	if err := h.sess.DialogReady(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": true})
}

type powerRequest struct {
	Mode string `json:"mode" binding:"required"`
}

var powerModes = map[string]byte{
	"startup":        s8.ModeStartup,
	"short_shutdown": s8.ModeShortShutdown,
	"long_shutdown":  s8.ModeLongShutdown,
}

// Power 启动或停机
func (h *PrinterHandler) Power(c *gin.Context) {
	var req powerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, ok := powerModes[req.Mode]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be startup, short_shutdown or long_shutdown"})
		return
	}
	if err := h.sess.StartStop(c.Request.Context(), mode); err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("启停命令已执行", zap.String("mode", req.Mode))
	c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
}

// GetDateTime 读取自动日期表
func (h *PrinterHandler) GetDateTime(c *gin.Context) {
	dt, err := h.sess.GetDateTime(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"datetime": dt.String(),
		"second":   dt.Second,
		"minute":   dt.Minute,
		"hour":     dt.Hour,
		"day":      dt.Day,
		"month":    dt.Month,
		"year":     dt.Year,
	})
}

type setDateTimeRequest struct {
	// SyncNow 为 true 时取网关本机时钟，忽略其余字段
	SyncNow bool `json:"sync_now"`
	Second  int  `json:"second"`
	Minute  int  `json:"minute"`
	Hour    int  `json:"hour"`
	Day     int  `json:"day"`
	Month   int  `json:"month"`
	Year    int  `json:"year"`
}

// SetDateTime 设置自动日期表
func (h *PrinterHandler) SetDateTime(c *gin.Context) {
	var req setDateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dt s8.DateTime
	if req.SyncNow {
		dt = s8.FromTime(time.Now())
	} else {
		dt = s8.DateTime{
			Second: req.Second, Minute: req.Minute, Hour: req.Hour,
			Day: req.Day, Month: req.Month, Year: req.Year,
		}
	}
	if err := h.sess.SetDateTime(c.Request.Context(), dt); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datetime": dt.String()})
}

// GetParameters 读取运行参数
func (h *PrinterHandler) GetParameters(c *gin.Context) {
	ps, err := h.sess.GetParameters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// GetFaults 读取故障表
func (h *PrinterHandler) GetFaults(c *gin.Context) {
	fs, err := h.sess.GetFaults(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":         fs.Active(),
		"available_jets": fs.AvailableJets(),
	})
}

// ResetFaults 复位故障
func (h *PrinterHandler) ResetFaults(c *gin.Context) {
	if err := h.sess.ResetFaults(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableJets 读取在位喷头数
func (h *PrinterHandler) AvailableJets(c *gin.Context) {
	n, err := h.sess.AvailableJets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_jets": n})
}

// GetJetStatus 读取喷头状态
func (h *PrinterHandler) GetJetStatus(c *gin.Context) {
	id, ok := jetID(c)
	if !ok {
		return
	}
	status, err := h.sess.GetJetStatus(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jet_id": id, "status": status})
}

// GetJetSpeed 读取墨线速度
func (h *PrinterHandler) GetJetSpeed(c *gin.Context) {
	id, ok := jetID(c)
	if !ok {
		return
	}
	speed, err := h.sess.GetJetSpeed(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jet_id": id, "speed_mps": speed})
}

// GetJetCounter 读取喷印计数
func (h *PrinterHandler) GetJetCounter(c *gin.Context) {
	id, ok := jetID(c)
	if !ok {
		return
	}
	n, err := h.sess.GetJetCounter(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jet_id": id, "counter": n})
}

// ResetJetCounter 清零喷印计数
func (h *PrinterHandler) ResetJetCounter(c *gin.Context) {
	id, ok := jetID(c)
	if !ok {
		return
	}
	if err := h.sess.ResetJetCounter(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type variablesRequest struct {
	Variables []string `json:"variables" binding:"required"`
}

// SetVariables 下发外部变量
func (h *PrinterHandler) SetVariables(c *gin.Context) {
	id, ok := jetID(c)
	if !ok {
		return
	}
	var req variablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Variables) == 0 || len(req.Variables) > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variables must contain 1 to 10 entries"})
		return
	}
	if err := h.sess.SetExternalVariables(c.Request.Context(), id, req.Variables); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jet_id": id, "count": len(req.Variables)})
}
