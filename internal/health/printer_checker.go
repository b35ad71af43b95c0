package health

import (
	"context"
	"time"

	"github.com/taoyao-code/cij-gateway/internal/printer"
)

// PrinterChecker 通过对话就绪探测判断喷码机可达性。
// 探测失败只降级不判死：网关本身仍可服务历史查询。
type PrinterChecker struct {
	sess *printer.Session
}

// NewPrinterChecker 创建喷码机健康检查器
func NewPrinterChecker(sess *printer.Session) *PrinterChecker {
	return &PrinterChecker{sess: sess}
}

// Name 返回检查器名称
func (c *PrinterChecker) Name() string {
	return "printer"
}

// Check 执行健康检查
func (c *PrinterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := c.sess.DialogReady(probeCtx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: err.Error(),
			Latency: time.Since(start),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "dialog ready",
		Latency: time.Since(start),
	}
}
