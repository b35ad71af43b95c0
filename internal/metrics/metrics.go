package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	CommandTotal       *prometheus.CounterVec // labels: op, result=ok|nak|transport_error|decode_error
	TransportBytesSent prometheus.Counter
	TransportBytesRecv prometheus.Counter
	PrinterOnlineGauge prometheus.Gauge       // 最近一次对话探测是否成功
	FaultGauge         *prometheus.GaugeVec   // labels: fault，1=置位
	JetSpeedGauge      *prometheus.GaugeVec   // labels: jet，单位 m/s
	JetCounterGauge    *prometheus.GaugeVec   // labels: jet
	AvailableJetsGauge prometheus.Gauge       // 在位喷头数
	PollTotal          *prometheus.CounterVec // labels: result=ok|error
	JetWarningTotal    prometheus.Counter     // 越界喷头号告警计数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printer_command_total",
			Help: "Printer commands by opcode and result.",
		}, []string{"op", "result"}),
		TransportBytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "printer_transport_bytes_sent_total",
			Help: "Total bytes written to the printer socket.",
		}),
		TransportBytesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "printer_transport_bytes_received_total",
			Help: "Total bytes read from the printer socket.",
		}),
		PrinterOnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printer_online",
			Help: "Whether the last dialog probe succeeded.",
		}),
		FaultGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "printer_fault_active",
			Help: "Named fault bits from the last fault query.",
		}, []string{"fault"}),
		JetSpeedGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "printer_jet_speed_mps",
			Help: "Jet speed in m/s from the last poll.",
		}, []string{"jet"}),
		JetCounterGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "printer_jet_counter",
			Help: "Print counter per jet from the last poll.",
		}, []string{"jet"}),
		AvailableJetsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printer_available_jets",
			Help: "Number of jets currently present.",
		}),
		PollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "printer_poll_total",
			Help: "Poll cycles by result.",
		}, []string{"result"}),
		JetWarningTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "printer_jet_range_warning_total",
			Help: "Commands issued against a jet id beyond the discovered jet count.",
		}),
	}
	reg.MustRegister(
		m.CommandTotal, m.TransportBytesSent, m.TransportBytesRecv,
		m.PrinterOnlineGauge, m.FaultGauge, m.JetSpeedGauge, m.JetCounterGauge,
		m.AvailableJetsGauge, m.PollTotal, m.JetWarningTotal,
	)
	return m
}
