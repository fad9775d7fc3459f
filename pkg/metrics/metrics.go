package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager 持有独立的 registry, 指标名统一加上 namespace 与 subsystem 前缀
type Manager struct {
	namespace string
	system    string
	registry  *prometheus.Registry
}

func NewManager(ns, system string) *Manager {
	m := &Manager{
		namespace: FmtFixer(ns),
		system:    FmtFixer(system),
		registry:  prometheus.NewRegistry(),
	}
	m.registry.MustRegister(collectors.NewGoCollector())
	return m
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// register 重复注册时返回已存在的 collector
func register[T prometheus.Collector](m *Manager, c T) T {
	if err := m.registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func emptyLabels(labels []string) []string {
	return make([]string, len(labels))
}

func (m *Manager) NewCounterVec(name string, labels []string) *prometheus.CounterVec {
	vec := register(m, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.system,
		Name:      FmtFixer(name),
		Help:      fmt.Sprintf("%s count of /%s/%s", name, m.namespace, m.system),
	}, labels))
	vec.WithLabelValues(emptyLabels(labels)...).Add(0)
	return vec
}

func (m *Manager) NewHistogramVec(name string, labels []string) *prometheus.HistogramVec {
	return register(m, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.system,
		Name:      FmtFixer(name),
		Help:      fmt.Sprintf("%s duration of /%s/%s", name, m.namespace, m.system),
	}, labels))
}

func (m *Manager) NewGaugeVec(name string, labels []string) *prometheus.GaugeVec {
	vec := register(m, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.system,
		Name:      FmtFixer(name),
		Help:      fmt.Sprintf("%s gauge of /%s/%s", name, m.namespace, m.system),
	}, labels))
	vec.WithLabelValues(emptyLabels(labels)...).Add(0)
	return vec
}

// ExportHandler 以 gin handler 的形式暴露 /metrics
func (m *Manager) ExportHandler() gin.HandlerFunc {
	h := promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return gin.WrapH(h)
}

func FmtFixer(in string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(in)
}
