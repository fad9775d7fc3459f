package core

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quka-ai/moodjournal/pkg/metrics"
)

type Metrics struct {
	manager         *metrics.Manager
	apiResponseTime *prometheus.HistogramVec
	apiErrorCounter *prometheus.CounterVec
	aiRequestTime   *prometheus.HistogramVec
	aiError         *prometheus.CounterVec
	recordingActive *prometheus.GaugeVec
}

func NewMetrics(ns, system string) *Metrics {
	manager := metrics.NewManager(ns, system)
	return &Metrics{
		manager:         manager,
		apiResponseTime: manager.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter: manager.NewCounterVec("api_error", []string{"method", "api", "status"}),
		aiRequestTime:   manager.NewHistogramVec("ai_request_time", []string{"target"}),
		aiError:         manager.NewCounterVec("ai_error", []string{"target"}),
		recordingActive: manager.NewGaugeVec("recording_active", nil),
	}
}

func (m *Metrics) ExportHandler() gin.HandlerFunc {
	return m.manager.ExportHandler()
}

func (m *Metrics) AIRequestTimer(target string) *prometheus.Timer {
	return prometheus.NewTimer(m.aiRequestTime.WithLabelValues(target))
}

func (m *Metrics) AIErrorInc(target string) {
	m.aiError.WithLabelValues(target).Inc()
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) RecordingStarted() {
	m.recordingActive.WithLabelValues().Inc()
}

func (m *Metrics) RecordingStopped() {
	m.recordingActive.WithLabelValues().Dec()
}
