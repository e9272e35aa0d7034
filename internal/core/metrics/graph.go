package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const subsystem = "graph"

// GraphMetrics 图目录同步指标
type GraphMetrics struct {
	localUpdates    *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	publishDuration prometheus.Histogram
	remoteMerges    *prometheus.CounterVec
	decodeErrors    prometheus.Counter
	peerEvents      *prometheus.CounterVec
	participants    prometheus.Gauge
	nodes           prometheus.Gauge
}

// NewGraphMetrics 创建指标并注册到 reg
//
// reg 为 nil 时只创建不注册。
func NewGraphMetrics(reg prometheus.Registerer, namespace string) (*GraphMetrics, error) {
	m := &GraphMetrics{
		localUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "local_updates_total",
				Help:      "Local graph mutations applied, by operation.",
			},
			[]string{"op"},
		),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "publish_failures_total",
				Help:      "Directory publishes that failed, by error kind.",
			},
			[]string{"kind"},
		),
		publishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "publish_duration_seconds",
				Help:      "Time spent publishing a directory message.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		remoteMerges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "remote_merges_total",
				Help:      "Remote directory messages merged, by result.",
			},
			[]string{"result"},
		),
		decodeErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "decode_errors_total",
				Help:      "Directory messages that could not be decoded.",
			},
		),
		peerEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "peer_events_total",
				Help:      "Directory topic membership events, by type.",
			},
			[]string{"type"},
		),
		participants: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "participants",
				Help:      "Participants currently known, including the local one.",
			},
		),
		nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "nodes",
				Help:      "Nodes currently known across the domain.",
			},
		),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	for _, c := range m.collectors() {
		err = multierr.Append(err, reg.Register(c))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GraphMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.localUpdates,
		m.publishFailures,
		m.publishDuration,
		m.remoteMerges,
		m.decodeErrors,
		m.peerEvents,
		m.participants,
		m.nodes,
	}
}

// Unregister 从 reg 注销全部指标
func (m *GraphMetrics) Unregister(reg prometheus.Registerer) {
	if m == nil || reg == nil {
		return
	}
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}

// ObserveLocalUpdate 记录一次本地变更
func (m *GraphMetrics) ObserveLocalUpdate(op string) {
	if m == nil {
		return
	}
	m.localUpdates.WithLabelValues(op).Inc()
}

// ObservePublish 记录一次发布，failureKind 为空表示成功
func (m *GraphMetrics) ObservePublish(d time.Duration, failureKind string) {
	if m == nil {
		return
	}
	m.publishDuration.Observe(d.Seconds())
	if failureKind != "" {
		m.publishFailures.WithLabelValues(failureKind).Inc()
	}
}

// ObserveMerge 记录一次远端合并
func (m *GraphMetrics) ObserveMerge(result string) {
	if m == nil {
		return
	}
	m.remoteMerges.WithLabelValues(result).Inc()
}

// ObserveDecodeError 记录一次解码失败
func (m *GraphMetrics) ObserveDecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

// ObservePeerEvent 记录一次成员事件
func (m *GraphMetrics) ObservePeerEvent(eventType string) {
	if m == nil {
		return
	}
	m.peerEvents.WithLabelValues(eventType).Inc()
}

// SetGraphSize 更新参与者数与节点数
func (m *GraphMetrics) SetGraphSize(participants, nodes int) {
	if m == nil {
		return
	}
	m.participants.Set(float64(participants))
	m.nodes.Set(float64(nodes))
}
