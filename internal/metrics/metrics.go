// metrics содержит prometheus-счётчики ядра: обновления кэша, мутации, команды карты, HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cowele"

// Result: метка исхода операции.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics: набор коллекторов процесса.
type Metrics struct {
	Refreshes   *prometheus.CounterVec
	Mutations   *prometheus.CounterVec
	MapCommands *prometheus.CounterVec
	Requests    *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	Panics      *prometheus.CounterVec
	Subscribers prometheus.Gauge
}

// New создаёт коллекторы и регистрирует их в reg.
// nil reg: коллекторы не регистрируются (удобно в тестах).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Full reloads of cached entity lists.",
		}, []string{"entity", "result"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutations issued against the remote store.",
		}, []string{"op", "result"}),
		MapCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_commands_total",
			Help:      "Commands emitted by the map focus controller.",
		}, []string{"kind"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Recovered handler panics by route.",
		}, []string{"route"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_stream_subscribers",
			Help:      "Connected map stream subscribers.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Refreshes, m.Mutations, m.MapCommands, m.Requests, m.Latency, m.Panics, m.Subscribers)
	}

	return m
}

// Refresh учитывает перезагрузку списка entity.
func (m *Metrics) Refresh(entity string, err error) {
	if m == nil {
		return
	}

	m.Refreshes.WithLabelValues(entity, result(err)).Inc()
}

// Mutation учитывает мутацию op.
func (m *Metrics) Mutation(op string, err error) {
	if m == nil {
		return
	}

	m.Mutations.WithLabelValues(op, result(err)).Inc()
}

// MapCommand учитывает команду карты.
func (m *Metrics) MapCommand(kind string) {
	if m == nil {
		return
	}

	m.MapCommands.WithLabelValues(kind).Inc()
}

// Request учитывает завершённый HTTP-запрос.
func (m *Metrics) Request(method, route string, code int, took time.Duration) {
	if m == nil {
		return
	}

	m.Requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.Latency.WithLabelValues(method, route).Observe(took.Seconds())
}

// Panic учитывает перехваченную панику обработчика route.
func (m *Metrics) Panic(route string) {
	if m == nil {
		return
	}

	m.Panics.WithLabelValues(route).Inc()
}

// StreamSubscribers меняет число подключённых подписчиков потока карты на delta.
func (m *Metrics) StreamSubscribers(delta float64) {
	if m == nil {
		return
	}

	m.Subscribers.Add(delta)
}

func result(err error) string {
	if err != nil {
		return ResultError
	}

	return ResultOK
}
