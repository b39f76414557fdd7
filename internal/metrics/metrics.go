// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 食事操作の種別ラベル。
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordUserRegistered()
	RecordRegistrationConflict()
	RecordMealOperation(operation string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus            *prometheus.CounterVec
	requestLatency        prometheus.Histogram
	usersRegistered       prometheus.Counter
	registrationConflicts prometheus.Counter
	mealOperations        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dietlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dietlog_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dietlog_users_registered_total",
			Help: "登録されたユーザーの合計数",
		}),
		registrationConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dietlog_registration_conflicts_total",
			Help: "ユーザー名またはセッションの重複で拒否された登録の合計数",
		}),
		mealOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dietlog_meal_operations_total",
			Help: "成功した食事の作成・更新・削除の操作数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.usersRegistered,
		c.registrationConflicts,
		c.mealOperations,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordUserRegistered はユーザー登録の成功を記録する。
func (c *Collector) RecordUserRegistered() {
	c.usersRegistered.Inc()
}

// RecordRegistrationConflict は重複による登録拒否を記録する。
func (c *Collector) RecordRegistrationConflict() {
	c.registrationConflicts.Inc()
}

// RecordMealOperation は食事操作の成功を記録する。
func (c *Collector) RecordMealOperation(operation string) {
	c.mealOperations.WithLabelValues(operation).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
