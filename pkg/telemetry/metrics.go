package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Movimientos de inventario confirmados por tipo",
	}, []string{"type"})

	StockRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movement_rejections_total",
		Help: "Movimientos rechazados por el motor de stock",
	}, []string{"reason"})

	SalesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Ventas creadas",
	})

	PurchasesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_created_total",
		Help: "Compras creadas",
	})

	WorkflowLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_latency_seconds",
		Help:    "Duración de los flujos de venta, compra e inventario",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de peticiones HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Peticiones HTTP atendidas",
	}, []string{"method", "path", "status"})
)
