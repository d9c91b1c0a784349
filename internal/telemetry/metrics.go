package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики планировщика и раннера. Экспортируются на /metrics
// в долгоживущих режимах (watch).
var (
	// SamplesDiscovered — количество обнаруженных пар образцов.
	SamplesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ampliflow_samples_discovered_total",
		Help: "Total number of discovered sample pairs.",
	})

	// TasksTotal — завершённые tasks по стадии и статусу.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ampliflow_tasks_total",
		Help: "Total number of finished tasks by stage and status.",
	}, []string{"stage", "status"})

	// TasksRunning — tasks в статусе RUNNING.
	TasksRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ampliflow_tasks_running",
		Help: "Number of tasks currently running.",
	})

	// CPUSlotsInUse — занятые CPU-слоты глобального бюджета.
	CPUSlotsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ampliflow_cpu_slots_in_use",
		Help: "CPU slots currently acquired by running tasks.",
	})

	// TaskDuration — длительность выполнения task по стадиям.
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ampliflow_task_duration_seconds",
		Help:    "Task wall-clock duration by stage.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"stage"})

	// PublishFailures — неудачные копирования артефактов в results.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ampliflow_publish_failures_total",
		Help: "Total number of failed artifact publications.",
	})

	// RunsTotal — завершённые запуски по статусу.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ampliflow_runs_total",
		Help: "Total number of finished pipeline runs by status.",
	}, []string{"status"})
)
