// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	taskStatusLoaded = "loaded"
	taskStatusFailed = "failed"
)

var (
	// Batch load metrics
	batchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krepis_load_batches_total",
			Help: "Total number of batch load requests",
		},
	)
	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "krepis_load_batch_duration_seconds",
			Help:    "Duration of batch loads in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Per-task metrics
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krepis_load_tasks_total",
			Help: "Total number of load tasks by terminal status",
		},
		[]string{"status"},
	)
	installsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krepis_module_installs_total",
			Help: "Total number of modules installed on demand by batch loads",
		},
	)
)

// taskStatus maps a task outcome to its metric label.
func taskStatus(success bool) string {
	if success {
		return taskStatusLoaded
	}
	return taskStatusFailed
}
