// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/packetd/redline/common"
)

var (
	entriesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "store_entries",
			Help:      "Number of live entries currently held in the store",
		},
	)

	expiredCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "store_expired_total",
			Help:      "Total number of entries purged by TTL expiry",
		},
	)

	subscribersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "store_subscribers",
			Help:      "Number of active subscribers per channel",
		},
		[]string{"channel"},
	)
)
