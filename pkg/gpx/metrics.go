package gpx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openStores = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpsdata",
		Subsystem: "gpx",
		Name:      "open_stores",
		Help:      "GPX stores currently held open by a registry",
	})

	fileRewrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpsdata",
		Subsystem: "gpx",
		Name:      "file_rewrites_total",
		Help:      "Backing file rewrites by result",
	}, []string{"result"})
)
