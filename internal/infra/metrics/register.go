package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu         sync.Mutex
	collectors []prometheus.Collector
	registered = map[prometheus.Registerer]bool{}
)

// register queues collectors declared by the init funcs of this package.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister adds every collector of this package to reg, or to the
// default registry when reg is nil. Repeated calls for the same registry
// are no-ops.
func MustRegister(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mu.Lock()
	defer mu.Unlock()
	if registered[reg] {
		return
	}
	reg.MustRegister(collectors...)
	registered[reg] = true
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
