// Package stats tracks what a diagram run wrote. One Stats value is shared by
// every diagram of a run and is safe for concurrent use.
package stats

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tordrt/relschema/internal/model"
)

// Stats records written tables and diagrams, both as plain counts and as
// prometheus metrics.
type Stats struct {
	excluded []*model.Column
	registry *prometheus.Registry

	mu       sync.Mutex
	tables   map[*model.Table]struct{}
	diagrams int
	hidden   int

	tablesDrawn   prometheus.Counter
	diagramsTotal *prometheus.CounterVec
	hiddenImplied prometheus.Counter
}

// New creates Stats reporting excluded as the columns hidden from every
// diagram. A nil registry gets a fresh one.
func New(excluded []*model.Column, reg *prometheus.Registry) *Stats {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Stats{
		excluded: excluded,
		registry: reg,
		tables:   make(map[*model.Table]struct{}),
		tablesDrawn: factory.NewCounter(prometheus.CounterOpts{
			Name: "relschema_table_nodes_written_total",
			Help: "Table nodes written across all diagrams",
		}),
		diagramsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relschema_diagrams_written_total",
			Help: "Relationship diagrams written by radius",
		}, []string{"degrees"}),
		hiddenImplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "relschema_implied_relationships_hidden_total",
			Help: "Implied relationships left out of diagrams",
		}),
	}
}

// ExcludedColumns returns the columns hidden from every diagram.
func (s *Stats) ExcludedColumns() []*model.Column {
	return s.excluded
}

// WroteTable records a table node written to a diagram.
func (s *Stats) WroteTable(t *model.Table) {
	s.tablesDrawn.Inc()
	s.mu.Lock()
	s.tables[t] = struct{}{}
	s.mu.Unlock()
}

// WroteDiagram records a finished diagram that left hidden implied
// relationships out.
func (s *Stats) WroteDiagram(twoDegrees bool, hidden int) {
	degrees := "1"
	if twoDegrees {
		degrees = "2"
	}
	s.diagramsTotal.WithLabelValues(degrees).Inc()
	s.hiddenImplied.Add(float64(hidden))

	s.mu.Lock()
	s.diagrams++
	s.hidden += hidden
	s.mu.Unlock()
}

// TablesWritten counts the distinct tables drawn in any diagram.
func (s *Stats) TablesWritten() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables)
}

// DiagramsWritten counts finished diagrams.
func (s *Stats) DiagramsWritten() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diagrams
}

// HiddenImplied sums the implied relationships left out of diagrams.
func (s *Stats) HiddenImplied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// Registry returns the registry holding the run's metrics.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// WriteMetrics writes the metrics in text exposition format to path.
func (s *Stats) WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
