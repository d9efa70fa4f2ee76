// Package metrics exposes Prometheus counters for registration outcomes.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "registrar"

// Metrics holds the registration counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	admissions            *prometheus.CounterVec
	eligibilityRejections prometheus.Counter
	promotions            prometheus.Counter
}

// New creates the counters and registers them on reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Admission attempts by resulting outcome.",
		}, []string{"outcome"}),
		eligibilityRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_rejections_total",
			Help:      "Registrations refused for unmet prerequisites.",
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_promotions_total",
			Help:      "Waitlisted registrations promoted to registered.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.admissions, m.eligibilityRejections, m.promotions)
	}
	return m
}

// ObserveAdmission counts one admission attempt. outcome is a registration
// status token or a failure label such as "rejected".
func (m *Metrics) ObserveAdmission(outcome string) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(outcome).Inc()
}

// ObserveEligibilityRejection counts one prerequisite failure.
func (m *Metrics) ObserveEligibilityRejection() {
	if m == nil {
		return
	}
	m.eligibilityRejections.Inc()
}

// ObservePromotion counts one waitlist promotion.
func (m *Metrics) ObservePromotion() {
	if m == nil {
		return
	}
	m.promotions.Inc()
}

// WriteText gathers g and writes every family in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("error gathering metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("error writing metric family %s: %w", family.GetName(), err)
		}
	}
	return nil
}
