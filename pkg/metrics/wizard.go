package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// WizardSessionsStarted counts wizard sessions opened (new or edit mode).
	WizardSessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_sessions_started_total",
		Help: "Total recommendation wizard sessions started",
	})

	WizardSubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_submissions_total",
		Help: "Total recommendations successfully submitted from the wizard",
	})

	WizardSubmissionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_submission_failures_total",
		Help: "Total wizard submissions rejected by the recommendation store",
	})

	// CatalogSearchLatency measures the debounced storefront product fetch.
	CatalogSearchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_search_latency_seconds",
		Help:    "Latency of storefront catalog searches",
		Buckets: prometheus.DefBuckets,
	})

	ClientSearchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "client_directory_searches_total",
		Help: "Total client directory searches issued by the resolver",
	})
)

func Init() {
	prometheus.MustRegister(
		WizardSessionsStarted,
		WizardSubmissions,
		WizardSubmissionFailures,
		CatalogSearchLatency,
		ClientSearchTotal,
	)
}
