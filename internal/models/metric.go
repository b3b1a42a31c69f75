package models

// MetricCard is one of the headline counters on the dashboard
type MetricCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value int    `json:"value"`
}
