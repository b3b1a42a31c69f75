package chart

// Series is the renderer's description of one bar series
type Series struct {
	DataKey string `json:"data_key"`
	Color   string `json:"color"`
}

// Spec tells a chart renderer how to draw the records: which key is the
// category axis and which keys are the grouped bars.
type Spec struct {
	Title       string   `json:"title"`
	CategoryKey string   `json:"category_key"`
	Series      []Series `json:"series"`
}

// Spec returns the renderer description for this schema
func (s *Schema) Spec() Spec {
	series := make([]Series, 0, len(s.projects))
	for _, p := range s.projects {
		series = append(series, Series{DataKey: p.Name, Color: p.Color})
	}
	return Spec{
		Title:       s.title,
		CategoryKey: NameField,
		Series:      series,
	}
}
