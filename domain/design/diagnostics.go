package design

// Diagnostics summarises the numerical health of a prepared design
type Diagnostics struct {
	Rows      int     `json:"rows"`
	Columns   int     `json:"columns"`
	Rank      int     `json:"rank"`
	Condition float64 `json:"condition"`
}

// RankDeficient reports whether some design columns are linear combinations of others
func (d Diagnostics) RankDeficient() bool {
	return d.Rank < d.Columns
}
