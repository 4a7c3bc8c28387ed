package dto

// OverviewCounts holds the entity counts shown on the admin dashboard cards
type OverviewCounts struct {
	Students int `json:"students"`
	Teachers int `json:"teachers"`
	Parents  int `json:"parents"`
	Classes  int `json:"classes"`
	Events   int `json:"events"`
}

// SexCount is one slice of the students-by-sex chart
type SexCount struct {
	Sex   string `json:"sex"`
	Count int    `json:"count"`
}

// AttendanceDay is one bucket of the weekly attendance chart
type AttendanceDay struct {
	Day     string `json:"day"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}
