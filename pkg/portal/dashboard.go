package portal

import "strconv"

// ReportMetric is a dashboard headline counter with its period change.
type ReportMetric struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Count  float64 `json:"count"`
	Change float64 `json:"change"`
}

// ChangeLabel renders the change with an explicit sign for non-negative values.
func (m ReportMetric) ChangeLabel() string {
	s := strconv.FormatFloat(m.Change, 'f', -1, 64) + "%"
	if m.Change >= 0 {
		return "+" + s
	}
	return s
}

// ActiveUser is a row in the most-active-users table.
type ActiveUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Activity int    `json:"activity"`
}

// Series is one named dataset of a monthly chart.
type Series struct {
	Label string `json:"label"`
	Data  []int  `json:"data"`
}

// Trend is a labelled chart.
type Trend struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Dashboard is the admin dashboard content.
type Dashboard struct {
	Metrics  []ReportMetric `json:"metrics"`
	Users    []ActiveUser   `json:"users"`
	Monthly  Trend          `json:"monthly"`
	Feedback Trend          `json:"feedback"`
}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// DashboardData returns the dashboard content.
func DashboardData() Dashboard {
	return Dashboard{
		Metrics: []ReportMetric{
			{ID: "1", Title: "Total Reports", Count: 1245, Change: 12},
			{ID: "2", Title: "Open Requests", Count: 342, Change: -5},
			{ID: "3", Title: "Resolved", Count: 876, Change: 8},
			{ID: "4", Title: "Avg. Response Time", Count: 2.4, Change: -0.5},
		},
		Users: []ActiveUser{
			{ID: "1", Name: "Alex Johnson", Role: "Admin", Activity: 98},
			{ID: "2", Name: "Sam Wilson", Role: "Moderator", Activity: 87},
			{ID: "3", Name: "Taylor Swift", Role: "User", Activity: 76},
			{ID: "4", Name: "Jamie Lee", Role: "User", Activity: 65},
			{ID: "5", Name: "Casey Smith", Role: "User", Activity: 54},
		},
		Monthly: Trend{
			Labels: append([]string(nil), months...),
			Series: []Series{
				{Label: "Reports", Data: []int{120, 190, 170, 220, 240, 195}},
				{Label: "Requests", Data: []int{80, 120, 140, 110, 160, 150}},
			},
		},
		Feedback: Trend{
			Labels: append([]string(nil), months...),
			Series: []Series{
				{Label: "Positive", Data: []int{65, 59, 80, 81, 76, 85}},
				{Label: "Negative", Data: []int{28, 35, 32, 25, 19, 15}},
			},
		},
	}
}
