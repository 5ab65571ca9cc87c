package portal

// NavItem is a quick-navigation tile on the home page.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Stat is a headline figure.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Home is the landing page content.
type Home struct {
	Badge       string    `json:"badge"`
	Headline    string    `json:"headline"`
	Highlight   string    `json:"highlight"`
	Intro       string    `json:"intro"`
	Nav         []NavItem `json:"nav"`
	Engagement  string    `json:"engagementTitle"`
	Pitch       string    `json:"pitch"`
	Features    []string  `json:"features"`
	Stats       []Stat    `json:"stats"`
	Quote       string    `json:"quote"`
	QuoteFollow string    `json:"quoteFollow"`
}

// HomeData returns the landing page content.
func HomeData() Home {
	return Home{
		Badge:     "Facility Services Portal",
		Headline:  "Welcome to Your",
		Highlight: "Smart Workspace",
		Intro:     "Experience the future of facility management with our integrated platform designed to enhance your workspace experience.",
		Nav: []NavItem{
			{Label: "Report", Path: "/report"},
			{Label: "Request", Path: "/request"},
			{Label: "Feedback", Path: "/feedback"},
			{Label: "Rewards", Path: "/reward"},
		},
		Engagement: "Empowering Your Facility Experience",
		Pitch:      "Our platform transforms how you interact with facility services, creating seamless connections between users and management. From instant reporting to reward recognition, we've built an ecosystem that values your participation and enhances your daily workspace experience.",
		Features: []string{
			"Real-time issue reporting and tracking",
			"Streamlined service requests",
			"Recognition and rewards program",
		},
		Stats: []Stat{
			{Value: "94%", Label: "User Satisfaction"},
			{Value: "2.3k", Label: "Active Users"},
			{Value: "48h", Label: "Avg Response"},
			{Value: "99.2%", Label: "Uptime"},
		},
		Quote:       "The greatest threat to our planet is the belief that someone else will save it.",
		QuoteFollow: "Together, we build sustainable workspaces for tomorrow.",
	}
}
