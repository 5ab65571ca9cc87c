package portal

// PageKind groups pages by how they are served.
type PageKind string

const (
	PageHome      PageKind = "home"
	PageForm      PageKind = "form"
	PageChat      PageKind = "chat"
	PageRewards   PageKind = "rewards"
	PageDashboard PageKind = "dashboard"
	PageImpact    PageKind = "impact"
)

// Route binds a path to exactly one page.
type Route struct {
	Path  string   `json:"path"`
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Kind  PageKind `json:"kind"`
	// Form names the catalog entry for PageForm routes.
	Form string `json:"form,omitempty"`
}

var routes = []Route{
	{Path: "/", Name: "home", Title: "Facility Services Portal", Kind: PageHome},
	{Path: "/report", Name: "report", Title: "Report an Issue", Kind: PageForm, Form: FormReport},
	{Path: "/request", Name: "request", Title: "Service Request", Kind: PageForm, Form: FormRequest},
	{Path: "/feedback", Name: "feedback", Title: "Share Your Feedback", Kind: PageForm, Form: FormFeedback},
	{Path: "/reward", Name: "reward", Title: "Rewards", Kind: PageRewards},
	{Path: "/chatbot", Name: "chatbot", Title: "AI Assistant", Kind: PageChat},
	{Path: "/dashboard", Name: "dashboard", Title: "Dashboard", Kind: PageDashboard},
	{Path: "/impact", Name: "impact", Title: "Impact Report", Kind: PageImpact},
}

// Routes returns the navigation table in display order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// RouteFor resolves a path.
func RouteFor(path string) (Route, bool) {
	for _, route := range routes {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

// RouteForForm returns the route serving a catalog form.
func RouteForForm(key string) (Route, bool) {
	for _, route := range routes {
		if route.Kind == PageForm && route.Form == key {
			return route, true
		}
	}
	return Route{}, false
}
