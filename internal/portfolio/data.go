package portfolio

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed portfolio.json
var portfolioJSON []byte

type Personal struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Role              string `json:"role"`
	Bio               string `json:"bio"`
	AvailabilityBadge string `json:"availabilityBadge"`
	Location          string `json:"location"`
	Timezone          string `json:"timezone"`
	Email             string `json:"email"`
	CVURL             string `json:"cvUrl"`
	ProfileImageURL   string `json:"profileImageUrl"`
}

type Stats struct {
	YearsExperience string `json:"yearsExperience"`
	ProjectsCount   string `json:"projectsCount"`
	ClientsCount    string `json:"clientsCount"`
}

type TechStackItem struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type ExperienceItem struct {
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Location   string   `json:"location,omitempty"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Highlights []string `json:"highlights"`
}

type EducationItem struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Note        string `json:"note"`
}

type ProjectItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	LinkURL     string   `json:"linkUrl"`
	GitHubURL   string   `json:"githubUrl,omitempty"`
}

type SocialLink struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Handle string `json:"handle"`
}

type Social struct {
	GitHub   SocialLink `json:"github"`
	LinkedIn SocialLink `json:"linkedin"`
}

type Contact struct {
	Heading      string `json:"heading"`
	Description  string `json:"description"`
	Email        string `json:"email"`
	CTAText      string `json:"ctaText"`
	ResponseTime string `json:"responseTime"`
}

// Data is the static content of the site
type Data struct {
	Personal   Personal         `json:"personal"`
	Stats      Stats            `json:"stats"`
	TechStack  []TechStackItem  `json:"techStack"`
	Experience []ExperienceItem `json:"experience"`
	Education  []EducationItem  `json:"education"`
	Projects   []ProjectItem    `json:"projects"`
	Social     Social           `json:"social"`
	Contact    Contact          `json:"contact"`
}

// Load parses the embedded portfolio document
func Load() (*Data, error) {
	var d Data
	if err := json.Unmarshal(portfolioJSON, &d); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio data: %w", err)
	}
	return &d, nil
}
