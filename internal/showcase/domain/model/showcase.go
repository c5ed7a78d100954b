package model

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// PublicationStatus tracks whether a showcase is live.
type PublicationStatus string

const (
	PublicationDraft     PublicationStatus = "draft"
	PublicationPublished PublicationStatus = "published"
)

// AccessType controls who may open a published showcase.
type AccessType string

const (
	AccessPublic  AccessType = "public"
	AccessPrivate AccessType = "private"
)

var (
	ErrUsername   = errors.New("username must be 3-40 lowercase letters, digits or dashes")
	ErrAccessType = errors.New("visibility access type must be public or private")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,38}[a-z0-9]$`)

// ValidUsername reports whether name can be used as a public path segment.
func ValidUsername(name string) bool { return usernamePattern.MatchString(name) }

// Project is a submission presented on a showcase.
type Project struct {
	ID               string   `json:"id" bson:"id"`
	SubmissionID     string   `json:"submissionId,omitempty" bson:"submission_id,omitempty"`
	Title            string   `json:"title" bson:"title"`
	Description      string   `json:"description,omitempty" bson:"description,omitempty"`
	Technologies     []string `json:"technologies,omitempty" bson:"technologies,omitempty"`
	FeaturedImageURL string   `json:"featuredImageUrl,omitempty" bson:"featured_image_url,omitempty"`
	RepoLink         string   `json:"repoLink,omitempty" bson:"repo_link,omitempty"`
	DemoLink         string   `json:"demoLink,omitempty" bson:"demo_link,omitempty"`
	DeployedURL      string   `json:"deployedUrl,omitempty" bson:"deployed_url,omitempty"`
	IsIncluded       bool     `json:"isIncluded" bson:"is_included"`
	DisplayOrder     int      `json:"displayOrder" bson:"display_order"`
}

// Experience is one entry of the work history section.
type Experience struct {
	Company     string     `json:"company" bson:"company"`
	Title       string     `json:"title" bson:"title"`
	Location    string     `json:"location,omitempty" bson:"location,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty" bson:"start_date,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty" bson:"end_date,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Blog links an article written by the student.
type Blog struct {
	Title       string     `json:"title" bson:"title"`
	URL         string     `json:"url" bson:"url"`
	Summary     string     `json:"summary,omitempty" bson:"summary,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" bson:"published_at,omitempty"`
}

type Visibility struct {
	IsPublic     bool       `json:"isPublic" bson:"is_public"`
	AccessType   AccessType `json:"accessType" bson:"access_type"`
	CustomDomain string     `json:"customDomain,omitempty" bson:"custom_domain,omitempty"`
}

// Stats are the running view counters kept on the showcase itself.
type Stats struct {
	TotalViews   int64      `json:"totalViews" bson:"total_views"`
	UniqueViews  int64      `json:"uniqueViews" bson:"unique_views"`
	LastViewedAt *time.Time `json:"lastViewedAt,omitempty" bson:"last_viewed_at,omitempty"`
}

// Publication records the last publish.
type Publication struct {
	Status      PublicationStatus `json:"status" bson:"status"`
	PublishedAt *time.Time        `json:"publishedAt,omitempty" bson:"published_at,omitempty"`
	URL         string            `json:"url,omitempty" bson:"url,omitempty"`
	Files       []string          `json:"files,omitempty" bson:"files,omitempty"`
	Version     int               `json:"version" bson:"version"`
}

// Preview is a temporary rendering that expires on its own.
type Preview struct {
	Timestamp int64     `json:"timestamp" bson:"timestamp"`
	URL       string    `json:"url" bson:"url"`
	Files     []string  `json:"files" bson:"files"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expires_at"`
}

// Meta holds SEO metadata for the rendered page.
type Meta struct {
	Title       string   `json:"title,omitempty" bson:"title,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty" bson:"keywords,omitempty"`
	OGImageURL  string   `json:"ogImageUrl,omitempty" bson:"og_image_url,omitempty"`
}

// Showcase is a student's public portfolio.
type Showcase struct {
	ID               string                 `json:"id" bson:"_id"`
	StudentProfileID string                 `json:"studentProfileId" bson:"student_profile_id"`
	UserID           string                 `json:"userId" bson:"user_id"`
	Username         string                 `json:"username" bson:"username"`
	TemplateID       string                 `json:"templateId,omitempty" bson:"template_id,omitempty"`
	Profile          map[string]interface{} `json:"profile,omitempty" bson:"profile,omitempty"`
	Projects         []Project              `json:"projects" bson:"projects"`
	Experience       []Experience           `json:"experience,omitempty" bson:"experience,omitempty"`
	Career           map[string]interface{} `json:"career,omitempty" bson:"career,omitempty"`
	Blogs            []Blog                 `json:"blogs,omitempty" bson:"blogs,omitempty"`
	Customization    map[string]interface{} `json:"customization,omitempty" bson:"customization,omitempty"`
	Visibility       Visibility             `json:"visibility" bson:"visibility"`
	Analytics        Stats                  `json:"analytics" bson:"analytics"`
	Publication      Publication            `json:"publication" bson:"publication"`
	Meta             Meta                   `json:"meta" bson:"meta"`
	PreviewData      *Preview               `json:"previewData,omitempty" bson:"preview_data,omitempty"`
	CreatedAt        time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time              `json:"updatedAt" bson:"updated_at"`
}

func (s *Showcase) Validate() error {
	if !ValidUsername(s.Username) {
		return ErrUsername
	}
	switch s.Visibility.AccessType {
	case AccessPublic, AccessPrivate:
	default:
		return ErrAccessType
	}
	return nil
}

// IsPublished reports whether the showcase has live files.
func (s *Showcase) IsPublished() bool {
	return s.Publication.Status == PublicationPublished
}

// IsVisible reports whether anonymous visitors may open the published showcase.
func (s *Showcase) IsVisible() bool {
	return s.IsPublished() && s.Visibility.IsPublic && s.Visibility.AccessType == AccessPublic
}

// IncludedProjects returns the projects marked for display in display order.
func (s *Showcase) IncludedProjects() []Project {
	out := make([]Project, 0, len(s.Projects))
	for _, p := range s.Projects {
		if p.IsIncluded {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

// HasProject reports whether id names one of the showcase's projects.
func (s *Showcase) HasProject(id string) bool {
	for _, p := range s.Projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Bundle is the rendered site handed to publish or preview. Assets are keyed by
// their path below assets/.
type Bundle struct {
	HTML   string            `json:"html" validate:"required"`
	CSS    string            `json:"css,omitempty"`
	JS     string            `json:"js,omitempty"`
	Assets map[string][]byte `json:"assets,omitempty"`
}

// Bundle entry names.
const (
	IndexFile  = "index.html"
	StyleFile  = "style.css"
	ScriptFile = "script.js"
	AssetDir   = "assets/"
)

// PublicPrefix is the object prefix of a published showcase.
func PublicPrefix(username string) string { return "public/" + username + "/" }

// PreviewPrefix is the object prefix of one preview.
func PreviewPrefix(userID string, ts int64) string {
	return "previews/" + userID + "/" + strconv.FormatInt(ts, 10) + "/"
}
