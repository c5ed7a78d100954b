package model

import (
	"errors"
	"strings"
	"time"
)

var ErrTemplateName = errors.New("template name is required")

// Template is a portfolio layout students pick for their showcase. TemplateFiles maps
// a file name to its key in the template bucket.
type Template struct {
	ID                   string                 `json:"id" bson:"_id"`
	Name                 string                 `json:"name" bson:"name"`
	Description          string                 `json:"description,omitempty" bson:"description,omitempty"`
	ThumbnailURL         string                 `json:"thumbnailUrl,omitempty" bson:"thumbnail_url,omitempty"`
	IsActive             bool                   `json:"isActive" bson:"is_active"`
	DefaultTheme         string                 `json:"defaultTheme,omitempty" bson:"default_theme,omitempty"`
	Features             []string               `json:"features,omitempty" bson:"features,omitempty"`
	TemplateFiles        map[string]string      `json:"templateFiles,omitempty" bson:"template_files,omitempty"`
	CustomizationOptions map[string]interface{} `json:"customizationOptions,omitempty" bson:"customization_options,omitempty"`
	CreatedAt            time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time              `json:"updatedAt" bson:"updated_at"`
}

func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTemplateName
	}
	return nil
}

// FileKey is the template bucket key of a template file.
func FileKey(templateID, name string) string {
	return "templates/" + templateID + "/" + name
}
