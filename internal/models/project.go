package models

import "strings"

// APIKeyDisplayLength is the number of key characters ever shown to the operator.
const APIKeyDisplayLength = 16

// Project is a tenant registered with the gateway.
type Project struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        *string  `json:"description,omitempty"`
	APIKey             string   `json:"api_key"`
	AllowedModels      []string `json:"allowed_models"`
	IsActive           bool     `json:"is_active"`
	RateLimitPerMinute *int     `json:"rate_limit_per_minute,omitempty"`
}

// MaskedKey returns the displayable prefix of the project's API key.
func (p Project) MaskedKey() string {
	return MaskAPIKey(p.APIKey)
}

// Status returns the label used for the activation flag.
func (p Project) Status() string {
	if p.IsActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	out := p
	if p.AllowedModels != nil {
		out.AllowedModels = append([]string(nil), p.AllowedModels...)
	}
	if p.Description != nil {
		d := *p.Description
		out.Description = &d
	}
	if p.RateLimitPerMinute != nil {
		r := *p.RateLimitPerMinute
		out.RateLimitPerMinute = &r
	}
	return out
}

// CreateProjectRequest is the body of POST /admin/projects.
type CreateProjectRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	AllowedModels []string `json:"allowed_models"`
}

// MaskAPIKey keeps the first APIKeyDisplayLength characters and appends "...".
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	runes := []rune(key)
	if len(runes) > APIKeyDisplayLength {
		runes = runes[:APIKeyDisplayLength]
	}
	return string(runes) + "..."
}

// ParseAllowedModels turns comma separated free text into a model allow-list.
// Tokens are trimmed; empty tokens and repeated names are dropped, order is kept.
func ParseAllowedModels(text string) []string {
	models := make([]string, 0)
	seen := make(map[string]struct{})
	for _, token := range strings.Split(text, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		models = append(models, name)
	}
	return models
}

// CountActive returns how many projects are active.
func CountActive(projects []Project) int {
	n := 0
	for i := range projects {
		if projects[i].IsActive {
			n++
		}
	}
	return n
}
