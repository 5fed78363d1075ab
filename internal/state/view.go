package state

import (
	"errors"
	"strings"
	"sync"
)

// Section is one of the console's top level sections.
type Section int

const (
	// SectionOverview shows aggregate traffic.
	SectionOverview Section = iota
	// SectionProjects lists tenant projects.
	SectionProjects
	// SectionSecurity is reserved for credential management.
	SectionSecurity
	// SectionSettings shows configuration and sync health.
	SectionSettings
)

// Sections lists every section in navigation order.
var Sections = []Section{SectionOverview, SectionProjects, SectionSecurity, SectionSettings}

// String returns the section's display name.
func (s Section) String() string {
	switch s {
	case SectionOverview:
		return "Overview"
	case SectionProjects:
		return "Projects"
	case SectionSecurity:
		return "Security"
	case SectionSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

var (
	// ErrNameRequired is returned when submitting a form without a project name.
	ErrNameRequired = errors.New("project name is required")
	// ErrSubmitInFlight is returned when a submit is already running.
	ErrSubmitInFlight = errors.New("project creation already in progress")
)

// ProjectForm is the draft behind the creation form.
type ProjectForm struct {
	Name        string
	Description string
	ModelsText  string
	Submitting  bool
}

// ViewState tracks the selected section and the creation form. It never
// talks to the network.
type ViewState struct {
	mu            sync.RWMutex
	section       Section
	formOpen      bool
	form          ProjectForm
	defaultModels string
}

// NewViewState starts on the overview with a closed, default form.
func NewViewState(defaultModels string) *ViewState {
	return &ViewState{
		section:       SectionOverview,
		defaultModels: defaultModels,
		form:          ProjectForm{ModelsText: defaultModels},
	}
}

// Section returns the selected section.
func (v *ViewState) Section() Section {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.section
}

// SetSection selects a section. Unknown values are ignored.
func (v *ViewState) SetSection(s Section) {
	if s < SectionOverview || s > SectionSettings {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.section = s
}

// CycleSection moves forward (delta > 0) or backward through the sections.
func (v *ViewState) CycleSection(delta int) Section {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := len(Sections)
	v.section = Section(((int(v.section)+delta)%n + n) % n)
	return v.section
}

// FormOpen reports whether the creation form is shown.
func (v *ViewState) FormOpen() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.formOpen
}

// OpenForm shows the creation form, keeping any draft values.
func (v *ViewState) OpenForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formOpen = true
}

// CloseForm hides the creation form. The draft is kept for the next open.
func (v *ViewState) CloseForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formOpen = false
}

// Form returns a copy of the draft.
func (v *ViewState) Form() ProjectForm {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.form
}

// DefaultForm returns the values the form resets to. It reads only the
// immutable default models and takes no lock.
func (v *ViewState) DefaultForm() ProjectForm {
	return ProjectForm{ModelsText: v.defaultModels}
}

// SetFormFields updates the draft text fields. Ignored while submitting.
func (v *ViewState) SetFormFields(name, description, modelsText string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.form.Submitting {
		return
	}
	v.form.Name = name
	v.form.Description = description
	v.form.ModelsText = modelsText
}

// BeginSubmit marks the draft as submitting and returns it.
func (v *ViewState) BeginSubmit() (ProjectForm, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.form.Submitting {
		return ProjectForm{}, ErrSubmitInFlight
	}
	if strings.TrimSpace(v.form.Name) == "" {
		return ProjectForm{}, ErrNameRequired
	}
	v.form.Submitting = true
	return v.form, nil
}

// CompleteSubmit ends a submit. On success the draft resets to its defaults
// and the form closes; otherwise the entered values stay for a retry.
func (v *ViewState) CompleteSubmit(ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if ok {
		v.form = v.DefaultForm()
		v.formOpen = false
		return
	}
	v.form.Submitting = false
}
