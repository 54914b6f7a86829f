// Package settings lets the officer choose a model provider and tune the
// pipeline from the console.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

var errSettingsUnavailable = errors.New("settings service not available")

// Section is the page of the view being shown.
type Section int

const (
	SectionOverview Section = iota
	SectionLLM
	SectionPipeline
)

// Field is one editable pipeline setting.
type Field struct {
	Key   string
	Label string
	value func(p domain.PipelineSettings) string
}

// PipelineFields are the pipeline settings editable from the console, in
// display order. Keys match the config file.
var PipelineFields = []Field{
	{"pipeline.output_dir", "Output directory", func(p domain.PipelineSettings) string { return p.OutputDir }},
	{"pipeline.screening_list_path", "Screening list file", func(p domain.PipelineSettings) string { return p.ScreeningListPath }},
	{"pipeline.screening_list_url", "Screening list URL", func(p domain.PipelineSettings) string { return p.ScreeningListURL }},
	{"pipeline.match_threshold", "Match threshold", func(p domain.PipelineSettings) string {
		return strconv.FormatFloat(p.MatchThreshold, 'f', -1, 64)
	}},
	{"pipeline.batch_window_days", "Batch window (days)", func(p domain.PipelineSettings) string { return strconv.Itoa(p.BatchWindowDays) }},
	{"pipeline.requests_per_minute", "Requests per minute", func(p domain.PipelineSettings) string { return strconv.Itoa(p.RequestsPerMinute) }},
	{"pipeline.offline", "Offline screening", func(p domain.PipelineSettings) string { return strconv.FormatBool(p.Offline) }},
}

// overviewRows is the number of entries on the overview page.
const overviewRows = 2

// View shows and edits application settings.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.SettingsService

	settings *domain.AppSettings
	err      error
	notice   string

	section Section
	cursor  int

	// editing is set while a text input owns the keyboard.
	editing bool
	apiKey  textinput.Model
	value   textinput.Model
}

// NewView creates the settings view.
func NewView(s *styles.Styles, service driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKey := textinput.New()
	apiKey.Placeholder = "Enter API key"
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 256

	value := textinput.New()
	value.CharLimit = 1024

	return &View{
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		service: service,
		apiKey:  apiKey,
		value:   value,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.reload()
}

func (v *View) reload() tea.Cmd {
	return v.call(func(svc driving.SettingsService) tea.Msg {
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}, messages.SettingsLoaded{Err: errSettingsUnavailable})
}

// call runs fn against the service, or returns unavailable when there is none.
func (v *View) call(fn func(driving.SettingsService) tea.Msg, unavailable tea.Msg) tea.Cmd {
	svc := v.service
	return func() tea.Msg {
		if svc == nil {
			return unavailable
		}
		return fn(svc)
	}
}

func (v *View) save(fn func(driving.SettingsService) error) tea.Cmd {
	return v.call(func(svc driving.SettingsService) tea.Msg {
		return messages.SettingsSaved{Err: fn(svc)}
	}, messages.SettingsSaved{Err: errSettingsUnavailable})
}

// Update handles loads, saves and keys.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}

	case messages.SettingsSaved:
		v.err = msg.Err
		if msg.Err == nil {
			v.notice = "Saved"
			return v, v.reload()
		}

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()
	if keymap.Matches(k, v.keys.Back) {
		return v.back()
	}
	v.notice = ""

	if v.editing {
		return v.handleInput(msg)
	}

	switch {
	case keymap.Matches(k, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case keymap.Matches(k, v.keys.Down):
		v.cursor = min(v.cursor+1, v.rows()-1)
	case keymap.Matches(k, v.keys.Select):
		return v.activate()
	case k == "tab" && v.section == SectionLLM:
		return v.editAPIKey()
	}
	return nil
}

func (v *View) back() tea.Cmd {
	if v.section == SectionOverview {
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	v.section = SectionOverview
	v.cursor = 0
	v.stopEditing()
	return nil
}

func (v *View) rows() int {
	switch v.section {
	case SectionLLM:
		return len(domain.AllLLMProviders())
	case SectionPipeline:
		return len(PipelineFields)
	default:
		return overviewRows
	}
}

// activate acts on the row under the cursor.
func (v *View) activate() tea.Cmd {
	switch v.section {
	case SectionOverview:
		if v.cursor == 0 {
			v.section, v.cursor = SectionLLM, v.currentProvider()
		} else {
			v.section, v.cursor = SectionPipeline, 0
		}
		return nil

	case SectionLLM:
		provider := domain.AllLLMProviders()[v.cursor]
		if provider.RequiresAPIKey() {
			return v.editAPIKey()
		}
		return v.saveProvider(provider, "")

	default:
		current := ""
		if v.settings != nil {
			current = PipelineFields[v.cursor].value(v.settings.Pipeline)
		}
		v.value.SetValue(current)
		v.value.CursorEnd()
		v.editing = true
		return v.value.Focus()
	}
}

func (v *View) editAPIKey() tea.Cmd {
	if !domain.AllLLMProviders()[v.cursor].RequiresAPIKey() {
		return nil
	}
	v.editing = true
	return v.apiKey.Focus()
}

func (v *View) handleInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	if v.section == SectionLLM {
		switch msg.String() {
		case "tab", "shift+tab":
			v.stopEditing()
		case "enter":
			return v.saveProvider(domain.AllLLMProviders()[v.cursor], v.apiKey.Value())
		default:
			v.apiKey, cmd = v.apiKey.Update(msg)
		}
		return cmd
	}

	if msg.Type == tea.KeyEnter {
		field := PipelineFields[v.cursor]
		value := strings.TrimSpace(v.value.Value())
		v.stopEditing()
		return v.save(func(svc driving.SettingsService) error { return svc.Set(field.Key, value) })
	}
	v.value, cmd = v.value.Update(msg)
	return cmd
}

func (v *View) saveProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	model := domain.DefaultLLMModels()[provider]
	return v.save(func(svc driving.SettingsService) error {
		return svc.SetLLMProvider(provider, model, apiKey)
	})
}

func (v *View) stopEditing() {
	v.editing = false
	v.apiKey.Blur()
	v.value.Blur()
}

func (v *View) currentProvider() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllLLMProviders() {
		if p == v.settings.LLM.Provider {
			return i
		}
	}
	return 0
}

// View renders the active section.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	switch {
	case v.settings == nil && v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	case v.settings == nil:
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		v.renderOverview(&b)
	case SectionLLM:
		v.renderProviders(&b)
	case SectionPipeline:
		v.renderPipeline(&b)
	}

	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// row writes one list line with the cursor marker and label padded to width.
func (v *View) row(b *strings.Builder, i, width int, label string) {
	marker, style := "  ", v.styles.Normal
	if i == v.cursor {
		marker, style = "> ", v.styles.Selected
	}
	b.WriteString(style.Render(fmt.Sprintf("%s%-*s", marker, width, label)))
}

func (v *View) renderOverview(b *strings.Builder) {
	llm := v.settings.LLM
	model := "Not configured (offline screening)"
	if llm.Provider != "" {
		model = fmt.Sprintf("%s (%s)", llm.Provider.Description(), llm.Model)
	}
	llmState := v.styles.Success.Render("ready")
	if !llm.IsConfigured() {
		llmState = v.styles.Warning.Render("not configured")
	}

	p := v.settings.Pipeline
	mode := v.styles.Success.Render("online")
	if p.Offline {
		mode = v.styles.Warning.Render("offline")
	}

	v.row(b, 0, 14, "LLM Provider")
	b.WriteString(v.styles.Normal.Render(model+"  ") + llmState + "\n")
	v.row(b, 1, 14, "Pipeline")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("output %s, window %d days  ", p.OutputDir, p.BatchWindowDays)) + mode + "\n")
}

func (v *View) renderProviders(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Select LLM Provider"))
	b.WriteString("\n\n")

	providers := domain.AllLLMProviders()
	models := domain.DefaultLLMModels()
	for i, provider := range providers {
		v.row(b, i, 0, provider.Description())
		if provider == v.settings.LLM.Provider {
			b.WriteString(v.styles.Success.Render(" (current)"))
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("    Model: " + models[provider]))
		b.WriteString("\n")
	}

	if selected := providers[v.cursor]; selected.RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("API Key (or set %s):", selected.APIKeyEnv())))
		b.WriteString("\n")
		b.WriteString(v.apiKey.View())
		b.WriteString("\n")
	}
}

func (v *View) renderPipeline(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Pipeline"))
	b.WriteString("\n\n")

	for i, f := range PipelineFields {
		v.row(b, i, 22, f.Label)
		switch value := f.value(v.settings.Pipeline); {
		case i == v.cursor && v.editing:
			b.WriteString(v.value.View())
		case value == "":
			b.WriteString(v.styles.Muted.Render("-"))
		default:
			b.WriteString(v.styles.Normal.Render(value))
		}
		b.WriteString("\n")
	}
}

func (v *View) renderHelp() string {
	var text string
	switch {
	case v.section == SectionLLM && v.editing:
		text = "[tab] back to list  [enter] save  [esc] back"
	case v.editing:
		text = "[enter] save  [esc] cancel"
	case v.section == SectionLLM:
		text = "[j/k] navigate  [tab] API key  [enter] select  [esc] back"
	default:
		text = "[j/k] navigate  [enter] edit  [esc] back"
	}
	return v.styles.Help.Render(text)
}

// SetDimensions is a no-op; the view lays out by line.
func (v *View) SetDimensions(_, _ int) {}

// Reset returns to the overview and clears inputs.
func (v *View) Reset() {
	v.section = SectionOverview
	v.cursor = 0
	v.err = nil
	v.notice = ""
	v.apiKey.SetValue("")
	v.value.SetValue("")
	v.stopEditing()
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Err returns the last load or save error.
func (v *View) Err() error {
	return v.err
}
