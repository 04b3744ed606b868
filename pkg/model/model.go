// Package model defines the shared domain types for the guide engine.
package model

// Tour is a complete guided-audio experience for one tour code, resolved for
// one display language. It is immutable after resolution; a tourCode or
// displayLanguage change replaces it wholesale.
type Tour struct {
	TourCode        string   `json:"tour_code"`
	DisplayLanguage string   `json:"display_language"`
	Title           string   `json:"title"`
	Languages       []string `json:"languages"` // available audio/content languages
	BaseURL         string   `json:"base_url"`
	Steps           []Step   `json:"steps"`
}

// HasLanguage reports whether the tour offers content in the given language.
func (t *Tour) HasLanguage(code string) bool {
	for _, l := range t.Languages {
		if l == code {
			return true
		}
	}
	return false
}

// Step is one stop of a tour. Text fields are already resolved to the tour's
// display language; media is keyed by audio language and resolved on demand.
type Step struct {
	ID       string `json:"id"`
	Order    int    `json:"order"` // 1-based position
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`

	AudioByLanguage    map[string]string       `json:"audio_by_language"`    // audio language -> relative audio path
	SubtitleByLanguage map[string]string       `json:"subtitle_by_language"` // audio language -> relative subtitle path
	ImagesByLanguage   map[string][]StepImage  `json:"images_by_language"`   // audio language -> timestamped images
	DurationByLanguage map[string]float64      `json:"duration_by_language"` // audio language -> seconds, if known
	Meta               map[string]string       `json:"meta,omitempty"`
}

// StepImage is one timeline-bound illustration of a step.
type StepImage struct {
	URL            string  `json:"url"`
	StartTimestamp float64 `json:"start_timestamp"`
	EndTimestamp   float64 `json:"end_timestamp"`
}

// ResolvedStepView is the render-ready projection of a Step for one audio
// language: absolute URLs, or empty strings where the step has no media for
// that language. Recomputed whenever (step, audio language) changes.
type ResolvedStepView struct {
	ID          string      `json:"id"`
	Order       int         `json:"order"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	AudioURL    string      `json:"audio_url"`    // empty = no audio for this language
	SubtitleURL string      `json:"subtitle_url"` // empty = no captions for this language
	Images      []StepImage `json:"images"`
	Duration    float64     `json:"duration"`
}

// HasAudio reports whether playback may be attempted for this view.
func (v *ResolvedStepView) HasAudio() bool {
	return v.AudioURL != ""
}

// ConfigKey identifies one fully-specified load request. Two requests with
// equal keys are the same load; this is the gate against redundant fetches
// and the discriminator for stale async results.
type ConfigKey struct {
	TourCode        string `json:"tour_code"`
	DisplayLanguage string `json:"display_language"`
	AudioLanguage   string `json:"audio_language"`
}

// SameTour reports whether only the audio language differs between the keys,
// i.e. the already-fetched tour documents remain valid.
func (k ConfigKey) SameTour(other ConfigKey) bool {
	return k.TourCode == other.TourCode && k.DisplayLanguage == other.DisplayLanguage
}
