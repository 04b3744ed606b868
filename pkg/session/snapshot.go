package session

import "laxyguide/pkg/model"

// StepSummary is the step-list entry shown while another step plays.
type StepSummary struct {
	ID       string `json:"id"`
	Order    int    `json:"order"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	HasAudio bool   `json:"has_audio"`
}

// Snapshot is the render-ready session state.
type Snapshot struct {
	Phase           Phase                  `json:"phase"`
	TourCode        string                 `json:"tour_code,omitempty"`
	TourTitle       string                 `json:"tour_title,omitempty"`
	DisplayLanguage string                 `json:"display_language,omitempty"`
	AudioLanguage   string                 `json:"audio_language,omitempty"`
	Languages       []string               `json:"languages,omitempty"`
	Steps           []StepSummary          `json:"steps,omitempty"`
	StepIndex       int                    `json:"step_index"`
	CurrentStep     model.ResolvedStepView `json:"current_step"`
	Error           string                 `json:"error,omitempty"`
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Phase:           m.phase,
		TourCode:        m.key.TourCode,
		DisplayLanguage: m.key.DisplayLanguage,
		AudioLanguage:   m.key.AudioLanguage,
		StepIndex:       m.stepIndex,
		CurrentStep:     m.view,
		Error:           m.lastError,
	}
	if m.tour == nil {
		return s
	}

	s.TourTitle = m.tour.Title
	s.Languages = m.tour.Languages
	s.Steps = make([]StepSummary, len(m.tour.Steps))
	for i := range m.tour.Steps {
		st := &m.tour.Steps[i]
		s.Steps[i] = StepSummary{
			ID:       st.ID,
			Order:    st.Order,
			Title:    st.Title,
			Subtitle: st.Subtitle,
			HasAudio: st.AudioByLanguage[m.key.AudioLanguage] != "",
		}
	}
	return s
}
