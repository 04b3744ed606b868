package guide

import (
	"encoding/json"

	"laxyguide/pkg/model"
)

// indexDocument is the raw {baseUrl}/index.json shape.
type indexDocument struct {
	Title     model.LocalizedText `json:"title"`
	Languages []string            `json:"languages"`
}

// contentDocument is the raw {baseUrl}/content.json shape.
type contentDocument struct {
	Points []rawPoint `json:"points"`
}

// rawPoint is one point-of-interest entry as the store serves it. Text
// fields arrive as plain strings or language maps; images as bare URL
// strings or objects.
type rawPoint struct {
	ID        string                `json:"id"`
	Order     int                   `json:"order"`
	Title     model.LocalizedText   `json:"title"`
	Subtitle  model.LocalizedText   `json:"subtitle"`
	Audio     map[string]string     `json:"audio"`
	Subtitles map[string]string     `json:"subtitles"`
	Images    map[string][]rawImage `json:"images"`
	Durations map[string]float64    `json:"durations"`
}

// rawImage mirrors model.StepImage but tolerates the bare-string form.
type rawImage struct {
	URL            string  `json:"url"`
	StartTimestamp float64 `json:"start_timestamp"`
	EndTimestamp   float64 `json:"end_timestamp"`
}

// UnmarshalJSON accepts either "path/to.jpg" or a full image object.
// Missing timestamps default to 0.
func (i *rawImage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = rawImage{URL: s}
		return nil
	}
	type plain rawImage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = rawImage(p)
	return nil
}
