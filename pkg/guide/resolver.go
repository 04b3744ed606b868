// Package guide fetches tour documents from the tour store and normalizes
// them into the engine's domain model.
package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"laxyguide/pkg/config"
	"laxyguide/pkg/model"
)

// Fetcher is the slice of the request client the resolver needs.
type Fetcher interface {
	Get(ctx context.Context, url, cacheKey string) ([]byte, error)
}

// Resolver turns a (tourCode, displayLanguage) pair into a Tour.
type Resolver struct {
	client Fetcher
	store  *config.StoreConfig
}

// NewResolver creates a Resolver backed by the given fetcher.
func NewResolver(client Fetcher, store *config.StoreConfig) *Resolver {
	return &Resolver{client: client, store: store}
}

// Resolve fetches the tour's index and content documents and normalizes them
// into a Tour. Both fetches must succeed; a partial tour is never returned.
func (r *Resolver) Resolve(ctx context.Context, tourCode, displayLanguage string) (*model.Tour, error) {
	baseURL := r.store.BaseURL(tourCode)

	var indexData, contentData []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := r.client.Get(gctx, baseURL+"/index.json", "tour/"+tourCode+"/index.json")
		if err != nil {
			return fmt.Errorf("tour index fetch failed: %w", err)
		}
		indexData = data
		return nil
	})
	g.Go(func() error {
		data, err := r.client.Get(gctx, baseURL+"/content.json", "tour/"+tourCode+"/content.json")
		if err != nil {
			return fmt.Errorf("tour content fetch failed: %w", err)
		}
		contentData = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var index indexDocument
	if err := json.Unmarshal(indexData, &index); err != nil {
		return nil, fmt.Errorf("tour index is not valid JSON: %w", err)
	}
	var content contentDocument
	if err := json.Unmarshal(contentData, &content); err != nil {
		return nil, fmt.Errorf("tour content is not valid JSON: %w", err)
	}

	tour := &model.Tour{
		TourCode:        tourCode,
		DisplayLanguage: displayLanguage,
		Title:           index.Title.Resolve(displayLanguage, "Untitled Tour"),
		Languages:       index.Languages,
		BaseURL:         baseURL,
		Steps:           make([]model.Step, 0, len(content.Points)),
	}

	for i, raw := range content.Points {
		tour.Steps = append(tour.Steps, normalizeStep(raw, i, displayLanguage))
	}

	slog.Info("Tour resolved", "tour", tourCode, "language", displayLanguage, "steps", len(tour.Steps))
	return tour, nil
}

// normalizeStep converts one raw point-of-interest entry into a Step.
// pos is the zero-based position in the raw list.
func normalizeStep(raw rawPoint, pos int, displayLanguage string) model.Step {
	step := model.Step{
		ID:       raw.ID,
		Order:    pos + 1,
		Title:    raw.Title.Resolve(displayLanguage, "Untitled Step"),
		Subtitle: raw.Subtitle.Resolve(displayLanguage, ""),

		AudioByLanguage:    raw.Audio,
		SubtitleByLanguage: raw.Subtitles,
		DurationByLanguage: raw.Durations,
	}
	if step.ID == "" {
		step.ID = fmt.Sprintf("step-%d", pos+1)
	}
	// An explicit ordering field wins over list position when present
	if raw.Order > 0 {
		step.Order = raw.Order
	}

	if len(raw.Images) > 0 {
		step.ImagesByLanguage = make(map[string][]model.StepImage, len(raw.Images))
		for lang, images := range raw.Images {
			normalized := make([]model.StepImage, 0, len(images))
			for _, img := range images {
				normalized = append(normalized, model.StepImage(img))
			}
			step.ImagesByLanguage[lang] = normalized
		}
	}
	return step
}

// ResolveStep projects a step for one audio language: absolute media URLs,
// or empty strings where the step has nothing for that language.
func ResolveStep(tour *model.Tour, step *model.Step, audioLanguage string) model.ResolvedStepView {
	view := model.ResolvedStepView{
		ID:          step.ID,
		Order:       step.Order,
		Title:       step.Title,
		Description: step.Subtitle,
	}

	if path, ok := step.AudioByLanguage[audioLanguage]; ok && path != "" {
		view.AudioURL = absoluteURL(tour.BaseURL, path)
	}
	if path, ok := step.SubtitleByLanguage[audioLanguage]; ok && path != "" {
		view.SubtitleURL = absoluteURL(tour.BaseURL, path)
	}
	if d, ok := step.DurationByLanguage[audioLanguage]; ok {
		view.Duration = d
	}
	for _, img := range step.ImagesByLanguage[audioLanguage] {
		img.URL = absoluteURL(tour.BaseURL, img.URL)
		view.Images = append(view.Images, img)
	}
	return view
}

// absoluteURL joins a possibly-relative asset path onto the tour base URL.
// Already-absolute URLs pass through untouched.
func absoluteURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	u, err := url.Parse(baseURL + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return path
	}
	return u.String()
}
