package application

import (
	"bytes"
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// RenderedNewsItem is a news entry whose text has been rendered to HTML.
type RenderedNewsItem struct {
	HTML string
	URL  string
}

// ContentService exposes the public content held in the settings record.
type ContentService struct {
	settings *SettingsMirror
}

// NewContentService creates a ContentService.
func NewContentService(settings *SettingsMirror) *ContentService {
	return &ContentService{settings: settings}
}

// AboutMarkdown returns the raw about page.
func (s *ContentService) AboutMarkdown(ctx context.Context) (string, error) {
	settings, err := s.settings.Ensure(ctx)
	if err != nil {
		return "", err
	}
	return settings.AboutMD, nil
}

// AboutHTML returns the about page rendered to sanitized HTML.
func (s *ContentService) AboutHTML(ctx context.Context) (string, error) {
	md, err := s.AboutMarkdown(ctx)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(md), nil
}

// News returns the decoded news list.
func (s *ContentService) News(ctx context.Context) ([]model.NewsItem, error) {
	settings, err := s.settings.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	items, err := settings.News()
	if err != nil {
		return nil, fmt.Errorf("load news: %w", err)
	}
	return items, nil
}

// RenderedNews returns the news list with each entry's text rendered.
func (s *ContentService) RenderedNews(ctx context.Context) ([]RenderedNewsItem, error) {
	items, err := s.News(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RenderedNewsItem, 0, len(items))
	for _, item := range items {
		out = append(out, RenderedNewsItem{
			HTML: RenderMarkdown(item.Text),
			URL:  item.URL,
		})
	}
	return out, nil
}
