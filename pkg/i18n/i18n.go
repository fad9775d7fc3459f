package i18n

import (
	"embed"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	//go:embed *.toml
	f embed.FS
)

type Localizer struct {
	bundle   *i18n.Bundle
	registry map[string]*i18n.Localizer
}

func NewLocalizer(languages ...string) Localizer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	l := Localizer{
		bundle:   bundle,
		registry: make(map[string]*i18n.Localizer, len(languages)),
	}
	for _, lang := range languages {
		if _, err := bundle.LoadMessageFileFS(f, lang+".toml"); err != nil {
			slog.Error("failed to load i18n messages", slog.String("lang", lang), slog.String("error", err.Error()))
			continue
		}
		l.registry[lang] = i18n.NewLocalizer(bundle, lang)
	}
	return l
}

func (l Localizer) lookup(lang string) *i18n.Localizer {
	if localizer := l.registry[lang]; localizer != nil {
		return localizer
	}
	return l.registry[DEFAULT_LANG]
}

// Get falls back to DEFAULT_LANG when lang is not registered and to id itself when no translation exists.
func (l Localizer) Get(lang string, id string) string {
	return l.localize(lang, id, nil)
}

func (l Localizer) GetWithData(lang, id string, data map[string]any) string {
	return l.localize(lang, id, data)
}

func (l Localizer) localize(lang, id string, data map[string]any) string {
	localizer := l.lookup(lang)
	if localizer == nil {
		return id
	}

	str, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, One: id, Other: id},
		TemplateData:   data,
	})
	if err != nil {
		slog.Debug("i18n message not found", slog.String("lang", lang), slog.String("id", id), slog.String("error", err.Error()))
		return id
	}
	return str
}
