package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/pt_BR"
	"github.com/taskly/dashboard/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLocale is the locale used when none is configured
const DefaultLocale = "pt-BR"

// ErrInvalidDate is returned when a date cannot be labeled
var ErrInvalidDate = models.ErrInvalidDate

// supportedLocales pairs each matchable tag with its CLDR translator
var (
	supportedLocales = []struct {
		tag        language.Tag
		translator locales.Translator
	}{
		{language.BrazilianPortuguese, pt_BR.New()},
		{language.AmericanEnglish, en_US.New()},
		{language.Spanish, es.New()},
	}
	localeMatcher = language.NewMatcher(supportedTags())
)

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(supportedLocales))
	for _, l := range supportedLocales {
		tags = append(tags, l.tag)
	}
	return tags
}

// Labeler turns dates into short, capitalized month labels for one locale
type Labeler struct {
	tag    language.Tag
	labels [12]string
}

// NewLabeler returns a labeler for the closest supported locale.
// Unsupported but well-formed locales fall back to pt-BR.
func NewLabeler(locale string) (*Labeler, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	_, index, _ := localeMatcher.Match(requested)
	supported := supportedLocales[index]

	caser := cases.Title(supported.tag, cases.NoLower)
	l := &Labeler{tag: supported.tag}
	for m := time.January; m <= time.December; m++ {
		abbr := supported.translator.MonthAbbreviated(m)
		l.labels[m-1] = caser.String(strings.TrimRight(abbr, "."))
	}
	return l, nil
}

var defaultLabeler = mustLabeler(DefaultLocale)

func mustLabeler(locale string) *Labeler {
	l, err := NewLabeler(locale)
	if err != nil {
		panic(err)
	}
	return l
}

// Locale returns the locale the labeler formats for
func (l *Labeler) Locale() string {
	return l.tag.String()
}

// Label returns the month label of t
func (l *Labeler) Label(t time.Time) string {
	return l.labels[t.Month()-1]
}

// LabelString parses value as a due date and returns its month label
func (l *Labeler) LabelString(value string) (string, error) {
	t, err := models.ParseDueDate(value)
	if err != nil {
		return "", err
	}
	return l.Label(t), nil
}

// Labels returns the twelve labels in calendar order
func (l *Labeler) Labels() []string {
	return append([]string(nil), l.labels[:]...)
}

// MonthLabel returns the pt-BR month label of t, e.g. "Jan" or "Fev"
func MonthLabel(t time.Time) string {
	return defaultLabeler.Label(t)
}

// MonthLabelFromString parses value and returns its pt-BR month label.
// Unparseable input yields an error wrapping ErrInvalidDate.
func MonthLabelFromString(value string) (string, error) {
	return defaultLabeler.LabelString(value)
}
