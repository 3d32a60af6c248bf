package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MeridiemGlyphs supplies the AM/PM markers for 12-hour time display.
// Glyphs are caller-supplied per language, never hardcoded at the
// formatting site.
type MeridiemGlyphs struct {
	AM string
	PM string
}

var meridiemByLang = map[string]MeridiemGlyphs{
	"en": {AM: "AM", PM: "PM"},
	"ar": {AM: "صباحاً", PM: "مساءً"},
}

// GlyphsForLang returns the meridiem glyph set for a language code,
// falling back to English.
func GlyphsForLang(lang string) MeridiemGlyphs {
	if g, ok := meridiemByLang[lang]; ok {
		return g
	}
	return meridiemByLang["en"]
}

// TemplateValues are the substitutions for a reminder template.
type TemplateValues struct {
	ClientName string
	Date       string
	Time       string
	Service    string
}

// Render substitutes {clientName}, {date}, {time} and {service} in a
// template. Unmatched placeholders are left verbatim.
func Render(template string, values TemplateValues) string {
	r := strings.NewReplacer(
		"{clientName}", values.ClientName,
		"{date}", values.Date,
		"{time}", values.Time,
		"{service}", values.Service,
	)
	return r.Replace(template)
}

// FormatDate renders a calendar date as yyyy/MM/dd.
func FormatDate(t time.Time) string {
	return t.Format("2006/01/02")
}

// FormatTime converts a 24-hour "HH:MM" string to 12-hour "h:mm" with
// the supplied meridiem glyph.
func FormatTime(hhmm string, glyphs MeridiemGlyphs) string {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return hhmm
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return hhmm
	}

	glyph := glyphs.AM
	if hour >= 12 {
		glyph = glyphs.PM
	}

	displayHour := hour
	switch {
	case hour > 12:
		displayHour = hour - 12
	case hour == 0:
		displayHour = 12
	}

	return fmt.Sprintf("%d:%s %s", displayHour, parts[1], glyph)
}
