// Package i18n selects the message printer for CLI output.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we ship messages for
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// Summary lines printed by the CLI. English is the key itself.
const (
	MsgApplySummary    = "%d applied, %d failed, %d skipped\n"
	MsgPlanSummary     = "%d planned, %d failed, %d skipped (dry run)\n"
	MsgValidateSummary = "%s: %d ok, %d warnings, %d errors\n"
	MsgNotApplicable   = "%s: not applicable, skipped\n"
	MsgPresetCount     = "%d presets in %s\n"
	MsgBackupCount     = "%d backups of %s\n"
)

var german = map[string]string{
	MsgApplySummary:    "%d angewendet, %d fehlgeschlagen, %d übersprungen\n",
	MsgPlanSummary:     "%d geplant, %d fehlgeschlagen, %d übersprungen (Probelauf)\n",
	MsgValidateSummary: "%s: %d ok, %d Warnungen, %d Fehler\n",
	MsgNotApplicable:   "%s: nicht anwendbar, übersprungen\n",
	MsgPresetCount:     "%d Presets in %s\n",
	MsgBackupCount:     "%d Sicherungen von %s\n",
}

func init() {
	for key, msg := range german {
		message.SetString(language.German, key, msg)
	}
}

// MatchLanguage returns the best supported language for a locale string
// such as "de_DE.UTF-8" or an Accept-Language style list.
func MatchLanguage(raw string) language.Tag {
	if i := strings.IndexAny(raw, ".@"); i != -1 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")

	if tag, err := language.Parse(raw); err == nil {
		matched, _, _ := matcher.Match(tag)
		return matched
	}
	tags, _, _ := language.ParseAcceptLanguage(raw)
	tag, _, _ := matcher.Match(tags...)
	return tag
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if lang := os.Getenv(name); lang != "" && lang != "C" && lang != "POSIX" {
			return message.NewPrinter(MatchLanguage(lang))
		}
	}
	return message.NewPrinter(DefaultLang)
}
