package itinerary

import (
	"time"

	"golang.org/x/text/language"
)

// Locale holds the calendar names used to label an itinerary.
type Locale struct {
	Tag      language.Tag
	months   [12]string
	weekdays [7]string
}

var (
	english = Locale{
		Tag: language.English,
		months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		weekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}

	brazilianPortuguese = Locale{
		Tag: language.BrazilianPortuguese,
		months: [12]string{
			"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
		},
		weekdays: [7]string{"dom.", "seg.", "ter.", "qua.", "qui.", "sex.", "sáb."},
	}

	supported = []Locale{english, brazilianPortuguese}
	matcher   = language.NewMatcher([]language.Tag{english.Tag, brazilianPortuguese.Tag})
)

// ResolveLocale returns the supported locale closest to name (a BCP 47 tag such as "pt-BR").
// Unknown or malformed names resolve to English.
func ResolveLocale(name string) Locale {
	tag, err := language.Parse(name)
	if err != nil {
		return english
	}

	_, index, _ := matcher.Match(tag)

	return supported[index]
}

// Month returns the long month name.
func (l Locale) Month(month time.Month) string {
	return l.months[month-1]
}

// Weekday returns the abbreviated weekday name.
func (l Locale) Weekday(day time.Weekday) string {
	return l.weekdays[day]
}
