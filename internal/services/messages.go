package services

import (
	"fmt"
	"strings"
)

const (
	LocaleGreek   = "el"
	LocaleEnglish = "en"
)

// MessageCatalog renders the step texts written by the lifecycle verbs.
type MessageCatalog interface {
	Locale() string
	TotalCount(n int) string
	Progress(n int) string
	Success() string
	Failure(message string) string
}

type messageCatalog struct {
	locale     string
	totalCount string
	progress   string
	success    string
	failure    string
}

var catalogs = map[string]messageCatalog{
	LocaleGreek: {
		locale:     LocaleGreek,
		totalCount: "Συνολικές εγγραφές προς επεξεργασία: %d",
		progress:   "Επιτυχής καταχώρηση %d εγγραφών.",
		success:    "Η δημιουργία διαδικασίας ολοκληρώθηκε επιτυχώς.",
		failure:    "Η δημιουργία διαδικασίας απέτυχε. - %s",
	},
	LocaleEnglish: {
		locale:     LocaleEnglish,
		totalCount: "Total records to process: %d",
		progress:   "Successfully recorded %d records.",
		success:    "Process creation completed successfully.",
		failure:    "Process creation failed. - %s",
	},
}

// NewMessageCatalog returns the catalog for locale, falling back to Greek.
func NewMessageCatalog(locale string) MessageCatalog {
	if c, ok := catalogs[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return c
	}
	return catalogs[LocaleGreek]
}

func (c messageCatalog) Locale() string { return c.locale }

func (c messageCatalog) TotalCount(n int) string { return fmt.Sprintf(c.totalCount, n) }

func (c messageCatalog) Progress(n int) string { return fmt.Sprintf(c.progress, n) }

func (c messageCatalog) Success() string { return c.success }

func (c messageCatalog) Failure(message string) string { return fmt.Sprintf(c.failure, message) }
