package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageCatalogGreek(t *testing.T) {
	m := NewMessageCatalog("el")
	assert.Equal(t, "el", m.Locale())
	assert.Equal(t, "Συνολικές εγγραφές προς επεξεργασία: 100", m.TotalCount(100))
	assert.Equal(t, "Επιτυχής καταχώρηση 50 εγγραφών.", m.Progress(50))
	assert.Equal(t, "Η δημιουργία διαδικασίας ολοκληρώθηκε επιτυχώς.", m.Success())
	assert.Equal(t, "Η δημιουργία διαδικασίας απέτυχε. - disk full", m.Failure("disk full"))
}

func TestMessageCatalogEnglish(t *testing.T) {
	m := NewMessageCatalog(" EN ")
	assert.Equal(t, "Total records to process: 3", m.TotalCount(3))
	assert.Equal(t, "Successfully recorded 2 records.", m.Progress(2))
	assert.Equal(t, "Process creation completed successfully.", m.Success())
	assert.Equal(t, "Process creation failed. - boom", m.Failure("boom"))
}

func TestMessageCatalogFallsBackToGreek(t *testing.T) {
	assert.Equal(t, LocaleGreek, NewMessageCatalog("fr").Locale())
	assert.Equal(t, LocaleGreek, NewMessageCatalog("").Locale())
}
