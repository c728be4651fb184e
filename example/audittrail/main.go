// Command audittrail demonstrates tracking a contact record and a contact
// list, and writing the resulting before/after change records to an audit log.
package main

import (
	"log/slog"
	"os"

	"github.com/statetrack/change-tracker-go/changetracker"
	"github.com/statetrack/change-tracker-go/changetracker/oteladapters"
)

type Contact struct {
	ID        int
	FirstName string
	LastName  string
	Emails    []string
}

func byID(a *Contact, b *Contact) bool {
	return a.ID == b.ID
}

func main() {
	logger := oteladapters.NewSlogLoggerWithHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	auditLog := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	trackSingleContact(logger, auditLog)
	trackContactList(logger, auditLog)
}

func trackSingleContact(logger changetracker.Logger, auditLog *slog.Logger) {
	contact := &Contact{ID: 1, FirstName: "Ryan", LastName: "Kueter", Emails: []string{"ryan@example.com"}}

	trackable, err := changetracker.Track(contact, changetracker.WithLogger(logger))
	if err != nil {
		slog.Error("tracking contact failed", "error", err)
		os.Exit(1)
	}

	contact.LastName = "Silly"
	contact.Emails = append(contact.Emails, "silly@example.com")

	changed, err := trackable.HasChanges()
	if err != nil {
		slog.Error("diffing contact failed", "error", err)
		os.Exit(1)
	}

	if changed {
		auditLog.Info("contact updated",
			"tracking_id", trackable.TrackingID().String(),
			"before", trackable.BeforeJSON(),
			"after", trackable.AfterJSON(),
		)
	}
}

func trackContactList(logger changetracker.Logger, auditLog *slog.Logger) {
	contacts := []*Contact{
		{ID: 1, FirstName: "Ryan", LastName: "Kueter"},
		{ID: 2, FirstName: "John", LastName: "Doe"},
	}

	collection, err := changetracker.TrackAll(&contacts, byID, changetracker.WithLogger(logger))
	if err != nil {
		slog.Error("tracking contact list failed", "error", err)
		os.Exit(1)
	}

	if err = collection.Add(&Contact{ID: 3, FirstName: "Jane", LastName: "Roe"}); err != nil {
		slog.Error("adding contact failed", "error", err)
		os.Exit(1)
	}

	contacts[1].LastName = "Smith"

	changed, err := collection.HasChanges()
	if err != nil {
		slog.Error("diffing contact list failed", "error", err)
		os.Exit(1)
	}

	if !changed {
		return
	}

	for _, change := range collection.ElementChanges() {
		auditLog.Info("contact updated",
			"tracking_id", change.TrackingID.String(),
			"contact_id", change.Value.ID,
			"before", change.BeforeJSON,
			"after", change.AfterJSON,
		)
	}

	added, err := collection.ItemsAddedJSON()
	if err != nil {
		slog.Error("rendering added contacts failed", "error", err)
		os.Exit(1)
	}

	for _, item := range added {
		auditLog.Info("contact added", "contact", item)
	}

	for _, item := range collection.ItemsRemoved() {
		auditLog.Info("contact removed", "contact_id", item.ID)
	}
}
