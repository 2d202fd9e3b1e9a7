package store

import "github.com/lomedigitalschool/kotiz-web/internal/models"

// Event is a domain event emitted after a state transition has committed.
// Handlers run outside the store lock and must not assume delivery: they are
// advisory, never part of the mutation.
type Event interface {
	event()
}

// ContributionAdded fires once per successful AddContribution. Cagnotte is
// the updated parent, or nil when the contribution referenced an unknown
// cagnotte.
type ContributionAdded struct {
	Contribution models.Contribution
	Cagnotte     *models.Cagnotte
}

func (ContributionAdded) event() {}

// CagnotteClosed fires when an update transitions a cagnotte to the closed
// status.
type CagnotteClosed struct {
	Cagnotte models.Cagnotte
}

func (CagnotteClosed) event() {}
