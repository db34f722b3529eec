// Package transition detects a driver moving from one tenant to another and
// produces the notice shown when that happens.
package transition

import "fmt"

// Notice is the rendered banner content.
type Notice struct {
	PreviousClientID string `json:"previousClientId"`
	CurrentClientID  string `json:"currentClientId"`
	Message          string `json:"message"`
}

// Banner renders the notice only when visible and both ids are known and
// differ. Equal ids, including both absent, render nothing.
func Banner(previousClientID, currentClientID *string, visible bool) (Notice, bool) {
	if !visible || previousClientID == nil || currentClientID == nil {
		return Notice{}, false
	}
	if *previousClientID == *currentClientID {
		return Notice{}, false
	}
	return Notice{
		PreviousClientID: *previousClientID,
		CurrentClientID:  *currentClientID,
		Message: fmt.Sprintf("Você trocou do cliente %s para o cliente %s. Os dados locais do cliente anterior foram removidos.",
			*previousClientID, *currentClientID),
	}, true
}

// Record pairs the tenant seen on the previous request with the current one.
type Record struct {
	PreviousClientID *string
	CurrentClientID  *string
}

// Changed reports a transition between two known, different tenants.
func (r Record) Changed() bool {
	return r.PreviousClientID != nil && r.CurrentClientID != nil && *r.PreviousClientID != *r.CurrentClientID
}

// Notice renders the banner for this record.
func (r Record) Notice(visible bool) (Notice, bool) {
	return Banner(r.PreviousClientID, r.CurrentClientID, visible)
}
