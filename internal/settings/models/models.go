package models

// StorageKey is the single key the settings live under in the key-value store.
const StorageKey = "checklist_settings"

// ChecklistSettings decides which checklist fields a driver must fill.
type ChecklistSettings struct {
	RequiredLocations    bool `json:"requiredLocations"`
	RequiredKilometer    bool `json:"requiredKilometer"`
	RequiredPhotos       bool `json:"requiredPhotos"`
	RequiredAudio        bool `json:"requiredAudio"`
	RequiredObservations bool `json:"requiredObservations"`
}

// Defaults applies whenever nothing (or nothing readable) is persisted.
func Defaults() ChecklistSettings {
	return ChecklistSettings{
		RequiredLocations: true,
		RequiredKilometer: true,
	}
}

// Partial is a shallow update; nil fields are left unchanged.
type Partial struct {
	RequiredLocations    *bool `json:"requiredLocations,omitempty"`
	RequiredKilometer    *bool `json:"requiredKilometer,omitempty"`
	RequiredPhotos       *bool `json:"requiredPhotos,omitempty"`
	RequiredAudio        *bool `json:"requiredAudio,omitempty"`
	RequiredObservations *bool `json:"requiredObservations,omitempty"`
}

// IsEmpty reports whether p changes nothing.
func (p Partial) IsEmpty() bool {
	return p.RequiredLocations == nil && p.RequiredKilometer == nil &&
		p.RequiredPhotos == nil && p.RequiredAudio == nil && p.RequiredObservations == nil
}

// Merge returns s with every non-nil field of p applied.
func (s ChecklistSettings) Merge(p Partial) ChecklistSettings {
	if p.RequiredLocations != nil {
		s.RequiredLocations = *p.RequiredLocations
	}
	if p.RequiredKilometer != nil {
		s.RequiredKilometer = *p.RequiredKilometer
	}
	if p.RequiredPhotos != nil {
		s.RequiredPhotos = *p.RequiredPhotos
	}
	if p.RequiredAudio != nil {
		s.RequiredAudio = *p.RequiredAudio
	}
	if p.RequiredObservations != nil {
		s.RequiredObservations = *p.RequiredObservations
	}
	return s
}
