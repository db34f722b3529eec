package models

// Vehicle is one entry of the driver's fleet list. Plate and LicensePlate
// carry the same value; the backend has not settled on one of the two names,
// so both are served unchanged.
type Vehicle struct {
	ID           string `json:"id"`
	LicensePlate string `json:"licensePlate"`
	Plate        string `json:"plate"`
	Model        string `json:"model"`
	Brand        string `json:"brand"`
	Year         int    `json:"year"`
	Type         string `json:"type"`
}

// Scope identifies whose vehicle list is requested.
type Scope struct {
	ClientID string
	UserID   string
	Token    string
}

// Source tells where a list came from.
type Source string

const (
	SourceUpstream Source = "upstream"
	SourceCache    Source = "cache"
	SourceStatic   Source = "static"
)

// Listing is a vehicle list with its provenance. Fallback is set whenever the
// primary provider was skipped or failed.
type Listing struct {
	Vehicles []Vehicle `json:"vehicles"`
	Source   Source    `json:"source"`
	Fallback bool      `json:"fallback"`
}
