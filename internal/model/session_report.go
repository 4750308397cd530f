package model

// SignalKind names one pre-classified proctoring counter. The engine only
// aggregates these counts; classification happens in the camera/audio
// detectors upstream.
type SignalKind string

const (
	SignalHeadsTurned          SignalKind = "headsTurned"
	SignalHeadTilts            SignalKind = "headTilts"
	SignalLookAways            SignalKind = "lookAways"
	SignalMultiplePeople       SignalKind = "multiplePeople"
	SignalFaceVisibilityIssues SignalKind = "faceVisibilityIssues"
	SignalMobileDetected       SignalKind = "mobileDetected"
	SignalAudioIncidents       SignalKind = "audioIncidents"
)

// SessionReport accumulates proctoring counters for exactly one attempt.
// Counters are monotonically non-decreasing until the attempt is submitted;
// IsValidTest and InvalidReason are written once at finalization and frozen.
//
// swagger:model SessionReport
type SessionReport struct {
	BaseModel

	AttemptID uint `gorm:"uniqueIndex;type:bigint unsigned" json:"attemptId"`

	HeadsTurned          int `gorm:"default:0" json:"headsTurned"`
	HeadTilts            int `gorm:"default:0" json:"headTilts"`
	LookAways            int `gorm:"default:0" json:"lookAways"`
	MultiplePeople       int `gorm:"default:0" json:"multiplePeople"`
	FaceVisibilityIssues int `gorm:"default:0" json:"faceVisibilityIssues"`
	MobileDetected       int `gorm:"default:0" json:"mobileDetected"`
	AudioIncidents       int `gorm:"default:0" json:"audioIncidents"`

	// JSON array of evidence snapshot URLs attached by the proctoring client.
	EvidenceUrls string `gorm:"type:json" json:"evidenceUrls,omitempty"`

	Finalized     bool   `gorm:"default:false" json:"finalized"`
	IsValidTest   *bool  `json:"isValidTest,omitempty"`
	InvalidReason string `gorm:"size:255" json:"invalidReason,omitempty"`
}

func (SessionReport) TableName() string {
	return "session_reports"
}

// Increment adds delta to the named counter. Delta must be non-negative;
// counters never decrease.
func (r *SessionReport) Increment(kind SignalKind, delta int) error {
	if delta < 0 {
		return Invalid("delta must be non-negative")
	}
	switch kind {
	case SignalHeadsTurned:
		r.HeadsTurned += delta
	case SignalHeadTilts:
		r.HeadTilts += delta
	case SignalLookAways:
		r.LookAways += delta
	case SignalMultiplePeople:
		r.MultiplePeople += delta
	case SignalFaceVisibilityIssues:
		r.FaceVisibilityIssues += delta
	case SignalMobileDetected:
		r.MobileDetected += delta
	case SignalAudioIncidents:
		r.AudioIncidents += delta
	default:
		return Invalid("unknown signal kind")
	}
	return nil
}
