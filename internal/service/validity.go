package service

import (
	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"fmt"
)

// ProctoringThresholds are the per-counter tolerances applied at
// finalization. A second person or a phone is never tolerated.
type ProctoringThresholds struct {
	MaxLookAways            int
	MaxFaceVisibilityIssues int
	MaxHeadTilts            int
	MaxHeadsTurned          int
	MaxAudioIncidents       int
}

func ThresholdsFromConfig(cfg *config.ProctoringConfig) ProctoringThresholds {
	return ProctoringThresholds{
		MaxLookAways:            cfg.MaxLookAways,
		MaxFaceVisibilityIssues: cfg.MaxFaceVisibilityIssues,
		MaxHeadTilts:            cfg.MaxHeadTilts,
		MaxHeadsTurned:          cfg.MaxHeadsTurned,
		MaxAudioIncidents:       cfg.MaxAudioIncidents,
	}
}

// EvaluateValidity applies the threshold policy over final counters. Checks
// run in fixed priority order and exactly one reason is reported even when
// several thresholds are exceeded.
func EvaluateValidity(r *model.SessionReport, th ProctoringThresholds) (bool, string) {
	checks := []struct {
		kind      model.SignalKind
		count     int
		threshold int
	}{
		{model.SignalMultiplePeople, r.MultiplePeople, 0},
		{model.SignalMobileDetected, r.MobileDetected, 0},
		{model.SignalFaceVisibilityIssues, r.FaceVisibilityIssues, th.MaxFaceVisibilityIssues},
		{model.SignalLookAways, r.LookAways, th.MaxLookAways},
		{model.SignalHeadTilts, r.HeadTilts, th.MaxHeadTilts},
		{model.SignalHeadsTurned, r.HeadsTurned, th.MaxHeadsTurned},
		{model.SignalAudioIncidents, r.AudioIncidents, th.MaxAudioIncidents},
	}

	for _, c := range checks {
		if c.count > c.threshold {
			return false, fmt.Sprintf("%s: %d recorded, %d allowed", c.kind, c.count, c.threshold)
		}
	}
	return true, ""
}
