package service

import (
	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func configProctoring(lookAways, faceVisibility, headTilts, headsTurned, audio int) *config.ProctoringConfig {
	return &config.ProctoringConfig{
		MaxLookAways:            lookAways,
		MaxFaceVisibilityIssues: faceVisibility,
		MaxHeadTilts:            headTilts,
		MaxHeadsTurned:          headsTurned,
		MaxAudioIncidents:       audio,
	}
}

func defaultThresholds() ProctoringThresholds {
	return ProctoringThresholds{
		MaxLookAways:            5,
		MaxFaceVisibilityIssues: 3,
		MaxHeadTilts:            8,
		MaxHeadsTurned:          8,
		MaxAudioIncidents:       3,
	}
}

func TestEvaluateValidityCleanSession(t *testing.T) {
	valid, reason := EvaluateValidity(&model.SessionReport{}, defaultThresholds())
	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestEvaluateValidityAtThresholdIsValid(t *testing.T) {
	r := &model.SessionReport{
		LookAways:            5,
		FaceVisibilityIssues: 3,
		HeadTilts:            8,
		HeadsTurned:          8,
		AudioIncidents:       3,
	}
	valid, reason := EvaluateValidity(r, defaultThresholds())
	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestEvaluateValidityZeroTolerance(t *testing.T) {
	valid, reason := EvaluateValidity(&model.SessionReport{MultiplePeople: 1}, defaultThresholds())
	assert.False(t, valid)
	assert.True(t, strings.HasPrefix(reason, string(model.SignalMultiplePeople)))

	valid, reason = EvaluateValidity(&model.SessionReport{MobileDetected: 1}, defaultThresholds())
	assert.False(t, valid)
	assert.True(t, strings.HasPrefix(reason, string(model.SignalMobileDetected)))
}

func TestEvaluateValidityThresholdExceeded(t *testing.T) {
	tests := []struct {
		name   string
		report model.SessionReport
		kind   model.SignalKind
	}{
		{"look aways", model.SessionReport{LookAways: 6}, model.SignalLookAways},
		{"face visibility", model.SessionReport{FaceVisibilityIssues: 4}, model.SignalFaceVisibilityIssues},
		{"head tilts", model.SessionReport{HeadTilts: 9}, model.SignalHeadTilts},
		{"heads turned", model.SessionReport{HeadsTurned: 9}, model.SignalHeadsTurned},
		{"audio incidents", model.SessionReport{AudioIncidents: 4}, model.SignalAudioIncidents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := EvaluateValidity(&tt.report, defaultThresholds())
			assert.False(t, valid)
			assert.True(t, strings.HasPrefix(reason, string(tt.kind)), "reason %q", reason)
		})
	}
}

func TestEvaluateValiditySingleReasonByPriority(t *testing.T) {
	// Several conditions trigger at once; only the highest-priority one is
	// reported.
	r := &model.SessionReport{
		MultiplePeople: 1,
		MobileDetected: 2,
		LookAways:      99,
		AudioIncidents: 99,
	}
	valid, reason := EvaluateValidity(r, defaultThresholds())
	assert.False(t, valid)
	assert.True(t, strings.HasPrefix(reason, string(model.SignalMultiplePeople)))
	assert.NotContains(t, reason, string(model.SignalMobileDetected))

	r.MultiplePeople = 0
	_, reason = EvaluateValidity(r, defaultThresholds())
	assert.True(t, strings.HasPrefix(reason, string(model.SignalMobileDetected)))

	r.MobileDetected = 0
	_, reason = EvaluateValidity(r, defaultThresholds())
	assert.True(t, strings.HasPrefix(reason, string(model.SignalLookAways)))
}

func TestThresholdsFromConfigCarriesEveryField(t *testing.T) {
	cfg := configProctoring(1, 2, 3, 4, 5)
	th := ThresholdsFromConfig(cfg)
	assert.Equal(t, 1, th.MaxLookAways)
	assert.Equal(t, 2, th.MaxFaceVisibilityIssues)
	assert.Equal(t, 3, th.MaxHeadTilts)
	assert.Equal(t, 4, th.MaxHeadsTurned)
	assert.Equal(t, 5, th.MaxAudioIncidents)
}
