package service

import (
	"context"
	"encoding/json"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/monitoring"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// SessionService is the integrity monitor: it accumulates pre-classified
// proctoring counters per attempt and renders the validity verdict when the
// attempt is submitted. It never classifies behavior itself.
type SessionService struct {
	Reports  *repository.SessionReportRepository
	Attempts *repository.AttemptRepository
	Storage  *StorageService
	Locks    *AttemptLocks

	mu         sync.RWMutex
	thresholds ProctoringThresholds
}

func NewSessionService(reports *repository.SessionReportRepository, attempts *repository.AttemptRepository, storage *StorageService, locks *AttemptLocks, thresholds ProctoringThresholds) *SessionService {
	return &SessionService{
		Reports:    reports,
		Attempts:   attempts,
		Storage:    storage,
		Locks:      locks,
		thresholds: thresholds,
	}
}

// UpdateThresholds swaps the verdict thresholds, used by config hot reload.
// Attempts finalized before the swap keep their verdicts.
func (s *SessionService) UpdateThresholds(th ProctoringThresholds) {
	s.mu.Lock()
	s.thresholds = th
	s.mu.Unlock()
}

func (s *SessionService) currentThresholds() ProctoringThresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

type SignalRequest struct {
	Kind  model.SignalKind `json:"kind" binding:"required"`
	Delta int              `json:"delta"`
}

// IncrementSignal adds delta to one counter of the attempt's report.
// Counters only move up and freeze once the attempt is terminal; vision and
// audio detectors may report concurrently and out of order.
func (s *SessionService) IncrementSignal(userID, attemptID uint, kind model.SignalKind, delta int) (*model.SessionReport, error) {
	mu := s.Locks.Get(attemptID)
	mu.Lock()
	defer mu.Unlock()

	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Terminal() {
		return nil, util.ErrAttemptAlreadySubmitted
	}

	report, err := s.Reports.FindByAttempt(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrReportNotFound
		}
		return nil, err
	}

	if err := report.Increment(kind, delta); err != nil {
		return nil, err
	}
	if err := s.Reports.Save(report); err != nil {
		return nil, err
	}

	monitoring.ProctoringSignals.WithLabelValues(string(kind)).Add(float64(delta))
	return report, nil
}

// GetReport returns the attempt's session report to its owner or to staff.
func (s *SessionService) GetReport(caller *util.Claims, attemptID uint) (*model.SessionReport, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != caller.UserID && !caller.Role.IsStaff() {
		return nil, util.ErrPermissionDenied
	}

	report, err := s.Reports.FindByAttempt(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// AttachEvidence stores one camera frame for an in-progress attempt and
// records its URL on the report.
func (s *SessionService) AttachEvidence(ctx context.Context, userID, attemptID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range util.AllowedEvidenceExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed || !strings.HasPrefix(contentType, util.MimeImage) {
		return "", model.Invalid(fmt.Sprintf("unsupported evidence type %q", contentType))
	}

	mu := s.Locks.Get(attemptID)
	mu.Lock()
	defer mu.Unlock()

	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrAttemptNotFound
		}
		return "", err
	}
	if attempt.UserID != userID {
		return "", util.ErrPermissionDenied
	}
	if attempt.Terminal() {
		return "", util.ErrAttemptAlreadySubmitted
	}

	report, err := s.Reports.FindByAttempt(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrReportNotFound
		}
		return "", err
	}

	object := fmt.Sprintf("evidence/%d/%s%s", attemptID, model.GenerateUUID(), ext)
	url, err := s.Storage.Upload(ctx, object, reader, size, contentType)
	if err != nil {
		return "", err
	}

	var urls []string
	if report.EvidenceUrls != "" {
		json.Unmarshal([]byte(report.EvidenceUrls), &urls)
	}
	urls = append(urls, url)
	encoded, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	report.EvidenceUrls = string(encoded)

	if err := s.Reports.Save(report); err != nil {
		return "", err
	}
	return url, nil
}

// FinalizeWithin renders the validity verdict and freezes the report, inside
// the submitter's transaction so score and verdict persist together or not
// at all. Only SubmitAttempt calls this, while holding the attempt lock.
func (s *SessionService) FinalizeWithin(tx *gorm.DB, report *model.SessionReport) error {
	if report.Finalized {
		return util.ErrAttemptAlreadySubmitted
	}

	valid, reason := EvaluateValidity(report, s.currentThresholds())
	report.Finalized = true
	report.IsValidTest = &valid
	report.InvalidReason = reason

	if !valid {
		kind := reason
		if i := strings.Index(reason, ":"); i > 0 {
			kind = reason[:i]
		}
		monitoring.InvalidSessions.WithLabelValues(kind).Inc()
	}

	return tx.Save(report).Error
}
