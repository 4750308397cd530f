package service

import (
	"context"
	"encoding/json"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/monitoring"
	"exam_proctor_backend/pkg/tracing"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const resultCacheTTL = 30 * time.Minute

// AttemptService owns the attempt lifecycle: it gates creation against the
// test's window, publish flag and attempt budget, mediates answer capture,
// and drives scoring plus verdict finalization at submission. It is the only
// component that sees multiple attempts and tests at once.
type AttemptService struct {
	DB        *gorm.DB
	Attempts  *repository.AttemptRepository
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	Reports   *repository.SessionReportRepository
	Users     *repository.UserRepository
	Session   *SessionService
	Locks     *AttemptLocks
	Redis     *redis.Client

	// Serializes the count-then-create step of StartAttempt so two
	// simultaneous starts cannot both slip under maxAttempts.
	startMu sync.Mutex
}

func NewAttemptService(
	db *gorm.DB,
	attempts *repository.AttemptRepository,
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	reports *repository.SessionReportRepository,
	users *repository.UserRepository,
	session *SessionService,
	locks *AttemptLocks,
	rdb *redis.Client,
) *AttemptService {
	return &AttemptService{
		DB:        db,
		Attempts:  attempts,
		Tests:     tests,
		Questions: questions,
		Reports:   reports,
		Users:     users,
		Session:   session,
		Locks:     locks,
		Redis:     rdb,
	}
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	AnswerText string `json:"answerText"`
}

// StartAttempt creates a new IN_PROGRESS attempt with its empty session
// report. MaxScore is snapshotted from the live question marks here and
// never changes afterwards, so authoring edits cannot reshape an attempt
// already under way.
func (s *AttemptService) StartAttempt(userID, testID uint, now time.Time) (*model.Attempt, *model.SessionReport, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrTestNotFound
		}
		return nil, nil, err
	}

	if !test.Published {
		return nil, nil, util.ErrTestNotPublished
	}
	if !test.WindowOpen(now) {
		return nil, nil, util.ErrOutsideWindow
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	count, err := s.Attempts.CountByUserAndTest(userID, testID)
	if err != nil {
		return nil, nil, err
	}
	if test.MaxAttempts > 0 && int(count) >= test.MaxAttempts {
		return nil, nil, util.ErrAttemptLimitReached
	}

	maxScore, err := s.Questions.SumMarksByTest(testID)
	if err != nil {
		return nil, nil, err
	}

	attempt := &model.Attempt{
		TestID:    testID,
		UserID:    userID,
		StartedAt: now,
		Status:    model.AttemptInProgress,
		MaxScore:  maxScore,
	}
	report, err := s.Attempts.CreateWithReport(attempt)
	if err != nil {
		return nil, nil, err
	}

	monitoring.AttemptsStarted.Inc()
	return attempt, report, nil
}

// RecordAnswer upserts the latest answer text for one question of an
// in-progress attempt. Correctness is never computed here; scoring runs once
// over the final answer set at submission, so pre-submission edits are free
// and no partial feedback can leak the key.
func (s *AttemptService) RecordAnswer(userID, attemptID, questionID uint, answerText string) error {
	mu := s.Locks.Get(attemptID)
	mu.Lock()
	defer mu.Unlock()

	attempt, err := s.loadOwnAttempt(userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Terminal() {
		return util.ErrAttemptAlreadySubmitted
	}

	question, err := s.Questions.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotInTest
		}
		return err
	}
	if question.TestID != attempt.TestID {
		return util.ErrQuestionNotInTest
	}

	return s.Attempts.UpsertAnswer(attemptID, questionID, answerText)
}

// SubmitAttempt transitions the attempt to SUBMITTED, scores every question
// of the test (unanswered ones get zero-mark placeholder answers), clamps
// the total at zero and finalizes the session verdict — all inside the
// attempt lock and a single transaction, so a racing RecordAnswer or
// IncrementSignal either lands before scoring or is rejected afterwards,
// and score and verdict are persisted together or not at all.
func (s *AttemptService) SubmitAttempt(userID, attemptID uint, now time.Time) (*model.Attempt, error) {
	mu := s.Locks.Get(attemptID)
	mu.Lock()
	defer mu.Unlock()

	_, span := tracing.Tracer.Start(context.Background(), "attempt.submit")
	defer span.End()

	attempt, err := s.loadOwnAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Terminal() {
		return nil, util.ErrAttemptAlreadySubmitted
	}

	questions, err := s.Questions.ListByTest(attempt.TestID)
	if err != nil {
		return nil, err
	}
	recorded, err := s.Attempts.ListAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uint]*model.Answer, len(recorded))
	for i := range recorded {
		byQuestion[recorded[i].QuestionID] = &recorded[i]
	}

	total := 0
	finalAnswers := make([]*model.Answer, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		answer := byQuestion[q.ID]
		if answer == nil {
			// Placeholder row so the result projection covers every question.
			answer = &model.Answer{AttemptID: attemptID, QuestionID: q.ID}
		}
		outcome := ScoreAnswer(q, answer.AnswerText)
		answer.IsCorrect = outcome.Correct
		answer.MarksObtained = outcome.Marks
		total += outcome.Marks
		finalAnswers = append(finalAnswers, answer)
	}
	// Negative marking can drive individual questions below zero, never the
	// attempt total.
	if total < 0 {
		total = 0
	}

	report, err := s.Reports.FindByAttempt(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrReportNotFound
		}
		return nil, err
	}

	attempt.Status = model.AttemptSubmitted
	attempt.SubmittedAt = &now
	attempt.Score = &total

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		for _, a := range finalAnswers {
			if err := tx.Save(a).Error; err != nil {
				return err
			}
		}
		return s.Session.FinalizeWithin(tx, report)
	})
	if err != nil {
		return nil, err
	}

	s.Locks.Forget(attemptID)
	monitoring.AttemptsSubmitted.Inc()
	s.cacheResult(attempt, report)

	return attempt, nil
}

// GetResult assembles the read-only reporting projection for a submitted
// attempt. Results are immutable once written, so they cache well.
func (s *AttemptService) GetResult(caller *util.Claims, attemptID uint) (*model.Result, error) {
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
	if !attempt.Terminal() {
		return nil, util.ErrAttemptNotSubmitted
	}

	if s.Redis != nil {
		cached, err := s.Redis.Get(context.Background(), resultCacheKey(attemptID)).Result()
		if err == nil {
			var result model.Result
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	report, err := s.Reports.FindByAttempt(attemptID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	result, err := s.buildResult(attempt, report)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if encoded, err := json.Marshal(result); err == nil {
			s.Redis.Set(context.Background(), resultCacheKey(attemptID), encoded, resultCacheTTL)
		}
	}
	return result, nil
}

func (s *AttemptService) GetAttemptsForUser(userID uint) ([]model.Attempt, error) {
	return s.Attempts.ListByUser(userID)
}

func (s *AttemptService) GetAttemptsForTest(testID uint) ([]model.Attempt, error) {
	return s.Attempts.ListByTest(testID)
}

func (s *AttemptService) GetAnswers(caller *util.Claims, attemptID uint) ([]model.Answer, error) {
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
	if !attempt.Terminal() {
		return nil, util.ErrAttemptNotSubmitted
	}
	return s.Attempts.ListAnswers(attemptID)
}

// ListResultsForTest returns the projection for every submitted attempt of a
// test, for the admin results page.
func (s *AttemptService) ListResultsForTest(testID uint) ([]model.Result, error) {
	if _, err := s.Tests.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	attempts, err := s.Attempts.ListSubmittedByTest(testID)
	if err != nil {
		return nil, err
	}

	results := make([]model.Result, 0, len(attempts))
	for i := range attempts {
		report, err := s.Reports.FindByAttempt(attempts[i].ID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		result, err := s.buildResult(&attempts[i], report)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *AttemptService) loadOwnAttempt(userID, attemptID uint) (*model.Attempt, error) {
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
	return attempt, nil
}

func (s *AttemptService) buildResult(attempt *model.Attempt, report *model.SessionReport) (*model.Result, error) {
	test, err := s.Tests.FindByID(attempt.TestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	user, err := s.Users.FindByID(attempt.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	score := 0
	if attempt.Score != nil {
		score = *attempt.Score
	}
	percentage := 0.0
	if attempt.MaxScore > 0 {
		percentage = float64(score) / float64(attempt.MaxScore) * 100
	}

	result := &model.Result{
		AttemptID:  attempt.ID,
		TestID:     test.ID,
		TestTitle:  test.Title,
		UserID:     user.ID,
		UserName:   user.Name,
		UserEmail:  user.Email,
		Score:      score,
		MaxScore:   attempt.MaxScore,
		Percentage: percentage,
	}
	if attempt.SubmittedAt != nil {
		result.SubmittedAt = *attempt.SubmittedAt
	}
	if report != nil {
		result.IsValidTest = report.IsValidTest
	}
	return result, nil
}

func (s *AttemptService) cacheResult(attempt *model.Attempt, report *model.SessionReport) {
	if s.Redis == nil {
		return
	}
	result, err := s.buildResult(attempt, report)
	if err != nil {
		return
	}
	if encoded, err := json.Marshal(result); err == nil {
		s.Redis.Set(context.Background(), resultCacheKey(attempt.ID), encoded, resultCacheTTL)
	}
}

func resultCacheKey(attemptID uint) string {
	return fmt.Sprintf("result:%d", attemptID)
}
