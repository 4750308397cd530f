package service

import (
	"context"
	"encoding/json"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const questionCacheTTL = 5 * time.Minute

// TestService is the authoring collaborator: plain CRUD over Test and
// Question records with variant validation on write. It carries no attempt
// state; the engine only reads what it persists.
type TestService struct {
	Tests     *repository.TestRepository
	Questions *repository.QuestionRepository
	Redis     *redis.Client
}

func NewTestService(tests *repository.TestRepository, questions *repository.QuestionRepository, rdb *redis.Client) *TestService {
	return &TestService{Tests: tests, Questions: questions, Redis: rdb}
}

type TestRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	MaxAttempts int       `json:"maxAttempts"`
}

type QuestionRequest struct {
	QuestionType      model.QuestionType `json:"questionType" binding:"required"`
	QuestionText      string             `json:"questionText" binding:"required"`
	Marks             int                `json:"marks"`
	NegativeMarks     int                `json:"negativeMarks"`
	OptionA           string             `json:"optionA"`
	OptionB           string             `json:"optionB"`
	OptionC           string             `json:"optionC"`
	OptionD           string             `json:"optionD"`
	CorrectOption     string             `json:"correctOption"`
	CorrectOptionsCsv string             `json:"correctOptionsCsv"`
	CorrectAnswer     string             `json:"correctAnswer"`
}

func (s *TestService) CreateTest(creatorID uint, req TestRequest) (*model.Test, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, model.Invalid("startTime must be before endTime")
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	test := &model.Test{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxAttempts: maxAttempts,
		CreatedBy:   creatorID,
	}
	if err := s.Tests.Create(test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) UpdateTest(testID uint, req TestRequest) (*model.Test, error) {
	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, model.Invalid("startTime must be before endTime")
	}

	test.Title = req.Title
	test.Description = req.Description
	test.StartTime = req.StartTime
	test.EndTime = req.EndTime
	if req.MaxAttempts > 0 {
		test.MaxAttempts = req.MaxAttempts
	}
	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}
	s.invalidateQuestionCache(testID)
	return test, nil
}

func (s *TestService) DeleteTest(testID uint) error {
	if _, err := s.findTest(testID); err != nil {
		return err
	}
	if err := s.Tests.Delete(testID); err != nil {
		return err
	}
	s.invalidateQuestionCache(testID)
	return nil
}

func (s *TestService) GetTest(testID uint) (*model.Test, error) {
	return s.findTest(testID)
}

func (s *TestService) ListTests(page, limit int) ([]model.Test, int64, error) {
	return s.Tests.List(page, limit)
}

// PublishTest flips the publish flag. Publishing requires a sane window and
// at least one question, and syncs totalMarks to the live question sum so
// the stored figure cannot drift from the bank.
func (s *TestService) PublishTest(testID uint, publish bool) (*model.Test, error) {
	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}

	if publish {
		if !test.StartTime.Before(test.EndTime) {
			return nil, model.Invalid("cannot publish: startTime must be before endTime")
		}
		count, err := s.Questions.CountByTest(testID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, model.Invalid("cannot publish a test with no questions")
		}
		sum, err := s.Questions.SumMarksByTest(testID)
		if err != nil {
			return nil, err
		}
		test.TotalMarks = sum
	}

	test.Published = publish
	if err := s.Tests.Update(test); err != nil {
		return nil, err
	}
	s.invalidateQuestionCache(testID)
	return test, nil
}

func (s *TestService) AddQuestion(testID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.findTest(testID); err != nil {
		return nil, err
	}

	question := questionFromRequest(testID, req)
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.Questions.Create(question); err != nil {
		return nil, err
	}
	s.invalidateQuestionCache(testID)
	return question, nil
}

func (s *TestService) UpdateQuestion(questionID uint, req QuestionRequest) (*model.Question, error) {
	existing, err := s.Questions.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotInTest
		}
		return nil, err
	}

	question := questionFromRequest(existing.TestID, req)
	question.ID = existing.ID
	question.CreatedAt = existing.CreatedAt
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.Questions.Update(question); err != nil {
		return nil, err
	}
	s.invalidateQuestionCache(existing.TestID)
	return question, nil
}

func (s *TestService) DeleteQuestion(questionID uint) error {
	existing, err := s.Questions.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotInTest
		}
		return err
	}
	if err := s.Questions.Delete(questionID); err != nil {
		return err
	}
	s.invalidateQuestionCache(existing.TestID)
	return nil
}

// ListQuestions returns the full question records, answer keys included.
// Admin surface only.
func (s *TestService) ListQuestions(testID uint) ([]model.Question, error) {
	if _, err := s.findTest(testID); err != nil {
		return nil, err
	}
	return s.Questions.ListByTest(testID)
}

// AvailableTests lists published tests whose window is open right now.
func (s *TestService) AvailableTests(now time.Time) ([]model.Test, error) {
	return s.Tests.ListAvailable(now)
}

// StudentQuestions returns the sanitized question set of a published,
// in-window test. The projection never contains answer keys, and it is what
// gets cached, so a cache hit cannot leak more than the handler would.
func (s *TestService) StudentQuestions(testID uint, now time.Time) ([]model.StudentQuestion, error) {
	test, err := s.findTest(testID)
	if err != nil {
		return nil, err
	}
	if !test.Published {
		return nil, util.ErrTestNotPublished
	}
	if !test.WindowOpen(now) {
		return nil, util.ErrOutsideWindow
	}

	if s.Redis != nil {
		cached, err := s.Redis.Get(context.Background(), questionCacheKey(testID)).Result()
		if err == nil {
			var views []model.StudentQuestion
			if json.Unmarshal([]byte(cached), &views) == nil {
				return views, nil
			}
		}
	}

	questions, err := s.Questions.ListByTest(testID)
	if err != nil {
		return nil, err
	}
	views := make([]model.StudentQuestion, 0, len(questions))
	for i := range questions {
		views = append(views, questions[i].StudentView())
	}

	if s.Redis != nil {
		if encoded, err := json.Marshal(views); err == nil {
			s.Redis.Set(context.Background(), questionCacheKey(testID), encoded, questionCacheTTL)
		}
	}
	return views, nil
}

func (s *TestService) findTest(testID uint) (*model.Test, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

func (s *TestService) invalidateQuestionCache(testID uint) {
	if s.Redis != nil {
		s.Redis.Del(context.Background(), questionCacheKey(testID))
	}
}

func questionFromRequest(testID uint, req QuestionRequest) *model.Question {
	return &model.Question{
		TestID:            testID,
		QuestionType:      req.QuestionType,
		QuestionText:      req.QuestionText,
		Marks:             req.Marks,
		NegativeMarks:     req.NegativeMarks,
		OptionA:           req.OptionA,
		OptionB:           req.OptionB,
		OptionC:           req.OptionC,
		OptionD:           req.OptionD,
		CorrectOption:     req.CorrectOption,
		CorrectOptionsCsv: req.CorrectOptionsCsv,
		CorrectAnswer:     req.CorrectAnswer,
	}
}

func questionCacheKey(testID uint) string {
	return fmt.Sprintf("test:questions:%d", testID)
}
