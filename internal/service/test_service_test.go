package service

import (
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*TestService, *engineFixture) {
	t.Helper()
	f := newEngine(t)
	return NewTestService(f.repos.tests, f.repos.questions, nil), f
}

func validTestRequest(now time.Time) TestRequest {
	return TestRequest{
		Title:       "Midterm",
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		MaxAttempts: 2,
	}
}

func TestCreateTestValidatesWindow(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now()

	req := validTestRequest(now)
	req.StartTime, req.EndTime = req.EndTime, req.StartTime
	_, err := svc.CreateTest(1, req)
	assert.Error(t, err)

	req = validTestRequest(now)
	req.EndTime = req.StartTime
	_, err = svc.CreateTest(1, req)
	assert.Error(t, err)

	test, err := svc.CreateTest(1, validTestRequest(now))
	require.NoError(t, err)
	assert.False(t, test.Published)
	assert.Equal(t, 2, test.MaxAttempts)
}

func TestCreateTestDefaultsMaxAttempts(t *testing.T) {
	svc, _ := newTestService(t)
	req := validTestRequest(time.Now())
	req.MaxAttempts = 0

	test, err := svc.CreateTest(1, req)
	require.NoError(t, err)
	assert.Equal(t, 1, test.MaxAttempts)
}

func TestAddQuestionValidatesVariant(t *testing.T) {
	svc, _ := newTestService(t)
	test, err := svc.CreateTest(1, validTestRequest(time.Now()))
	require.NoError(t, err)

	// An MCQ carrying a FILL_BLANK field is rejected.
	bad := QuestionRequest{
		QuestionType: model.MCQ,
		QuestionText: "pick one",
		Marks:        4,
		OptionA:      "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: "A",
		CorrectAnswer: "stale",
	}
	_, err = svc.AddQuestion(test.ID, bad)
	assert.Error(t, err)

	good := bad
	good.CorrectAnswer = ""
	q, err := svc.AddQuestion(test.ID, good)
	require.NoError(t, err)
	assert.Equal(t, test.ID, q.TestID)

	_, err = svc.AddQuestion(9999, good)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}

func TestPublishRules(t *testing.T) {
	svc, _ := newTestService(t)
	now := time.Now()
	test, err := svc.CreateTest(1, validTestRequest(now))
	require.NoError(t, err)

	// No questions yet.
	_, err = svc.PublishTest(test.ID, true)
	assert.Error(t, err)

	_, err = svc.AddQuestion(test.ID, QuestionRequest{
		QuestionType: model.MCQ,
		QuestionText: "pick one",
		Marks:        4,
		OptionA:      "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: "A",
	})
	require.NoError(t, err)
	_, err = svc.AddQuestion(test.ID, QuestionRequest{
		QuestionType:  model.FillBlank,
		QuestionText:  "fill in",
		Marks:         2,
		CorrectAnswer: "Paris",
	})
	require.NoError(t, err)

	published, err := svc.PublishTest(test.ID, true)
	require.NoError(t, err)
	assert.True(t, published.Published)
	// totalMarks is synced to the live question sum at publish.
	assert.Equal(t, 6, published.TotalMarks)

	unpublished, err := svc.PublishTest(test.ID, false)
	require.NoError(t, err)
	assert.False(t, unpublished.Published)
}

func TestAvailableTests(t *testing.T) {
	svc, f := newTestService(t)
	now := time.Now()

	open := f.seedTest(t, true, 1, now)
	f.seedTest(t, false, 1, now)
	closed := &model.Test{
		Title:     "Past",
		StartTime: now.Add(-3 * time.Hour),
		EndTime:   now.Add(-2 * time.Hour),
		Published: true,
	}
	require.NoError(t, f.repos.tests.Create(closed))

	available, err := svc.AvailableTests(now)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)
}

func TestStudentQuestionsSanitized(t *testing.T) {
	svc, f := newTestService(t)
	now := time.Now()
	test := f.seedTest(t, true, 1, now)
	f.seedMCQ(t, test.ID, 4, 1, "B")
	f.seedFill(t, test.ID, 2, 0, "Paris")

	views, err := svc.StudentQuestions(test.ID, now)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.NotEmpty(t, v.QuestionText)
		assert.NotZero(t, v.Marks)
	}

	// Out-of-window and unpublished tests refuse the student view.
	_, err = svc.StudentQuestions(test.ID, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, util.ErrOutsideWindow)

	hidden := f.seedTest(t, false, 1, now)
	_, err = svc.StudentQuestions(hidden.ID, now)
	assert.ErrorIs(t, err, util.ErrTestNotPublished)
}
