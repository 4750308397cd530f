package service

import (
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"exam_proctor_backend/pkg/database"
)

type engineFixture struct {
	db       *gorm.DB
	attempts *AttemptService
	session  *SessionService
	locks    *AttemptLocks
	repos    struct {
		attempts  *repository.AttemptRepository
		tests     *repository.TestRepository
		questions *repository.QuestionRepository
		reports   *repository.SessionReportRepository
		users     *repository.UserRepository
	}
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()

	// A uniquely named shared-cache DB keeps every pooled connection on the
	// same in-memory store.
	dsn := "file:" + model.GenerateUUID() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	f := &engineFixture{db: db}
	f.repos.attempts = repository.NewAttemptRepository(db)
	f.repos.tests = repository.NewTestRepository(db)
	f.repos.questions = repository.NewQuestionRepository(db)
	f.repos.reports = repository.NewSessionReportRepository(db)
	f.repos.users = repository.NewUserRepository(db)

	f.locks = NewAttemptLocks()
	f.session = NewSessionService(f.repos.reports, f.repos.attempts, nil, f.locks, defaultThresholds())
	f.attempts = NewAttemptService(db, f.repos.attempts, f.repos.tests, f.repos.questions, f.repos.reports, f.repos.users, f.session, f.locks, nil)
	return f
}

func (f *engineFixture) seedUser(t *testing.T) *model.User {
	t.Helper()
	u := &model.User{Name: "Taker", Email: model.GenerateUUID() + "@example.com", Password: "x", Role: model.RoleUser}
	require.NoError(t, f.repos.users.Create(u))
	return u
}

func (f *engineFixture) seedTest(t *testing.T, published bool, maxAttempts int, now time.Time) *model.Test {
	t.Helper()
	test := &model.Test{
		Title:       "Midterm",
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		Published:   published,
		MaxAttempts: maxAttempts,
	}
	require.NoError(t, f.repos.tests.Create(test))
	return test
}

func (f *engineFixture) seedMCQ(t *testing.T, testID uint, marks, negative int, correct string) *model.Question {
	t.Helper()
	q := &model.Question{
		TestID:        testID,
		QuestionType:  model.MCQ,
		QuestionText:  "pick one",
		Marks:         marks,
		NegativeMarks: negative,
		OptionA:       "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: correct,
	}
	require.NoError(t, f.repos.questions.Create(q))
	return q
}

func (f *engineFixture) seedFill(t *testing.T, testID uint, marks, negative int, answer string) *model.Question {
	t.Helper()
	q := &model.Question{
		TestID:        testID,
		QuestionType:  model.FillBlank,
		QuestionText:  "fill in",
		Marks:         marks,
		NegativeMarks: negative,
		CorrectAnswer: answer,
	}
	require.NoError(t, f.repos.questions.Create(q))
	return q
}

func TestStartAttemptGates(t *testing.T) {
	now := time.Now()

	t.Run("unpublished test", func(t *testing.T) {
		f := newEngine(t)
		u := f.seedUser(t)
		test := f.seedTest(t, false, 3, now)

		_, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
		assert.ErrorIs(t, err, util.ErrTestNotPublished)
	})

	t.Run("window not yet open", func(t *testing.T) {
		f := newEngine(t)
		u := f.seedUser(t)
		test := f.seedTest(t, true, 3, now)

		_, _, err := f.attempts.StartAttempt(u.ID, test.ID, now.Add(-2*time.Hour))
		assert.ErrorIs(t, err, util.ErrOutsideWindow)
	})

	t.Run("window elapsed", func(t *testing.T) {
		f := newEngine(t)
		u := f.seedUser(t)
		test := f.seedTest(t, true, 3, now)

		_, _, err := f.attempts.StartAttempt(u.ID, test.ID, now.Add(2*time.Hour))
		assert.ErrorIs(t, err, util.ErrOutsideWindow)
	})

	t.Run("unknown test", func(t *testing.T) {
		f := newEngine(t)
		u := f.seedUser(t)

		_, _, err := f.attempts.StartAttempt(u.ID, 9999, now)
		assert.ErrorIs(t, err, util.ErrTestNotFound)
	})
}

func TestStartAttemptLimit(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 3, now)
	f.seedMCQ(t, test.ID, 4, 0, "A")

	for i := 0; i < 3; i++ {
		_, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
		require.NoError(t, err)
	}

	_, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	assert.ErrorIs(t, err, util.ErrAttemptLimitReached)

	// Submitted attempts still count against the budget; another user has an
	// independent budget.
	other := f.seedUser(t)
	_, _, err = f.attempts.StartAttempt(other.ID, test.ID, now)
	assert.NoError(t, err)
}

func TestStartAttemptSnapshotsMaxScore(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 5, now)
	f.seedMCQ(t, test.ID, 4, 1, "A")
	f.seedFill(t, test.ID, 2, 0, "Paris")

	attempt, report, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 6, attempt.MaxScore)
	assert.Equal(t, model.AttemptInProgress, attempt.Status)
	assert.Equal(t, attempt.ID, report.AttemptID)
	assert.False(t, report.Finalized)

	// Authoring edits after the start do not reshape the running attempt.
	f.seedMCQ(t, test.ID, 10, 0, "B")
	reloaded, err := f.repos.attempts.FindByID(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.MaxScore)
}

func TestRecordAnswerUpsertsLatest(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	q := f.seedMCQ(t, test.ID, 4, 0, "B")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	require.NoError(t, f.attempts.RecordAnswer(u.ID, attempt.ID, q.ID, "A"))
	require.NoError(t, f.attempts.RecordAnswer(u.ID, attempt.ID, q.ID, "B"))

	answers, err := f.repos.attempts.ListAnswers(attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "B", answers[0].AnswerText)
}

func TestRecordAnswerRejectsForeignQuestion(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	f.seedMCQ(t, test.ID, 4, 0, "B")
	otherTest := f.seedTest(t, true, 1, now)
	foreign := f.seedMCQ(t, otherTest.ID, 4, 0, "A")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	err = f.attempts.RecordAnswer(u.ID, attempt.ID, foreign.ID, "A")
	assert.ErrorIs(t, err, util.ErrQuestionNotInTest)

	err = f.attempts.RecordAnswer(u.ID, attempt.ID, 9999, "A")
	assert.ErrorIs(t, err, util.ErrQuestionNotInTest)
}

func TestRecordAnswerOwnershipAndState(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	stranger := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	q := f.seedMCQ(t, test.ID, 4, 0, "B")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	assert.ErrorIs(t, f.attempts.RecordAnswer(stranger.ID, attempt.ID, q.ID, "A"), util.ErrPermissionDenied)

	_, err = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)

	assert.ErrorIs(t, f.attempts.RecordAnswer(u.ID, attempt.ID, q.ID, "B"), util.ErrAttemptAlreadySubmitted)
}

func TestSubmitAttemptScoresAndClamps(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	mcq := f.seedMCQ(t, test.ID, 4, 1, "B")
	f.seedFill(t, test.ID, 2, 0, "Paris")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	// Wrong MCQ costs one mark, the FILL_BLANK is skipped: raw total -1,
	// stored total 0.
	require.NoError(t, f.attempts.RecordAnswer(u.ID, attempt.ID, mcq.ID, "A"))

	submitted, err := f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)
	require.NotNil(t, submitted.Score)
	assert.Equal(t, 0, *submitted.Score)
	assert.Equal(t, model.AttemptSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// Every question got an answer row, placeholders included.
	answers, err := f.repos.attempts.ListAnswers(attempt.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
	for _, a := range answers {
		if a.QuestionID == mcq.ID {
			assert.False(t, a.IsCorrect)
			assert.Equal(t, -1, a.MarksObtained)
		} else {
			assert.False(t, a.IsCorrect)
			assert.Equal(t, 0, a.MarksObtained)
		}
	}
}

func TestSubmitAttemptCorrectTotal(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	mcq := f.seedMCQ(t, test.ID, 4, 1, "B")
	fill := f.seedFill(t, test.ID, 2, 0, "Paris")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)
	require.NoError(t, f.attempts.RecordAnswer(u.ID, attempt.ID, mcq.ID, "b"))
	require.NoError(t, f.attempts.RecordAnswer(u.ID, attempt.ID, fill.ID, " Paris "))

	submitted, err := f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)
	require.NotNil(t, submitted.Score)
	assert.Equal(t, 6, *submitted.Score)
}

func TestSubmitAttemptRejectsSecondSubmit(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	f.seedMCQ(t, test.ID, 4, 0, "B")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	_, err = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)

	_, err = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	assert.ErrorIs(t, err, util.ErrAttemptAlreadySubmitted)
}

func TestSubmitFinalizesValidityVerdict(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	f.seedMCQ(t, test.ID, 4, 0, "B")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	_, err = f.session.IncrementSignal(u.ID, attempt.ID, model.SignalMultiplePeople, 1)
	require.NoError(t, err)
	_, err = f.session.IncrementSignal(u.ID, attempt.ID, model.SignalLookAways, 99)
	require.NoError(t, err)

	_, err = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)

	report, err := f.repos.reports.FindByAttempt(attempt.ID)
	require.NoError(t, err)
	assert.True(t, report.Finalized)
	require.NotNil(t, report.IsValidTest)
	assert.False(t, *report.IsValidTest)
	assert.True(t, strings.HasPrefix(report.InvalidReason, string(model.SignalMultiplePeople)))
}

func TestSignalsFreezeAfterSubmit(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	f.seedMCQ(t, test.ID, 4, 0, "B")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	report, err := f.session.IncrementSignal(u.ID, attempt.ID, model.SignalHeadTilts, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.HeadTilts)

	report, err = f.session.IncrementSignal(u.ID, attempt.ID, model.SignalHeadTilts, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, report.HeadTilts)

	_, err = f.session.IncrementSignal(u.ID, attempt.ID, model.SignalHeadTilts, -1)
	assert.Error(t, err)

	_, err = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)

	_, err = f.session.IncrementSignal(u.ID, attempt.ID, model.SignalHeadTilts, 1)
	assert.ErrorIs(t, err, util.ErrAttemptAlreadySubmitted)

	reloaded, err := f.repos.reports.FindByAttempt(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.HeadTilts)
}

func TestGetResult(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	mcq := f.seedMCQ(t, test.ID, 4, 0, "B")
	f.seedFill(t, test.ID, 2, 0, "Paris")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	owner := &util.Claims{UserID: u.ID, Role: model.RoleUser}

	_, err = f.attempts.GetResult(owner, attempt.ID)
	assert.ErrorIs(t, err, util.ErrAttemptNotSubmitted)

	require.NoError(t, f.attempts.RecordAnswer(u.ID, attempt.ID, mcq.ID, "B"))
	_, err = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	require.NoError(t, err)

	result, err := f.attempts.GetResult(owner, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, result.AttemptID)
	assert.Equal(t, 4, result.Score)
	assert.Equal(t, 6, result.MaxScore)
	assert.InDelta(t, 66.6, result.Percentage, 0.1)
	require.NotNil(t, result.IsValidTest)
	assert.True(t, *result.IsValidTest)

	// Another plain user cannot read it; staff can.
	stranger := f.seedUser(t)
	_, err = f.attempts.GetResult(&util.Claims{UserID: stranger.ID, Role: model.RoleUser}, attempt.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.attempts.GetResult(&util.Claims{UserID: stranger.ID, Role: model.RoleAdmin}, attempt.ID)
	assert.NoError(t, err)
}

func TestConcurrentRecordAndSubmit(t *testing.T) {
	now := time.Now()
	f := newEngine(t)
	u := f.seedUser(t)
	test := f.seedTest(t, true, 1, now)
	q := f.seedMCQ(t, test.ID, 4, 0, "B")

	attempt, _, err := f.attempts.StartAttempt(u.ID, test.ID, now)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var recordErr, submitErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		recordErr = f.attempts.RecordAnswer(u.ID, attempt.ID, q.ID, "B")
	}()
	go func() {
		defer wg.Done()
		_, submitErr = f.attempts.SubmitAttempt(u.ID, attempt.ID, now)
	}()
	wg.Wait()

	require.NoError(t, submitErr)

	// The write either landed before scoring or was rejected; the stored score
	// must agree with whichever happened.
	final, err := f.repos.attempts.FindByID(attempt.ID)
	require.NoError(t, err)
	require.NotNil(t, final.Score)
	if recordErr == nil {
		answers, err := f.repos.attempts.ListAnswers(attempt.ID)
		require.NoError(t, err)
		require.Len(t, answers, 1)
		if answers[0].IsCorrect {
			assert.Equal(t, 4, *final.Score)
		} else {
			assert.Equal(t, 0, *final.Score)
		}
	} else {
		assert.ErrorIs(t, recordErr, util.ErrAttemptAlreadySubmitted)
		assert.Equal(t, 0, *final.Score)
	}
}
