package service

import (
	"context"
	"io"
	"sync"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
	"github.com/praxislab/praxis-api/pkg/cloudinary"
	dockerexec "github.com/praxislab/praxis-api/pkg/docker"
)

// In-memory fakes shared by the service tests.

type stubChallengeRepo struct {
	challenges []models.Challenge
	err        error
}

func (r *stubChallengeRepo) List(_ context.Context, filter repository.ChallengeFilter) ([]models.Challenge, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.Challenge
	for _, c := range r.challenges {
		if filter.AssignmentNumber != nil && c.AssignmentNumber != *filter.AssignmentNumber {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.ActiveOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *stubChallengeRepo) GetByChallengeID(_ context.Context, challengeID string) (models.Challenge, error) {
	if r.err != nil {
		return models.Challenge{}, r.err
	}
	for _, c := range r.challenges {
		if c.ChallengeID == challengeID {
			return c, nil
		}
	}
	return models.Challenge{}, gorm.ErrRecordNotFound
}

func (r *stubChallengeRepo) GetByChallengeIDAndType(ctx context.Context, challengeID string, t models.ChallengeType) (models.Challenge, error) {
	challenge, err := r.GetByChallengeID(ctx, challengeID)
	if err != nil {
		return models.Challenge{}, err
	}
	if challenge.Type != t {
		return models.Challenge{}, gorm.ErrRecordNotFound
	}
	return challenge, nil
}

func (r *stubChallengeRepo) FindActiveByIDs(_ context.Context, assignmentNumber int, challengeIDs []string) ([]models.Challenge, error) {
	if r.err != nil {
		return nil, r.err
	}
	wanted := make(map[string]struct{}, len(challengeIDs))
	for _, id := range challengeIDs {
		wanted[id] = struct{}{}
	}
	var out []models.Challenge
	for _, c := range r.challenges {
		if _, ok := wanted[c.ChallengeID]; ok && c.Active && c.AssignmentNumber == assignmentNumber {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubChallengeRepo) ListIDsByAssignmentAndType(_ context.Context, assignmentNumber int, t models.ChallengeType) ([]string, error) {
	var ids []string
	for _, c := range r.challenges {
		if c.AssignmentNumber == assignmentNumber && c.Type == t {
			ids = append(ids, c.ChallengeID)
		}
	}
	return ids, nil
}

func (r *stubChallengeRepo) Create(_ context.Context, challenge *models.Challenge) error {
	if r.err != nil {
		return r.err
	}
	challenge.ID = uint(len(r.challenges) + 1)
	r.challenges = append(r.challenges, *challenge)
	return nil
}

func (r *stubChallengeRepo) Update(_ context.Context, challenge *models.Challenge) error {
	for i, c := range r.challenges {
		if c.ChallengeID == challenge.ChallengeID {
			r.challenges[i] = *challenge
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubChallengeRepo) Delete(_ context.Context, challengeID string) error {
	for i, c := range r.challenges {
		if c.ChallengeID == challengeID {
			r.challenges = append(r.challenges[:i], r.challenges[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubSelectionRepo struct {
	selection models.ChallengeSelection
	exists    bool
	upserted  *models.ChallengeSelection
	err       error
}

func (r *stubSelectionRepo) Get(_ context.Context, studentID uint, assignmentNumber int) (models.ChallengeSelection, error) {
	if r.err != nil {
		return models.ChallengeSelection{}, r.err
	}
	if r.upserted != nil {
		return *r.upserted, nil
	}
	if !r.exists {
		return models.ChallengeSelection{}, gorm.ErrRecordNotFound
	}
	return r.selection, nil
}

func (r *stubSelectionRepo) Upsert(_ context.Context, selection *models.ChallengeSelection) error {
	if r.err != nil {
		return r.err
	}
	if selection.ID == 0 {
		selection.ID = 1
	}
	clone := *selection
	r.upserted = &clone
	return nil
}

type stubQuestionRepo struct {
	questions []models.MCQQuestion
	err       error
}

func (r *stubQuestionRepo) Sample(_ context.Context, assignmentNumber int, size int) ([]models.MCQQuestion, error) {
	return r.firstN(assignmentNumber, size), r.err
}

func (r *stubQuestionRepo) FirstN(_ context.Context, assignmentNumber int, n int) ([]models.MCQQuestion, error) {
	return r.firstN(assignmentNumber, n), r.err
}

func (r *stubQuestionRepo) firstN(assignmentNumber, n int) []models.MCQQuestion {
	var out []models.MCQQuestion
	for _, q := range r.questions {
		if q.AssignmentNumber != assignmentNumber {
			continue
		}
		out = append(out, q)
		if len(out) == n {
			break
		}
	}
	return out
}

func (r *stubQuestionRepo) ListByAssignment(_ context.Context, assignmentNumber int) ([]models.MCQQuestion, error) {
	return r.firstN(assignmentNumber, len(r.questions)), r.err
}

func (r *stubQuestionRepo) GetByID(_ context.Context, id uint) (models.MCQQuestion, error) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return models.MCQQuestion{}, gorm.ErrRecordNotFound
}

func (r *stubQuestionRepo) Create(_ context.Context, question *models.MCQQuestion) error {
	question.ID = uint(len(r.questions) + 1)
	r.questions = append(r.questions, *question)
	return nil
}

func (r *stubQuestionRepo) Update(_ context.Context, question *models.MCQQuestion) error {
	for i, q := range r.questions {
		if q.ID == question.ID {
			r.questions[i] = *question
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubQuestionRepo) Delete(_ context.Context, id uint) error {
	for i, q := range r.questions {
		if q.ID == id {
			r.questions = append(r.questions[:i], r.questions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubQuizSubmissionRepo struct {
	submissions []models.QuizSubmission
	createErr   error
}

func (r *stubQuizSubmissionRepo) GetByStudentAndChallenge(_ context.Context, studentID uint, challengeID string) (models.QuizSubmission, error) {
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.ChallengeID == challengeID {
			return sub, nil
		}
	}
	return models.QuizSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubQuizSubmissionRepo) ListByStudentAndChallenges(_ context.Context, studentID uint, challengeIDs []string) ([]models.QuizSubmission, error) {
	wanted := make(map[string]struct{}, len(challengeIDs))
	for _, id := range challengeIDs {
		wanted[id] = struct{}{}
	}
	var out []models.QuizSubmission
	for _, sub := range r.submissions {
		if _, ok := wanted[sub.ChallengeID]; ok && sub.StudentID == studentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubQuizSubmissionRepo) ListByAssignment(_ context.Context, assignmentNumber int) ([]models.QuizSubmission, error) {
	var out []models.QuizSubmission
	for _, sub := range r.submissions {
		if sub.AssignmentNumber == assignmentNumber {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubQuizSubmissionRepo) Create(_ context.Context, submission *models.QuizSubmission) error {
	if r.createErr != nil {
		return r.createErr
	}
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	return nil
}

type stubCodeSubmissionRepo struct {
	submissions []models.CodeSubmission
}

func (r *stubCodeSubmissionRepo) GetByStudentAndChallenge(_ context.Context, studentID uint, challengeID string) (models.CodeSubmission, error) {
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.ChallengeID == challengeID {
			return sub, nil
		}
	}
	return models.CodeSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubCodeSubmissionRepo) ListByStudentAndChallenges(_ context.Context, studentID uint, challengeIDs []string) ([]models.CodeSubmission, error) {
	wanted := make(map[string]struct{}, len(challengeIDs))
	for _, id := range challengeIDs {
		wanted[id] = struct{}{}
	}
	var out []models.CodeSubmission
	for _, sub := range r.submissions {
		if _, ok := wanted[sub.ChallengeID]; ok && sub.StudentID == studentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubCodeSubmissionRepo) ListByAssignment(_ context.Context, assignmentNumber int) ([]models.CodeSubmission, error) {
	var out []models.CodeSubmission
	for _, sub := range r.submissions {
		if sub.AssignmentNumber == assignmentNumber {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubCodeSubmissionRepo) Create(_ context.Context, submission *models.CodeSubmission) error {
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	return nil
}

type stubCodingProblemRepo struct {
	problems []models.CodingProblem
}

func (r *stubCodingProblemRepo) GetByID(_ context.Context, id uint) (models.CodingProblem, error) {
	for _, p := range r.problems {
		if p.ID == id {
			return p, nil
		}
	}
	return models.CodingProblem{}, gorm.ErrRecordNotFound
}

func (r *stubCodingProblemRepo) ListByAssignment(_ context.Context, assignmentNumber int) ([]models.CodingProblem, error) {
	var out []models.CodingProblem
	for _, p := range r.problems {
		if p.AssignmentNumber == assignmentNumber {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubCodingProblemRepo) Create(_ context.Context, problem *models.CodingProblem) error {
	problem.ID = uint(len(r.problems) + 1)
	r.problems = append(r.problems, *problem)
	return nil
}

func (r *stubCodingProblemRepo) Update(_ context.Context, problem *models.CodingProblem) error {
	for i, p := range r.problems {
		if p.ID == problem.ID {
			r.problems[i] = *problem
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCodingProblemRepo) Delete(_ context.Context, id uint) error {
	for i, p := range r.problems {
		if p.ID == id {
			r.problems = append(r.problems[:i], r.problems[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubFileSubmissionRepo struct {
	submissions []models.FileSubmission
	created     *models.FileSubmission
	updated     *models.FileSubmission
}

func (r *stubFileSubmissionRepo) GetByID(_ context.Context, id uint) (models.FileSubmission, error) {
	for _, sub := range r.submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return models.FileSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubFileSubmissionRepo) GetByStudentAndChallenge(_ context.Context, studentID uint, challengeID string) (models.FileSubmission, error) {
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.ChallengeID == challengeID {
			return sub, nil
		}
	}
	return models.FileSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubFileSubmissionRepo) ListByStudentAndChallenges(_ context.Context, studentID uint, challengeIDs []string) ([]models.FileSubmission, error) {
	wanted := make(map[string]struct{}, len(challengeIDs))
	for _, id := range challengeIDs {
		wanted[id] = struct{}{}
	}
	var out []models.FileSubmission
	for _, sub := range r.submissions {
		if _, ok := wanted[sub.ChallengeID]; ok && sub.StudentID == studentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubFileSubmissionRepo) List(_ context.Context, filter repository.FileSubmissionFilter) ([]models.FileSubmission, error) {
	var out []models.FileSubmission
	for _, sub := range r.submissions {
		if filter.StudentID != nil && sub.StudentID != *filter.StudentID {
			continue
		}
		if filter.AssignmentNumber != nil && sub.AssignmentNumber != *filter.AssignmentNumber {
			continue
		}
		if filter.Graded != nil && sub.IsGraded() != *filter.Graded {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (r *stubFileSubmissionRepo) Create(_ context.Context, submission *models.FileSubmission) error {
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	clone := *submission
	r.created = &clone
	return nil
}

func (r *stubFileSubmissionRepo) Update(_ context.Context, submission *models.FileSubmission) error {
	for i, sub := range r.submissions {
		if sub.ID == submission.ID {
			r.submissions[i] = *submission
			clone := *submission
			r.updated = &clone
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubFileAccessRepo struct {
	records []models.FileAccess
}

func (r *stubFileAccessRepo) Record(_ context.Context, access *models.FileAccess) error {
	if access.ID == 0 {
		access.ID = uint(len(r.records) + 1)
	}
	r.records = append(r.records, *access)
	return nil
}

func (r *stubFileAccessRepo) ListBySubmission(_ context.Context, submissionID uint) ([]models.FileAccess, error) {
	var out []models.FileAccess
	for _, rec := range r.records {
		if rec.SubmissionID == submissionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubFileAccessRepo) ListByStudent(_ context.Context, studentID uint) ([]models.FileAccess, error) {
	var out []models.FileAccess
	for _, rec := range r.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type stubArchiveSubmissionRepo struct {
	submissions []models.ArchiveSubmission
	updated     *models.ArchiveSubmission
}

func (r *stubArchiveSubmissionRepo) GetByID(_ context.Context, id uint) (models.ArchiveSubmission, error) {
	for _, sub := range r.submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return models.ArchiveSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubArchiveSubmissionRepo) GetByStudentAndAssignment(_ context.Context, studentID uint, assignmentNumber int) (models.ArchiveSubmission, error) {
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.AssignmentNumber == assignmentNumber {
			return sub, nil
		}
	}
	return models.ArchiveSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubArchiveSubmissionRepo) ListByAssignment(_ context.Context, assignmentNumber int) ([]models.ArchiveSubmission, error) {
	var out []models.ArchiveSubmission
	for _, sub := range r.submissions {
		if sub.AssignmentNumber == assignmentNumber {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubArchiveSubmissionRepo) ListByStudent(_ context.Context, studentID uint) ([]models.ArchiveSubmission, error) {
	var out []models.ArchiveSubmission
	for _, sub := range r.submissions {
		if sub.StudentID == studentID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubArchiveSubmissionRepo) ListPendingByAssignment(_ context.Context, assignmentNumber int) ([]models.ArchiveSubmission, error) {
	var out []models.ArchiveSubmission
	for _, sub := range r.submissions {
		if sub.AssignmentNumber == assignmentNumber && !sub.IsGraded() {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *stubArchiveSubmissionRepo) SumScoresByStudent(_ context.Context, studentID uint) (float64, error) {
	var total float64
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.Score != nil {
			total += *sub.Score
		}
	}
	return total, nil
}

func (r *stubArchiveSubmissionRepo) CountByAssignment(_ context.Context, assignmentNumber int) (int64, int64, error) {
	var graded, total int64
	for _, sub := range r.submissions {
		if sub.AssignmentNumber != assignmentNumber {
			continue
		}
		total++
		if sub.IsGraded() {
			graded++
		}
	}
	return graded, total, nil
}

func (r *stubArchiveSubmissionRepo) Create(_ context.Context, submission *models.ArchiveSubmission) error {
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *stubArchiveSubmissionRepo) Update(_ context.Context, submission *models.ArchiveSubmission) error {
	for i, sub := range r.submissions {
		if sub.ID == submission.ID {
			r.submissions[i] = *submission
			clone := *submission
			r.updated = &clone
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubGradingConfigRepo struct {
	configs []models.AutoGradingConfig
}

func (r *stubGradingConfigRepo) Get(_ context.Context, assignmentNumber int, challengeType models.ChallengeType) (models.AutoGradingConfig, error) {
	for _, cfg := range r.configs {
		if cfg.AssignmentNumber == assignmentNumber && cfg.ChallengeType == challengeType {
			return cfg, nil
		}
	}
	return models.AutoGradingConfig{}, gorm.ErrRecordNotFound
}

func (r *stubGradingConfigRepo) ListByAssignment(_ context.Context, assignmentNumber int) ([]models.AutoGradingConfig, error) {
	var out []models.AutoGradingConfig
	for _, cfg := range r.configs {
		if cfg.AssignmentNumber == assignmentNumber {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (r *stubGradingConfigRepo) Upsert(_ context.Context, config *models.AutoGradingConfig) error {
	for i, cfg := range r.configs {
		if cfg.AssignmentNumber == config.AssignmentNumber && cfg.ChallengeType == config.ChallengeType {
			config.ID = cfg.ID
			r.configs[i] = *config
			return nil
		}
	}
	config.ID = uint(len(r.configs) + 1)
	r.configs = append(r.configs, *config)
	return nil
}

type stubStudentRepo struct {
	students []models.Student
	totals   map[uint]float64
}

func (r *stubStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	for _, s := range r.students {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (r *stubStudentRepo) GetByUserID(_ context.Context, userID uint) (models.Student, error) {
	for _, s := range r.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (r *stubStudentRepo) List(_ context.Context) ([]models.Student, error) {
	return r.students, nil
}

func (r *stubStudentRepo) UpdateTotalPoints(_ context.Context, id uint, totalPoints float64) error {
	if r.totals == nil {
		r.totals = make(map[uint]float64)
	}
	r.totals[id] = totalPoints
	return nil
}

type recordedEvent struct {
	Channel realtime.Channel
	Event   string
	Payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) Emit(_ context.Context, channel realtime.Channel, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Channel: channel, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) Events() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

type stubFileStore struct {
	stored   []string
	deleted  []string
	storeErr error
}

func (s *stubFileStore) Store(_ context.Context, name string, _ io.Reader) (cloudinary.StoredFile, error) {
	if s.storeErr != nil {
		return cloudinary.StoredFile{}, s.storeErr
	}
	s.stored = append(s.stored, name)
	return cloudinary.StoredFile{
		URL:      "https://cdn.example.com/" + name,
		PublicID: "praxis/submissions/" + name,
	}, nil
}

func (s *stubFileStore) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type stubExecutor struct {
	run func(req dockerexec.ExecutionRequest) (dockerexec.ExecutionResult, error)
}

func (s stubExecutor) Run(_ context.Context, req dockerexec.ExecutionRequest) (dockerexec.ExecutionResult, error) {
	if s.run == nil {
		return dockerexec.ExecutionResult{}, nil
	}
	return s.run(req)
}

type stubArchiveGrader struct {
	result RubricResult
	err    error
}

func (s stubArchiveGrader) Grade(string, uint) (RubricResult, error) {
	return s.result, s.err
}
