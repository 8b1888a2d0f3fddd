package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/observability"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
	dockerexec "github.com/praxislab/praxis-api/pkg/docker"
)

// ErrUnsupportedLanguage indicates the requested language is not allowed.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// hiddenMask replaces expected and actual outputs of hidden test cases in
// student-facing results.
const hiddenMask = "[hidden]"

// CodeExecutionConfig describes sandbox execution knobs. Resource limits
// live on the executor itself.
type CodeExecutionConfig struct {
	ExecutionTimeout time.Duration
	WorkspaceRoot    string
}

type languageConfig struct {
	Image    string
	FileName string
	Command  []string
}

// CodeService runs the coding challenge flow: problems are presented with
// hidden expected outputs stripped, dry runs execute visible cases only,
// and submissions grade against the full case set.
type CodeService interface {
	GetProblem(ctx context.Context, studentID uint, challengeID string) (dto.CodeProblemResponse, error)
	RunTests(ctx context.Context, studentID uint, challengeID string, payload dto.CodeRunRequest) (dto.CodeRunResponse, error)
	Submit(ctx context.Context, studentID uint, challengeID string, payload dto.CodeSubmitRequest) (dto.CodeResultResponse, error)
	Result(ctx context.Context, studentID uint, challengeID string) (dto.CodeResultResponse, error)
}

type codeService struct {
	challenges  repository.ChallengeRepository
	selections  repository.SelectionRepository
	problems    repository.CodingProblemRepository
	submissions repository.CodeSubmissionRepository
	executor    dockerexec.Executor
	broadcaster realtime.Broadcaster
	validator   *validator.Validate
	logger      zerolog.Logger
	config      CodeExecutionConfig
	languages   map[string]languageConfig
	now         func() time.Time
}

// NewCodeService constructs a CodeService instance.
func NewCodeService(
	challengeRepo repository.ChallengeRepository,
	selectionRepo repository.SelectionRepository,
	problemRepo repository.CodingProblemRepository,
	submissionRepo repository.CodeSubmissionRepository,
	executor dockerexec.Executor,
	broadcaster realtime.Broadcaster,
	validate *validator.Validate,
	logger zerolog.Logger,
	cfg CodeExecutionConfig,
) CodeService {
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = os.TempDir()
	}
	if cfg.ExecutionTimeout == 0 {
		cfg.ExecutionTimeout = 10 * time.Second
	}

	return &codeService{
		challenges:  challengeRepo,
		selections:  selectionRepo,
		problems:    problemRepo,
		submissions: submissionRepo,
		executor:    executor,
		broadcaster: broadcaster,
		validator:   validate,
		logger:      logger.With().Str("component", "code_service").Logger(),
		config:      cfg,
		languages: map[string]languageConfig{
			"python": {
				Image:    "python:3.11-alpine",
				FileName: "main.py",
				Command:  []string{"sh", "-c", "python main.py < input.txt"},
			},
			"javascript": {
				Image:    "node:20-alpine",
				FileName: "main.js",
				Command:  []string{"sh", "-c", "node main.js < input.txt"},
			},
			"go": {
				Image:    "golang:1.22-alpine",
				FileName: "main.go",
				Command:  []string{"sh", "-c", "go run main.go < input.txt"},
			},
		},
		now: time.Now,
	}
}

func (s *codeService) GetProblem(ctx context.Context, studentID uint, challengeID string) (dto.CodeProblemResponse, error) {
	challenge, err := s.loadChallenge(ctx, studentID, challengeID)
	if err != nil {
		return dto.CodeProblemResponse{}, err
	}

	problem, err := s.loadProblem(ctx, challenge)
	if err != nil {
		return dto.CodeProblemResponse{}, err
	}

	return dto.NewCodeProblemResponse(problem), nil
}

// RunTests executes the student's code against the visible cases only.
// Nothing is persisted; this backs the editor's "run" button.
func (s *codeService) RunTests(ctx context.Context, studentID uint, challengeID string, payload dto.CodeRunRequest) (dto.CodeRunResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeRunResponse{}, err
	}

	challenge, err := s.loadChallenge(ctx, studentID, challengeID)
	if err != nil {
		return dto.CodeRunResponse{}, err
	}

	problem, err := s.loadProblem(ctx, challenge)
	if err != nil {
		return dto.CodeRunResponse{}, err
	}

	results, err := s.execute(ctx, payload.Code, payload.Language, problem.VisibleTestCases())
	if err != nil {
		return dto.CodeRunResponse{}, err
	}

	passed := 0
	for _, result := range results {
		if result.Passed {
			passed++
		}
	}

	s.broadcaster.Emit(ctx, realtime.ChallengeChannel(challengeID), realtime.EventTestResult, map[string]interface{}{
		"student_id":   studentID,
		"challenge_id": challengeID,
		"passed":       passed,
		"total":        len(results),
	})

	return dto.CodeRunResponse{
		Results:     dto.NewCodeTestResultResponseSlice(results),
		PassedTests: passed,
		TotalTests:  len(results),
	}, nil
}

func (s *codeService) Submit(ctx context.Context, studentID uint, challengeID string, payload dto.CodeSubmitRequest) (dto.CodeResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeResultResponse{}, err
	}

	challenge, err := s.loadChallenge(ctx, studentID, challengeID)
	if err != nil {
		return dto.CodeResultResponse{}, err
	}

	if _, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID); err == nil {
		return dto.CodeResultResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CodeResultResponse{}, err
	}

	problem, err := s.loadProblem(ctx, challenge)
	if err != nil {
		return dto.CodeResultResponse{}, err
	}

	results, err := s.execute(ctx, payload.Code, payload.Language, problem.TestCases)
	if err != nil {
		return dto.CodeResultResponse{}, err
	}

	passed := 0
	stored := make([]models.CodeTestResult, 0, len(results))
	for i, result := range results {
		if result.Passed {
			passed++
		}
		if problem.TestCases[i].Hidden {
			result.ExpectedOutput = hiddenMask
			result.ActualOutput = hiddenMask
		}
		stored = append(stored, result)
	}

	score := 0.0
	if len(results) > 0 {
		score = roundToTenth(float64(passed) / float64(len(results)) * challenge.MaxScore)
	}

	language := payload.Language
	if language == "" {
		language = "javascript"
	}

	startedAt := s.now()
	if payload.StartedAt != nil {
		startedAt = *payload.StartedAt
	}

	submission := models.CodeSubmission{
		StudentID:        studentID,
		ChallengeID:      challengeID,
		AssignmentNumber: challenge.AssignmentNumber,
		ProblemID:        problem.ID,
		Code:             payload.Code,
		Language:         language,
		Score:            score,
		MaxScore:         challenge.MaxScore,
		PassedTests:      passed,
		TotalTests:       len(results),
		TestResults:      stored,
		TimeSpentMinutes: payload.TimeSpentMinutes,
		StartedAt:        startedAt,
		SubmittedAt:      s.now(),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.CodeResultResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Str("challenge_id", challengeID).
		Int("passed", passed).
		Int("total", len(results)).
		Msg("code submission graded")
	observability.SubmissionsGraded().WithLabelValues(string(models.ChallengeTypeCoding)).Inc()

	s.broadcaster.Emit(ctx, realtime.ChallengeChannel(challengeID), realtime.EventSubmissionUpdate, map[string]interface{}{
		"student_id":   studentID,
		"challenge_id": challengeID,
		"score":        score,
		"max_score":    challenge.MaxScore,
		"passed_tests": passed,
		"total_tests":  len(results),
	})
	s.broadcaster.Emit(ctx, realtime.AdminChannel, realtime.EventAnalyticsUpdate, map[string]interface{}{
		"assignment_number": challenge.AssignmentNumber,
		"challenge_id":      challengeID,
		"type":              string(models.ChallengeTypeCoding),
	})

	return dto.NewCodeResultResponse(submission), nil
}

func (s *codeService) Result(ctx context.Context, studentID uint, challengeID string) (dto.CodeResultResponse, error) {
	submission, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CodeResultResponse{}, ErrSubmissionNotFound
		}
		return dto.CodeResultResponse{}, err
	}

	return dto.NewCodeResultResponse(submission), nil
}

// execute runs the code once per test case inside the sandbox and compares
// trimmed stdout against the expected output.
func (s *codeService) execute(ctx context.Context, code, language string, cases []models.TestCase) ([]models.CodeTestResult, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = "javascript"
	}
	langCfg, ok := s.languages[language]
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	workspace, err := os.MkdirTemp(s.config.WorkspaceRoot, "run-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	if err := os.WriteFile(filepath.Join(workspace, langCfg.FileName), []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	results := make([]models.CodeTestResult, 0, len(cases))
	for _, testCase := range cases {
		if err := os.WriteFile(filepath.Join(workspace, "input.txt"), []byte(testCase.Input), 0o600); err != nil {
			return nil, fmt.Errorf("write input: %w", err)
		}

		req := dockerexec.ExecutionRequest{
			Image:     langCfg.Image,
			Cmd:       langCfg.Command,
			Timeout:   s.config.ExecutionTimeout,
			Workspace: workspace,
		}

		execResult, execErr := s.executor.Run(ctx, req)

		result := models.CodeTestResult{
			Input:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
			ActualOutput:   strings.TrimSpace(execResult.Stdout),
		}

		switch {
		case execErr != nil && execResult.TimedOut:
			result.Error = "execution timed out"
		case execErr != nil:
			result.Error = execErr.Error()
		case execResult.ExitCode != 0:
			result.Error = strings.TrimSpace(execResult.Stderr)
			if result.Error == "" {
				result.Error = fmt.Sprintf("process exited with code %d", execResult.ExitCode)
			}
		default:
			result.Passed = result.ActualOutput == strings.TrimSpace(testCase.ExpectedOutput)
		}

		results = append(results, result)
	}

	return results, nil
}

func (s *codeService) loadChallenge(ctx context.Context, studentID uint, challengeID string) (models.Challenge, error) {
	challenge, err := s.challenges.GetByChallengeIDAndType(ctx, challengeID, models.ChallengeTypeCoding)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Challenge{}, ErrChallengeNotFound
		}
		return models.Challenge{}, err
	}
	if !challenge.Active {
		return models.Challenge{}, ErrChallengeNotFound
	}

	selection, err := s.selections.Get(ctx, studentID, challenge.AssignmentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Challenge{}, ErrChallengeNotSelected
		}
		return models.Challenge{}, err
	}
	if !selection.Contains(challengeID) {
		return models.Challenge{}, ErrChallengeNotSelected
	}

	return challenge, nil
}

func (s *codeService) loadProblem(ctx context.Context, challenge models.Challenge) (models.CodingProblem, error) {
	if challenge.ProblemID == nil {
		return models.CodingProblem{}, ErrProblemNotFound
	}

	problem, err := s.problems.GetByID(ctx, *challenge.ProblemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CodingProblem{}, ErrProblemNotFound
		}
		return models.CodingProblem{}, err
	}

	return problem, nil
}
