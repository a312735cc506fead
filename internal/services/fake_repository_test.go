package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
)

// fakeRepository is an in-memory Repository used by the service tests. It
// enforces the same uniqueness rules as the real store: token values and
// (survey, respondent email) pairs.
type fakeRepository struct {
	mu sync.Mutex

	surveys   map[uint]*models.Survey
	questions map[uint]*models.Question
	options   map[uint]*models.QuestionOption
	responses map[uint]*models.SurveyResponse
	answers   map[uint]*models.Answer
	tokens    map[uint]*models.SurveyToken

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		surveys:   make(map[uint]*models.Survey),
		questions: make(map[uint]*models.Question),
		options:   make(map[uint]*models.QuestionOption),
		responses: make(map[uint]*models.SurveyResponse),
		answers:   make(map[uint]*models.Answer),
		tokens:    make(map[uint]*models.SurveyToken),
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) Survey() repositories.SurveyRepository     { return &fakeSurveyRepo{f} }
func (f *fakeRepository) Question() repositories.QuestionRepository { return &fakeQuestionRepo{f} }
func (f *fakeRepository) Response() repositories.ResponseRepository { return &fakeResponseRepo{f} }
func (f *fakeRepository) Token() repositories.TokenRepository       { return &fakeTokenRepo{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== SURVEYS =====

type fakeSurveyRepo struct{ f *fakeRepository }

func (r *fakeSurveyRepo) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	survey.ID = r.f.id()
	survey.CreatedAt = time.Now()
	survey.UpdatedAt = survey.CreatedAt
	clone := *survey
	r.f.surveys[survey.ID] = &clone
	return nil
}

func (r *fakeSurveyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	survey, ok := r.f.surveys[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *survey
	return &clone, nil
}

func (r *fakeSurveyRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	survey, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	survey.Questions = r.f.questionsOf(id)
	survey.QuestionsCount = len(survey.Questions)
	return survey, nil
}

func (r *fakeSurveyRepo) GetPublishedByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	survey, err := r.GetByIDWithQuestions(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if survey.Status != models.StatusPublished {
		return nil, gorm.ErrRecordNotFound
	}
	return survey, nil
}

func (r *fakeSurveyRepo) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	stored, ok := r.f.surveys[survey.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Title = survey.Title
	stored.Description = survey.Description
	stored.Status = survey.Status
	stored.UpdatedAt = survey.UpdatedAt
	return nil
}

func (r *fakeSurveyRepo) ListPublished(ctx context.Context, tx *gorm.DB, filters repositories.SurveyFilters) ([]*models.Survey, error) {
	return r.list(func(s *models.Survey) bool { return s.Status == models.StatusPublished }), nil
}

func (r *fakeSurveyRepo) ListByCreator(ctx context.Context, tx *gorm.DB, creator string, filters repositories.SurveyFilters) ([]*models.Survey, error) {
	return r.list(func(s *models.Survey) bool { return s.CreatedBy == creator }), nil
}

func (r *fakeSurveyRepo) list(keep func(*models.Survey) bool) []*models.Survey {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*models.Survey
	for _, s := range r.f.surveys {
		if keep(s) {
			clone := *s
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeSurveyRepo) CountByCreator(ctx context.Context, tx *gorm.DB, creator string) (int64, error) {
	return int64(len(r.list(func(s *models.Survey) bool { return s.CreatedBy == creator }))), nil
}

func (r *fakeSurveyRepo) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.SurveyStats, error) {
	survey, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	stats := &repositories.SurveyStats{
		SurveyID: survey.ID,
		Title:    survey.Title,
		Status:   survey.Status,
	}
	for _, q := range r.f.questions {
		if q.SurveyID == id {
			stats.QuestionCount++
		}
	}
	for _, resp := range r.f.responses {
		if resp.SurveyID == id {
			stats.ResponseCount++
		}
	}
	now := time.Now()
	for _, t := range r.f.tokens {
		if t.SurveyID == id && t.Valid(now) {
			stats.HasActiveToken = true
		}
	}
	return stats, nil
}

func (r *fakeSurveyRepo) GetCreatorStats(ctx context.Context, tx *gorm.DB, creator string) (*repositories.CreatorStats, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	stats := &repositories.CreatorStats{}
	for _, s := range r.f.surveys {
		if s.CreatedBy != creator {
			continue
		}
		stats.TotalSurveys++
		switch s.Status {
		case models.StatusPublished:
			stats.PublishedSurveys++
		case models.StatusDraft:
			stats.DraftSurveys++
		}
		for _, resp := range r.f.responses {
			if resp.SurveyID == s.ID {
				stats.TotalResponses++
			}
		}
	}
	return stats, nil
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ f *fakeRepository }

func (f *fakeRepository) questionsOf(surveyID uint) []models.Question {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Question
	for _, q := range f.questions {
		if q.SurveyID == surveyID {
			clone := *q
			clone.Options = f.optionsOf(q.ID)
			out = append(out, clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (f *fakeRepository) optionsOf(questionID uint) []models.QuestionOption {
	var out []models.QuestionOption
	for _, o := range f.options {
		if o.QuestionID == questionID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	question.ID = r.f.id()
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	clone := *question
	r.f.questions[question.ID] = &clone
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.f.mu.Lock()
	question, ok := r.f.questions[id]
	if !ok {
		r.f.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	clone := *question
	clone.Options = r.f.optionsOf(id)
	r.f.mu.Unlock()
	return &clone, nil
}

func (r *fakeQuestionRepo) GetByIDWithSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	question, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	r.f.mu.Lock()
	survey, ok := r.f.surveys[question.SurveyID]
	r.f.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	question.Survey = *survey
	return question, nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	stored, ok := r.f.questions[question.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Text = question.Text
	stored.Type = question.Type
	stored.Order = question.Order
	stored.UpdatedAt = question.UpdatedAt
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	if _, ok := r.f.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for oid, o := range r.f.options {
		if o.QuestionID == id {
			delete(r.f.options, oid)
		}
	}
	delete(r.f.questions, id)
	return nil
}

func (r *fakeQuestionRepo) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error) {
	questions := r.f.questionsOf(surveyID)
	out := make([]*models.Question, len(questions))
	for i := range questions {
		out[i] = &questions[i]
	}
	return out, nil
}

func (r *fakeQuestionRepo) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	return int64(len(r.f.questionsOf(surveyID))), nil
}

func (r *fakeQuestionRepo) CreateOption(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	option.ID = r.f.id()
	option.CreatedAt = time.Now()
	clone := *option
	r.f.options[option.ID] = &clone
	return nil
}

func (r *fakeQuestionRepo) CreateOptions(ctx context.Context, tx *gorm.DB, options []*models.QuestionOption) error {
	for _, o := range options {
		if err := r.CreateOption(ctx, tx, o); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeQuestionRepo) DeleteOptionsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	for oid, o := range r.f.options {
		if o.QuestionID == questionID {
			delete(r.f.options, oid)
		}
	}
	return nil
}

func (r *fakeQuestionRepo) ListOptionsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.QuestionOption, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	options := r.f.optionsOf(questionID)
	out := make([]*models.QuestionOption, len(options))
	for i := range options {
		out[i] = &options[i]
	}
	return out, nil
}

// ===== RESPONSES =====

type fakeResponseRepo struct{ f *fakeRepository }

func (r *fakeResponseRepo) Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	for _, existing := range r.f.responses {
		if existing.SurveyID == response.SurveyID && existing.RespondentEmail == response.RespondentEmail {
			return gorm.ErrDuplicatedKey
		}
	}

	response.ID = r.f.id()
	response.SubmittedAt = time.Now()
	clone := *response
	r.f.responses[response.ID] = &clone
	return nil
}

func (r *fakeResponseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	response, ok := r.f.responses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *response
	clone.Answers = r.f.answersOf(id)
	return &clone, nil
}

func (r *fakeResponseRepo) GetByIDWithSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error) {
	response, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	r.f.mu.Lock()
	survey, ok := r.f.surveys[response.SurveyID]
	r.f.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	response.Survey = *survey
	return response, nil
}

func (f *fakeRepository) answersOf(responseID uint) []models.Answer {
	var out []models.Answer
	for _, a := range f.answers {
		if a.SurveyResponseID == responseID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeResponseRepo) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters repositories.ResponseFilters) ([]*models.SurveyResponse, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*models.SurveyResponse
	for _, resp := range r.f.responses {
		if resp.SurveyID != surveyID {
			continue
		}
		if filters.RespondentEmail != nil && resp.RespondentEmail != *filters.RespondentEmail {
			continue
		}
		clone := *resp
		clone.Answers = r.f.answersOf(resp.ID)
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *fakeResponseRepo) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var count int64
	for _, resp := range r.f.responses {
		if resp.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

func (r *fakeResponseRepo) ExistsBySurveyAndEmail(ctx context.Context, tx *gorm.DB, surveyID uint, email string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	for _, resp := range r.f.responses {
		if resp.SurveyID == surveyID && resp.RespondentEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResponseRepo) CreateAnswer(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	answer.ID = r.f.id()
	clone := *answer
	r.f.answers[answer.ID] = &clone
	return nil
}

func (r *fakeResponseRepo) ListAnswersByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var out []*models.Answer
	for _, a := range r.f.answers {
		if a.QuestionID == questionID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeResponseRepo) ListAnswersByResponse(ctx context.Context, tx *gorm.DB, responseID uint) ([]*models.Answer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	answers := r.f.answersOf(responseID)
	out := make([]*models.Answer, len(answers))
	for i := range answers {
		out[i] = &answers[i]
	}
	return out, nil
}

// ===== TOKENS =====

type fakeTokenRepo struct{ f *fakeRepository }

func (r *fakeTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *models.SurveyToken) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	for _, existing := range r.f.tokens {
		if existing.Token == token.Token {
			return gorm.ErrDuplicatedKey
		}
	}

	token.ID = r.f.id()
	token.CreatedAt = time.Now()
	clone := *token
	r.f.tokens[token.ID] = &clone
	return nil
}

func (r *fakeTokenRepo) Update(ctx context.Context, tx *gorm.DB, token *models.SurveyToken) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	stored, ok := r.f.tokens[token.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.IsActive = token.IsActive
	stored.ExpiresAt = token.ExpiresAt
	return nil
}

func (r *fakeTokenRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.SurveyToken, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	for _, t := range r.f.tokens {
		if t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.SurveyToken, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var latest *models.SurveyToken
	for _, t := range r.f.tokens {
		if t.SurveyID != surveyID {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) || (t.CreatedAt.Equal(latest.CreatedAt) && t.ID > latest.ID) {
			latest = t
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *fakeTokenRepo) GetValidToken(ctx context.Context, tx *gorm.DB, token string, now time.Time) (*models.SurveyToken, error) {
	t, err := r.GetByToken(ctx, tx, token)
	if err != nil {
		return nil, err
	}
	if !t.Valid(now) {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) ExistsByToken(ctx context.Context, tx *gorm.DB, token string) (bool, error) {
	_, err := r.GetByToken(ctx, tx, token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *fakeTokenRepo) HasActiveToken(ctx context.Context, tx *gorm.DB, surveyID uint, now time.Time) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	for _, t := range r.f.tokens {
		if t.SurveyID == surveyID && t.Valid(now) {
			return true, nil
		}
	}
	return false, nil
}
