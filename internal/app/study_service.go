package app

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

// SessionKind selects the cards of a study session and how answers count.
type SessionKind string

const (
	// KindWordLearning walks every word of a tag without recording anything.
	KindWordLearning SessionKind = "word-learning"

	// KindWordReview walks the collected words of a tag and marks each one
	// known or collected.
	KindWordReview SessionKind = "word-review"

	// KindQuizTest walks every quiz of a category, grading in test mode.
	KindQuizTest SessionKind = "quiz-test"

	// KindQuizReview walks the collected quizzes of a category, grading in
	// review mode.
	KindQuizReview SessionKind = "quiz-review"
)

// Valid reports whether k is a known kind.
func (k SessionKind) Valid() bool {
	switch k {
	case KindWordLearning, KindWordReview, KindQuizTest, KindQuizReview:
		return true
	default:
		return false
	}
}

// Words reports whether the session holds word items rather than quizzes.
func (k SessionKind) Words() bool {
	return k == KindWordLearning || k == KindWordReview
}

func (k SessionKind) recordsViews() bool {
	return k != KindWordLearning
}

func (k SessionKind) reviewsCollected() bool {
	return k == KindWordReview || k == KindQuizReview
}

func (k SessionKind) answerMode() domain.AnswerMode {
	if k == KindQuizReview {
		return domain.AnswerModeReview
	}

	return domain.AnswerModeTest
}

// emptySessionError reports a session with nothing to study.
type emptySessionError struct {
	kind SessionKind
}

func (e *emptySessionError) Error() string {
	if e.kind.Words() {
		return "no words found in this tag"
	}

	return "no quizzes found in this category"
}

func (e *emptySessionError) Unwrap() error {
	return domain.ErrNotFound
}

// SessionView is a snapshot of a session. Word meanings stay hidden until
// the card is revealed and quiz answers are never shown before grading.
type SessionView struct {
	ID       string
	Kind     SessionKind
	GroupID  string
	Index    int
	Total    int
	Revealed bool
	Finished bool

	Word *domain.WordItem
	Quiz *domain.Quiz

	// LastAnswer is the grade of the previous quiz card.
	LastAnswer *domain.AnswerResult

	// Correct counts known words or correct answers; Incorrect the rest.
	Correct   int
	Incorrect int

	StartedAt time.Time
}

type session struct {
	mu sync.Mutex

	id      string
	kind    SessionKind
	groupID string

	words   []domain.WordItem
	quizzes []domain.Quiz

	index     int
	revealed  bool
	finished  bool
	last      *domain.AnswerResult
	correct   int
	incorrect int

	startedAt time.Time
	touched   time.Time

	// closed is set once the session leaves the map so that a caller
	// holding a stale pointer cannot keep using it.
	closed bool
}

func (s *session) total() int {
	if s.kind.Words() {
		return len(s.words)
	}

	return len(s.quizzes)
}

// StudyConfig tunes sessions.
type StudyConfig struct {
	// SessionTTL is how long an untouched session survives.
	SessionTTL time.Duration

	// SpacedOrder sorts review sessions most overdue first.
	SpacedOrder bool
}

// DefaultSessionTTL applies when StudyConfig.SessionTTL is zero.
const DefaultSessionTTL = 2 * time.Hour

// StudyService drives learning, review and test sessions held in memory.
type StudyService struct {
	words   ports.WordStore
	quizzes ports.QuizStore
	grader  *QuizService

	ttl    time.Duration
	spaced bool
	logger *slog.Logger
	now    func() time.Time

	// mu guards the map only and is never held together with a session lock.
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStudyService creates a StudyService. Quiz answers are graded by grader.
func NewStudyService(words ports.WordStore, quizzes ports.QuizStore, grader *QuizService, study StudyConfig, cfg *ServiceConfig) *StudyService {
	c := cfg.resolve()

	ttl := study.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &StudyService{
		words:    words,
		quizzes:  quizzes,
		grader:   grader,
		ttl:      ttl,
		spaced:   study.SpacedOrder,
		logger:   c.Logger,
		now:      c.Now,
		sessions: make(map[string]*session),
	}
}

// Start loads the cards for kind from the tag or category groupID and
// opens a session on the first one.
func (s *StudyService) Start(ctx context.Context, kind SessionKind, groupID string) (*SessionView, error) {
	if !kind.Valid() {
		return nil, domain.NewValidationError("kind", "must be word-learning, word-review, quiz-test or quiz-review")
	}
	if err := requireID("groupId", groupID); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &session{
		id:        uuid.NewString(),
		kind:      kind,
		groupID:   groupID,
		startedAt: now,
		touched:   now,
	}

	if err := s.load(ctx, sess); err != nil {
		return nil, err
	}
	if sess.total() == 0 {
		return nil, &emptySessionError{kind: kind}
	}

	if kind.recordsViews() {
		s.recordView(ctx, sess)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "study session started",
		slog.String("session_id", sess.id),
		slog.String("kind", string(kind)),
		slog.Int("cards", sess.total()),
	)

	return sess.view(), nil
}

func (s *StudyService) load(ctx context.Context, sess *session) error {
	var err error

	switch sess.kind {
	case KindWordLearning:
		sess.words, err = s.words.WordsByTag(ctx, sess.groupID)
	case KindWordReview:
		sess.words, err = s.words.CollectedWordsByTag(ctx, sess.groupID)
	case KindQuizTest:
		sess.quizzes, err = s.quizzes.QuizzesByCategory(ctx, sess.groupID)
	case KindQuizReview:
		sess.quizzes, err = s.quizzes.CollectedQuizzesByCategory(ctx, sess.groupID)
	}
	if err != nil {
		return err
	}

	if s.spaced && sess.kind.reviewsCollected() {
		sess.words = domain.OrderForReview(sess.words, func(w domain.WordItem) []time.Time { return w.ViewTimes })
		sess.quizzes = domain.OrderForReview(sess.quizzes, func(q domain.Quiz) []time.Time { return q.ViewTimes })
	}

	return nil
}

// Current returns the session at its current card.
func (s *StudyService) Current(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	return sess.view(), nil
}

// Reveal shows the meaning of the current word.
func (s *StudyService) Reveal(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.requireActive(true); err != nil {
		return nil, err
	}

	sess.revealed = true

	return sess.view(), nil
}

// AnswerWord records whether the current word was known and moves on. In
// review sessions the word is marked known, or collected for another pass.
func (s *StudyService) AnswerWord(ctx context.Context, id string, known bool) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.requireActive(true); err != nil {
		return nil, err
	}

	if sess.kind == KindWordReview {
		word := &sess.words[sess.index]
		collected := !known

		updated, err := s.words.UpdateWordItem(ctx, word.ID, domain.UpdateWordInput{IsKnown: &known, IsCollected: &collected})
		if err != nil {
			return nil, err
		}
		if updated != nil {
			word.IsKnown, word.IsCollected = updated.IsKnown, updated.IsCollected
		}
	}

	if known {
		sess.correct++
	} else {
		sess.incorrect++
	}

	s.advance(ctx, sess)

	return sess.view(), nil
}

// AnswerQuiz grades option for the current quiz and moves on.
func (s *StudyService) AnswerQuiz(ctx context.Context, id string, option int) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.requireActive(false); err != nil {
		return nil, err
	}

	quiz := &sess.quizzes[sess.index]

	result, err := s.grader.SubmitAnswer(ctx, quiz.ID, option, sess.kind.answerMode())
	if err != nil {
		return nil, err
	}

	sess.last = result
	if result.Correct {
		sess.correct++
	} else {
		sess.incorrect++
	}

	s.advance(ctx, sess)

	return sess.view(), nil
}

// Finish closes the session and returns its final state.
func (s *StudyService) Finish(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.finished = true
	sess.closed = true
	view := sess.view()
	sess.mu.Unlock()

	s.remove(id, sess)

	return view, nil
}

// Sweep drops sessions untouched for longer than the TTL and returns how
// many were dropped.
func (s *StudyService) Sweep(now time.Time) int {
	s.mu.RLock()
	snapshot := make(map[string]*session, len(s.sessions))
	maps.Copy(snapshot, s.sessions)
	s.mu.RUnlock()

	dropped := 0
	for id, sess := range snapshot {
		sess.mu.Lock()
		expired := !sess.closed && now.Sub(sess.touched) > s.ttl
		if expired {
			sess.closed = true
		}
		sess.mu.Unlock()

		if expired && s.remove(id, sess) {
			dropped++
		}
	}

	return dropped
}

// remove deletes id from the map if it still refers to sess.
func (s *StudyService) remove(id string, sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[id] != sess {
		return false
	}
	delete(s.sessions, id)

	return true
}

// ActiveSessions returns the number of sessions held in memory, including
// expired ones not yet swept.
func (s *StudyService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *StudyService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.DebugContext(ctx, "expired study sessions dropped", slog.Int("count", n))
			}
		}
	}
}

// lookup returns the live session locked. Callers unlock it.
func (s *StudyService) lookup(id string) (*session, error) {
	if err := requireID("sessionId", id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewNotFoundError("study session", id)
	}

	sess.mu.Lock()

	if sess.closed {
		sess.mu.Unlock()
		return nil, domain.NewNotFoundError("study session", id)
	}

	now := s.now()
	if now.Sub(sess.touched) > s.ttl {
		sess.closed = true
		sess.mu.Unlock()
		s.remove(id, sess)

		return nil, domain.NewNotFoundError("study session", id)
	}
	sess.touched = now

	return sess, nil
}

// advance moves to the next card, recording a view of it when the kind
// tracks views. Passing the last card finishes the session.
func (s *StudyService) advance(ctx context.Context, sess *session) {
	sess.revealed = false
	sess.index++

	if sess.index >= sess.total() {
		sess.finished = true
		sess.index = sess.total()

		return
	}

	if sess.kind.recordsViews() {
		s.recordView(ctx, sess)
	}
}

// recordView appends a view to the current card. Failures are logged; a
// missed view only affects review ordering.
func (s *StudyService) recordView(ctx context.Context, sess *session) {
	at := s.now().UTC()

	var (
		cardID string
		err    error
	)

	if sess.kind.Words() {
		w := &sess.words[sess.index]
		cardID = w.ID
		if err = s.words.AppendWordView(ctx, w.ID, at); err == nil {
			w.ViewTimes = append(slices.Clone(w.ViewTimes), at)
		}
	} else {
		q := &sess.quizzes[sess.index]
		cardID = q.ID
		if err = s.quizzes.AppendQuizView(ctx, q.ID, at); err == nil {
			q.ViewTimes = append(slices.Clone(q.ViewTimes), at)
		}
	}

	if err != nil {
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "recording view failed",
			slog.String("session_id", sess.id),
			slog.String("card_id", cardID),
			slog.Any("error", err),
		)
	}
}

// requireActive checks the session can take an answer of the given card type.
func (sess *session) requireActive(words bool) error {
	if sess.finished {
		return domain.NewConflictError("study session", "session is finished")
	}
	if words != sess.kind.Words() {
		if words {
			return domain.NewValidationError("sessionId", "session holds quizzes, not words")
		}

		return domain.NewValidationError("sessionId", "session holds words, not quizzes")
	}

	return nil
}

func (sess *session) view() *SessionView {
	v := &SessionView{
		ID:         sess.id,
		Kind:       sess.kind,
		GroupID:    sess.groupID,
		Index:      sess.index,
		Total:      sess.total(),
		Revealed:   sess.revealed,
		Finished:   sess.finished,
		LastAnswer: sess.last,
		Correct:    sess.correct,
		Incorrect:  sess.incorrect,
		StartedAt:  sess.startedAt,
	}

	if sess.finished || sess.index >= sess.total() {
		return v
	}

	if sess.kind.Words() {
		w := sess.words[sess.index]
		if !sess.revealed {
			w = hideMeaning(w)
		}
		v.Word = &w
	} else {
		q := sess.quizzes[sess.index]
		q.CorrectAnswer = ""
		v.Quiz = &q
	}

	return v
}

// hideMeaning returns a copy of w without its meaning or example translations.
func hideMeaning(w domain.WordItem) domain.WordItem {
	w.Meaning = ""
	w.Examples = slices.Clone(w.Examples)
	for i := range w.Examples {
		w.Examples[i].Meaning = ""
	}

	return w
}
