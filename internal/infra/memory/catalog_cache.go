package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedCatalog caches quiz lookups with TTL to avoid repeated DB hits.
// Writes go straight to the backing catalog and evict the affected quiz.
type CachedCatalog struct {
	app.QuizCatalog

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.Mutex
	rnd   *rand.Rand
	cache map[int64]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewCachedCatalog(backing app.QuizCatalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		QuizCatalog: backing,
		ttl:         ttl,
		clock:       time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:       make(map[int64]cachedQuiz),
	}
}

func (c *CachedCatalog) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := c.lookup(quizID); ok {
		return cloneQuiz(quiz), nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		if quiz, ok := c.lookup(quizID); ok {
			return quiz, nil
		}
		quiz, err := c.QuizCatalog.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{quiz: cloneQuiz(quiz), expiresAt: c.clock().Add(c.ttlWithJitterLocked())}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(result.(domain.Quiz)), nil
}

func (c *CachedCatalog) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	defer c.evict(quiz.ID)
	return c.QuizCatalog.UpdateQuiz(ctx, quiz)
}

func (c *CachedCatalog) DeleteQuiz(ctx context.Context, quizID int64) error {
	defer c.evict(quizID)
	return c.QuizCatalog.DeleteQuiz(ctx, quizID)
}

func (c *CachedCatalog) AddQuestion(ctx context.Context, quizID int64, question domain.Question) (domain.Question, error) {
	defer c.evict(quizID)
	return c.QuizCatalog.AddQuestion(ctx, quizID, question)
}

func (c *CachedCatalog) DeleteQuestion(ctx context.Context, quizID, questionID int64, minQuestions int) error {
	defer c.evict(quizID)
	return c.QuizCatalog.DeleteQuestion(ctx, quizID, questionID, minQuestions)
}

func (c *CachedCatalog) lookup(quizID int64) (domain.Quiz, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (c *CachedCatalog) evict(quizID int64) {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
}

func (c *CachedCatalog) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// cloneQuiz copies the question and answer slices so callers never share
// them with the cache.
func cloneQuiz(q domain.Quiz) domain.Quiz {
	if q.Questions == nil {
		return q
	}
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Answers = append([]domain.Answer(nil), question.Answers...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
