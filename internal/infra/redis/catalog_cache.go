package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedCatalog caches full quizzes in Redis as JSON and falls back to the
// backing catalog on a miss. Stored as: SET catalog:quiz:{quizID} <json>
// Writes go to the backing catalog and drop the cached entry.
type CachedCatalog struct {
	app.QuizCatalog

	client redis.UniversalClient
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCachedCatalog(client redis.UniversalClient, backing app.QuizCatalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		QuizCatalog: backing,
		client:      client,
		ttl:         ttl,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedCatalog) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if quiz, ok := c.lookup(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := c.QuizCatalog.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, quizKey(quizID), raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *CachedCatalog) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	defer c.evict(ctx, quiz.ID)
	return c.QuizCatalog.UpdateQuiz(ctx, quiz)
}

func (c *CachedCatalog) DeleteQuiz(ctx context.Context, quizID int64) error {
	defer c.evict(ctx, quizID)
	return c.QuizCatalog.DeleteQuiz(ctx, quizID)
}

func (c *CachedCatalog) AddQuestion(ctx context.Context, quizID int64, question domain.Question) (domain.Question, error) {
	defer c.evict(ctx, quizID)
	return c.QuizCatalog.AddQuestion(ctx, quizID, question)
}

func (c *CachedCatalog) DeleteQuestion(ctx context.Context, quizID, questionID int64, minQuestions int) error {
	defer c.evict(ctx, quizID)
	return c.QuizCatalog.DeleteQuestion(ctx, quizID, questionID, minQuestions)
}

func (c *CachedCatalog) lookup(ctx context.Context, quizID int64) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, quizKey(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *CachedCatalog) evict(ctx context.Context, quizID int64) {
	_ = c.client.Del(ctx, quizKey(quizID)).Err()
}

func quizKey(quizID int64) string {
	return "catalog:quiz:" + strconv.FormatInt(quizID, 10)
}

func (c *CachedCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
