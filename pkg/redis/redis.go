package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	historyKeyPrefix = "assistant:history:"
	historyTTL       = 30 * time.Minute
	maxTurns         = 10
)

// ConversationTurn is one side of a past exchange, kept as short-term memory
// for the response prompt.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type IRedis interface {
	GetConversation(ctx context.Context, userID string) ([]ConversationTurn, error)
	AppendConversation(ctx context.Context, userID, userText, reply string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) GetConversation(ctx context.Context, userID string) ([]ConversationTurn, error) {
	raw, err := r.client.Get(ctx, historyKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var turns []ConversationTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, err
	}

	return turns, nil
}

// AppendConversation records one finished exchange, keeping only the most
// recent turns.
func (r *redisClient) AppendConversation(ctx context.Context, userID, userText, reply string) error {
	turns, err := r.GetConversation(ctx, userID)
	if err != nil {
		return err
	}

	turns = append(turns,
		ConversationTurn{Role: "user", Content: userText},
		ConversationTurn{Role: "assistant", Content: reply},
	)

	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	raw, err := json.Marshal(turns)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, historyKeyPrefix+userID, raw, historyTTL).Err()
}
