package assistantRepository

import (
	"AsystentGolang/internal/api/assistant"
	"AsystentGolang/internal/entity"
	contextPkg "AsystentGolang/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type ExchangeDB struct {
	ID         sql.NullString `db:"id"`
	UserID     sql.NullString `db:"user_id"`
	AudioFile  sql.NullString `db:"audio_file"`
	Transcript sql.NullString `db:"transcript"`
	Reply      sql.NullString `db:"reply"`
	Intents    []byte         `db:"intents"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *exchangeRepository) CreateExchange(c context.Context, exchange entity.Exchange) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         exchange.ID,
		"user_id":    exchange.UserID,
		"audio_file": exchange.AudioFile,
		"transcript": exchange.Transcript,
		"reply":      exchange.Reply,
		"intents":    exchange.Intents,
		"created_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateExchange, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateExchange")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating exchange")

		return err
	}

	return nil
}

func (r *exchangeRepository) GetExchangeByID(c context.Context, id string) (entity.Exchange, error) {
	requestID := contextPkg.GetRequestID(c)
	var exchange ExchangeDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetExchangeByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetExchangeByID named query preparation err")

		return entity.Exchange{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&exchange); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetExchangeByID no rows found")
			return entity.Exchange{}, assistant.ErrExchangeNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetExchangeByID execution err")
		return entity.Exchange{}, err
	}

	return r.makeExchange(exchange), nil
}

func (r *exchangeRepository) GetExchangesByUserID(c context.Context, userID string, limit int) ([]entity.Exchange, error) {
	requestID := contextPkg.GetRequestID(c)
	var exchanges []ExchangeDB

	if limit <= 0 {
		limit = 20
	}

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	}

	query, args, err := sqlx.Named(queryGetExchangesByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetExchangesByUserID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &exchanges, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetExchangesByUserID execution err")
		return nil, err
	}

	result := make([]entity.Exchange, 0, len(exchanges))
	for _, exchange := range exchanges {
		result = append(result, r.makeExchange(exchange))
	}

	return result, nil
}

func (r *exchangeRepository) makeExchange(exchange ExchangeDB) entity.Exchange {
	return entity.Exchange{
		ID:         exchange.ID.String,
		UserID:     exchange.UserID.String,
		AudioFile:  exchange.AudioFile.String,
		Transcript: exchange.Transcript.String,
		Reply:      exchange.Reply.String,
		Intents:    exchange.Intents,
		CreatedAt:  exchange.CreatedAt,
	}
}
