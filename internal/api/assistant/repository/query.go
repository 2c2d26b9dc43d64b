package assistantRepository

const (
	queryCreateExchange = `
		INSERT INTO assistant_exchanges (
			id,
			user_id,
			audio_file,
			transcript,
			reply,
			intents,
			created_at
		) VALUES (
			:id,
			:user_id,
			:audio_file,
			:transcript,
			:reply,
			:intents,
			:created_at
		)
	`

	queryGetExchangeByID = `
		SELECT
			id,
			user_id,
			audio_file,
			transcript,
			reply,
			intents,
			created_at
		FROM assistant_exchanges
		WHERE id = :id
	`

	queryGetExchangesByUserID = `
		SELECT
			id,
			user_id,
			audio_file,
			transcript,
			reply,
			intents,
			created_at
		FROM assistant_exchanges
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit
	`
)
