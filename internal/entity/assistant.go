package entity

import "time"

// Exchange is one persisted voice exchange: the uploaded recording, what the
// user said and what the assistant answered, plus any extracted intents as
// raw JSON.
type Exchange struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	AudioFile  string    `db:"audio_file"`
	Transcript string    `db:"transcript"`
	Reply      string    `db:"reply"`
	Intents    []byte    `db:"intents"`
	CreatedAt  time.Time `db:"created_at"`
}
