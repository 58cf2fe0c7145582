package conversations

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			room_id TEXT NOT NULL,
			timestamp BIGINT NOT NULL,
			messages JSONB NOT NULL DEFAULT '[]'::jsonb
		);
		CREATE INDEX IF NOT EXISTS idx_conversations_room_timestamp ON conversations(room_id, timestamp DESC);
	`

	queryInsert = `
		INSERT INTO conversations (room_id, timestamp, messages)
		VALUES ($1, $2, $3::jsonb)
	`

	queryLastBefore = `
		SELECT room_id, timestamp, messages
		FROM conversations
		WHERE room_id = $1 AND timestamp < $2
		ORDER BY timestamp DESC
		LIMIT 1
	`
)
