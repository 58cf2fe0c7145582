package rooms

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS chatrooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	queryList = `
		SELECT id, name, image
		FROM chatrooms
		ORDER BY created_at, id
	`

	queryGet = `
		SELECT id, name, image
		FROM chatrooms
		WHERE id = $1
	`

	queryCreate = `
		INSERT INTO chatrooms (id, name, image)
		VALUES ($1, $2, $3)
	`
)
