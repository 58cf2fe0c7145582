package users

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	queryFindByUsername = `
		SELECT username, password, created_at
		FROM users
		WHERE username = $1
	`

	queryCreate = `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING username, password, created_at
	`
)
