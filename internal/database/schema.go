package database

import "github.com/varoOP/moviedb/internal/domain"

// sqliteSchema and its siblings create the movie tables. The (title,
// release_year) index is not unique: the existence check before insert is the
// only duplicate guard.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS genres (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(255) NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(255) NOT NULL,
	release_year INTEGER,
	vote_average REAL NOT NULL DEFAULT 0,
	popularity REAL NOT NULL DEFAULT 0,
	box_office INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_title_year ON movies(title, release_year)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	movie_id INTEGER NOT NULL,
	genre_id INTEGER NOT NULL,
	FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
	FOREIGN KEY (genre_id) REFERENCES genres(id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genres_movie ON movie_genres(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS genres (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS movies (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	release_year INTEGER NULL,
	vote_average DOUBLE NOT NULL DEFAULT 0,
	popularity DOUBLE NOT NULL DEFAULT 0,
	box_office BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_movies_title_year (title, release_year)
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
	id INTEGER AUTO_INCREMENT PRIMARY KEY,
	movie_id INTEGER NOT NULL,
	genre_id INTEGER NOT NULL,
	FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
	FOREIGN KEY (genre_id) REFERENCES genres(id)
) ENGINE=InnoDB`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS genres (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS movies (
	id SERIAL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	release_year INTEGER,
	vote_average DOUBLE PRECISION NOT NULL DEFAULT 0,
	popularity DOUBLE PRECISION NOT NULL DEFAULT 0,
	box_office BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_title_year ON movies(title, release_year)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
	id SERIAL PRIMARY KEY,
	movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
	genre_id INTEGER NOT NULL REFERENCES genres(id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genres_movie ON movie_genres(movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)`,
}

var schemas = map[domain.Driver][]string{
	domain.DriverSQLite:   sqliteSchema,
	domain.DriverMySQL:    mysqlSchema,
	domain.DriverPostgres: postgresSchema,
}
