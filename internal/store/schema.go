package store

// schema is applied statement by statement on every Open
const schema = `
CREATE TABLE IF NOT EXISTS word_image (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	url    TEXT NOT NULL DEFAULT '',
	width  INTEGER NOT NULL,
	height INTEGER NOT NULL,
	data   BLOB
);

CREATE TABLE IF NOT EXISTS word (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	id_image      INTEGER NOT NULL DEFAULT -1,
	name          TEXT NOT NULL UNIQUE,
	transcription TEXT NOT NULL,
	translation   TEXT NOT NULL,
	association   TEXT NOT NULL,
	etymology     TEXT NOT NULL,
	description   TEXT NOT NULL,
	type          INTEGER NOT NULL DEFAULT 1,
	date          DATETIME,
	FOREIGN KEY (id_image) REFERENCES word_image (id)
);
`

const selectWord = `
SELECT word.id, word.name, word.transcription, word.translation,
       word.association, word.etymology, word.description, word.type, word.date,
       word_image.id, word_image.url, word_image.width, word_image.height, word_image.data
FROM word
LEFT JOIN word_image ON word.id_image = word_image.id`
