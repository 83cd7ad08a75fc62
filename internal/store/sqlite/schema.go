package sqlite

// schema creates the record tables. Fields are stored as a JSON object so
// queries can sort and filter on them with json_extract.
const schema = `
CREATE TABLE IF NOT EXISTS records (
	name          TEXT PRIMARY KEY,
	type          TEXT NOT NULL,
	fields        TEXT NOT NULL DEFAULT '{}',
	creation_date INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_type ON records(type, creation_date);

CREATE TABLE IF NOT EXISTS record_refs (
	record_name TEXT NOT NULL,
	field       TEXT NOT NULL,
	target      TEXT NOT NULL,
	action      INTEGER NOT NULL,
	PRIMARY KEY (record_name, field)
);

CREATE INDEX IF NOT EXISTS idx_record_refs_target ON record_refs(target);
`

// cascadeDelete removes a record and everything reaching it through
// delete-self references.
const cascadeDelete = `
WITH RECURSIVE doomed(name) AS (
	SELECT name FROM records WHERE name = ?
	UNION
	SELECT rr.record_name FROM record_refs rr
	JOIN doomed d ON rr.target = d.name
	WHERE rr.action = ?
)
DELETE FROM records WHERE name IN (SELECT name FROM doomed)
`

const pruneRefs = `DELETE FROM record_refs WHERE record_name NOT IN (SELECT name FROM records)`
