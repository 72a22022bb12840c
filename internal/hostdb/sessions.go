package hostdb

import "github.com/google/uuid"

// NewIngestSession records the start of one host bridge ingest run
// (e.g. one USB HID connection lifetime) under a fresh correlation id,
// grounded on the teacher's use of google/uuid for run/scene ids.
func (db *DB) NewIngestSession(source string, startedUnix int64) (sessionID string, err error) {
	sessionID = uuid.New().String()
	_, err = db.Exec(`INSERT INTO ingest_sessions (session_id, source, started_unix) VALUES (?, ?, ?)`,
		sessionID, source, startedUnix)
	if err != nil {
		return "", err
	}
	return sessionID, nil
}
