package data

import (
	"database/sql"
	"fmt"
)

var (
	stateQueries = map[string]string{
		"activity":  "SELECT COUNT(*) FROM activity",
		"failed":    "SELECT COUNT(*) FROM activity WHERE status = 'failed'",
		"motorista": "SELECT COUNT(DISTINCT motorista_id) FROM activity WHERE motorista_id != ''",
		"profile":   "SELECT COUNT(*) FROM profile",
	}
)

// GetDataState returns the current state of the database.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, v := range stateQueries {
		stmt, err := db.Prepare(v)
		if err != nil {
			return nil, fmt.Errorf("error preparing %s statement: %w", k, err)
		}

		count, err := getCount(stmt)
		stmt.Close()
		if err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}

func getCount(stmt *sql.Stmt) (int64, error) {
	var count int64
	if err := stmt.QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to scan row: %w", err)
	}
	return count, nil
}
