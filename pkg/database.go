package peakfinder

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type ManualPeakEntry struct {
	Channel     string  `db:"Channel"`
	GainVoltage float64 `db:"GainVoltage"`
	PulseHeight float64 `db:"PulseHeight"`
	PeakIndex   int     `db:"PeakIndex"`
}

// LoadManualPeaks reads the hand-picked peak indices stored for a dataset.
func LoadManualPeaks(db *sqlx.DB, dataset string) (ManualPeakTable, error) {
	query := db.Rebind("SELECT Channel, GainVoltage, PulseHeight, PeakIndex FROM ManualPeaks " +
		"WHERE Dataset = ? ORDER BY Channel, GainVoltage, PulseHeight, PeakIndex")

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading manual peaks of dataset %s from database", dataset), "database")
	}
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}

	rows, err := db.Queryx(query, dataset)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	table := make(ManualPeakTable)
	for rows.Next() {
		entry := ManualPeakEntry{}
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		channel := Channel(entry.Channel)
		if !channel.Known() {
			return nil, &InvalidParameterError{Name: "ManualPeaks.Channel", Value: entry.Channel, Reason: "unknown channel"}
		}
		if entry.PeakIndex < 0 {
			return nil, &InvalidParameterError{Name: "ManualPeaks.PeakIndex", Value: entry.PeakIndex, Reason: "must not be negative"}
		}
		key := RunKey{Channel: channel, GainVoltage: entry.GainVoltage, PulseHeight: entry.PulseHeight}
		table[key] = append(table[key], entry.PeakIndex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	return table, nil
}
