package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/strataguard/riskdata/model"
)

// knownTables is the allowlist of replaceable tables. Table and column
// names are interpolated into SQL, so both come from here, never from
// callers.
var knownTables = map[string]struct{}{
	model.TableRisks:                    {},
	model.TableControls:                 {},
	model.TableQuestions:                {},
	model.TableDefinitions:              {},
	model.TableCapabilities:             {},
	model.TableRiskControlMapping:       {},
	model.TableQuestionRiskMapping:      {},
	model.TableQuestionControlMapping:   {},
	model.TableCapabilityControlMapping: {},
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS risks (
		risk_id TEXT PRIMARY KEY,
		risk_title TEXT NOT NULL,
		risk_description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS controls (
		control_id TEXT PRIMARY KEY,
		control_title TEXT NOT NULL,
		control_description TEXT,
		asset_type TEXT,
		control_type TEXT,
		security_function TEXT,
		maturity_level TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		question_id TEXT PRIMARY KEY,
		question_text TEXT NOT NULL,
		category TEXT,
		topic TEXT,
		managing_role TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS definitions (
		definition_id TEXT PRIMARY KEY,
		term TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		source TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS capabilities (
		capability_id TEXT PRIMARY KEY,
		capability_name TEXT NOT NULL,
		capability_type TEXT NOT NULL,
		capability_domain TEXT,
		capability_definition TEXT,
		controls TEXT,
		candidate_products TEXT,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS risk_control_mapping (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		risk_id TEXT NOT NULL,
		control_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (risk_id) REFERENCES risks (risk_id),
		FOREIGN KEY (control_id) REFERENCES controls (control_id),
		UNIQUE(risk_id, control_id)
	)`,
	`CREATE TABLE IF NOT EXISTS question_risk_mapping (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL,
		risk_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (question_id) REFERENCES questions (question_id),
		FOREIGN KEY (risk_id) REFERENCES risks (risk_id),
		UNIQUE(question_id, risk_id)
	)`,
	`CREATE TABLE IF NOT EXISTS question_control_mapping (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL,
		control_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (question_id) REFERENCES questions (question_id),
		FOREIGN KEY (control_id) REFERENCES controls (control_id),
		UNIQUE(question_id, control_id)
	)`,
	`CREATE TABLE IF NOT EXISTS capability_control_mapping (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		capability_id TEXT NOT NULL,
		control_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (capability_id) REFERENCES capabilities (capability_id),
		FOREIGN KEY (control_id) REFERENCES controls (control_id),
		UNIQUE(capability_id, control_id)
	)`,
	`CREATE TABLE IF NOT EXISTS file_metadata (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data_type TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_exists BOOLEAN NOT NULL,
		file_size INTEGER,
		file_modified_time TIMESTAMP,
		version TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS processing_metadata (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		processing_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		data_version TEXT,
		total_risks INTEGER,
		total_controls INTEGER,
		total_questions INTEGER,
		total_definitions INTEGER,
		total_capabilities INTEGER,
		total_risk_control_mappings INTEGER,
		total_question_risk_mappings INTEGER,
		total_question_control_mappings INTEGER,
		total_capability_control_mappings INTEGER,
		processing_status TEXT DEFAULT 'completed'
	)`,
}

// SQLiteSink is the Sink implementation backed by a SQLite file.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return &SQLiteSink{db: db, logger: logger}, nil
}

// CreateSchema creates every table the pipeline writes.
func (s *SQLiteSink) CreateSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	s.logger.Info("database schema ready")
	return nil
}

// ReplaceTable rewrites one table wholesale. The delete and all inserts
// run in a single transaction, so readers never observe a half-written
// table.
func (s *SQLiteSink) ReplaceTable(table model.Table) error {
	if _, ok := knownTables[table.Name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table.Name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replacing %s: %w", table.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM " + table.Name); err != nil {
		return fmt.Errorf("replacing %s: %w", table.Name, err)
	}

	if len(table.Rows) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")
		stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table.Name, strings.Join(table.Columns, ", "), placeholders))
		if err != nil {
			return fmt.Errorf("replacing %s: %w", table.Name, err)
		}
		defer stmt.Close()
		for _, row := range table.Rows {
			if _, err := stmt.Exec(row...); err != nil {
				return fmt.Errorf("replacing %s: %w", table.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replacing %s: %w", table.Name, err)
	}
	s.logger.Info("replaced table", "table", table.Name, "rows", len(table.Rows))
	return nil
}

// InsertFileMetadata appends one file provenance record.
func (s *SQLiteSink) InsertFileMetadata(md model.FileMetadata) error {
	_, err := s.db.Exec(`INSERT INTO file_metadata
		(data_type, filename, file_exists, file_size, file_modified_time, version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		md.DataType, md.Filename, md.FileExists, md.FileSize, md.ModifiedTime, md.Version)
	if err != nil {
		return fmt.Errorf("inserting file metadata for %s: %w", md.DataType, err)
	}
	return nil
}

// InsertProcessingMetadata appends one run record.
func (s *SQLiteSink) InsertProcessingMetadata(md model.ProcessingMetadata) error {
	_, err := s.db.Exec(`INSERT INTO processing_metadata
		(run_id, processing_date, data_version,
		 total_risks, total_controls, total_questions, total_definitions, total_capabilities,
		 total_risk_control_mappings, total_question_risk_mappings,
		 total_question_control_mappings, total_capability_control_mappings,
		 processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		md.RunID, md.ProcessedAt, md.DataVersion,
		md.TotalRisks, md.TotalControls, md.TotalQuestions, md.TotalDefinitions, md.TotalCapabilities,
		md.RiskControlMappings, md.QuestionRiskMappings,
		md.QuestionControlMappings, md.CapabilityControlMappings,
		string(md.Status))
	if err != nil {
		return fmt.Errorf("inserting processing metadata: %w", err)
	}
	return nil
}

// TableCount returns the number of rows in a known table.
func (s *SQLiteSink) TableCount(name string) (int, error) {
	if _, ok := knownTables[name]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + name).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting %s: %w", name, err)
	}
	return count, nil
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
