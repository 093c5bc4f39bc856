// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gt-analyzer/internal/common/database"
	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/models"
)

// ==========================
// 1. Schema
// ==========================

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		context TEXT,
		quotes TEXT NOT NULL DEFAULT '[]',
		pass INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		kind TEXT NOT NULL,
		strength DOUBLE PRECISION NOT NULL,
		evidence TEXT NOT NULL DEFAULT '[]',
		flagged BOOLEAN NOT NULL DEFAULT FALSE,
		pass INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS codes (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		description TEXT,
		properties TEXT NOT NULL DEFAULT '[]',
		dimensions TEXT NOT NULL DEFAULT '[]',
		quotes TEXT NOT NULL DEFAULT '[]',
		frequency INTEGER NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		parent TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		run_id TEXT PRIMARY KEY,
		model TEXT NOT NULL DEFAULT '',
		interview_count INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		result TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// ==========================
// 2. PostgresGraph
// ==========================

// PostgresGraph stores the analysis graph in PostgreSQL. JSON-shaped
// columns (quotes, evidence, properties) hold marshaled JSON text.
type PostgresGraph struct {
	client *database.PostgresClient
	logger logger.Logger
}

func NewPostgresGraph(client *database.PostgresClient, log logger.Logger) *PostgresGraph {
	return &PostgresGraph{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-graph"}),
	}
}

// EnsureSchema creates the graph tables when they do not exist yet.
func (g *PostgresGraph) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := g.client.Exec(ctx, stmt); err != nil {
			return errors.NewStorageUnavailableError(err)
		}
	}
	return nil
}

func (g *PostgresGraph) CreateEntity(ctx context.Context, entity models.Candidate) (string, error) {
	id := uuid.New().String()
	quotes, err := json.Marshal(entity.Quotes)
	if err != nil {
		quotes = []byte("[]")
	}

	_, err = g.client.Exec(ctx, `
		INSERT INTO entities (id, name, kind, confidence, context, quotes, pass, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id,
		entity.Name,
		string(entity.Kind),
		entity.Confidence,
		entity.Context,
		quotes,
		entity.Pass,
		time.Now().UTC(),
	)
	if err != nil {
		return "", errors.NewStorageUnavailableError(err)
	}

	g.logger.Debug("Entity stored", map[string]interface{}{
		"id":   id,
		"name": entity.Name,
		"kind": string(entity.Kind),
	})
	return id, nil
}

func (g *PostgresGraph) CreateRelationship(ctx context.Context, rel models.RelationshipCandidate) (string, error) {
	id := uuid.New().String()
	evidence, err := json.Marshal(rel.Evidence)
	if err != nil {
		evidence = []byte("[]")
	}

	_, err = g.client.Exec(ctx, `
		INSERT INTO relationships (id, run_id, source, target, kind, strength, evidence, flagged, pass, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id,
		"",
		rel.Source,
		rel.Target,
		rel.Kind,
		rel.Strength,
		evidence,
		rel.Flagged,
		rel.Pass,
		time.Now().UTC(),
	)
	if err != nil {
		return "", errors.NewStorageUnavailableError(err)
	}

	g.logger.Debug("Relationship stored", map[string]interface{}{
		"id":     id,
		"source": rel.Source,
		"target": rel.Target,
		"kind":   rel.Kind,
	})
	return id, nil
}

func (g *PostgresGraph) CreateCode(ctx context.Context, code *models.Code) (string, error) {
	id, err := insertCode(ctx, g.client.GetDB(), "", code)
	if err != nil {
		return "", err
	}
	g.logger.Debug("Code stored", map[string]interface{}{
		"id":   id,
		"name": code.Name,
	})
	return id, nil
}

// StoreResult writes a completed analysis run atomically: the run row,
// its codes, and its relationships commit together or not at all.
func (g *PostgresGraph) StoreResult(ctx context.Context, result *models.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}

	tx, err := g.client.BeginTx(ctx)
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}
	defer tx.Rollback()

	meta := result.Metadata
	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, model, interview_count, started_at, completed_at, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		meta.RunID,
		meta.Model,
		meta.InterviewCount,
		meta.StartedAt,
		meta.CompletedAt,
		resultJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}

	for _, code := range result.Codes {
		if _, err := insertCode(ctx, tx, meta.RunID, code); err != nil {
			return err
		}
	}

	for _, rel := range result.Relationships {
		evidence, err := json.Marshal(rel.Evidence)
		if err != nil {
			evidence = []byte("[]")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO relationships (id, run_id, source, target, kind, strength, evidence, flagged, pass, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New().String(),
			meta.RunID,
			rel.CentralCategory,
			rel.RelatedCategory,
			rel.Kind,
			rel.Strength,
			evidence,
			rel.Flagged,
			0,
			time.Now().UTC(),
		)
		if err != nil {
			return errors.NewStorageUnavailableError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageUnavailableError(err)
	}

	g.logger.Info("Analysis run stored", map[string]interface{}{
		"runId":         meta.RunID,
		"codes":         len(result.Codes),
		"relationships": len(result.Relationships),
	})
	return nil
}

// Query runs an arbitrary parameterized statement and returns the rows
// as column-name keyed maps, with byte columns converted to strings.
func (g *PostgresGraph) Query(ctx context.Context, statement string, params []interface{}) ([]map[string]interface{}, error) {
	rows, err := g.client.Query(ctx, statement, params...)
	if err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.NewStorageUnavailableError(err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}
	return results, nil
}

func (g *PostgresGraph) Close() error {
	return g.client.Close()
}

// ==========================
// 3. Helpers
// ==========================

// execer covers both *sql.DB and *sql.Tx so code inserts can run inside
// or outside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertCode(ctx context.Context, db execer, runID string, code *models.Code) (string, error) {
	id := uuid.New().String()
	properties := marshalOrEmptyList(code.Properties)
	dimensions := marshalOrEmptyList(code.Dimensions)
	quotes := marshalOrEmptyList(code.SupportingQuotes)

	_, err := db.ExecContext(ctx, `
		INSERT INTO codes (id, run_id, name, description, properties, dimensions, quotes, frequency, confidence, parent, level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id,
		runID,
		code.Name,
		code.Description,
		properties,
		dimensions,
		quotes,
		code.Frequency,
		code.Confidence,
		code.Parent,
		code.Level,
		time.Now().UTC(),
	)
	if err != nil {
		return "", errors.NewStorageUnavailableError(err)
	}
	return id, nil
}

func marshalOrEmptyList(values []string) []byte {
	raw, err := json.Marshal(values)
	if err != nil || values == nil {
		return []byte("[]")
	}
	return raw
}
