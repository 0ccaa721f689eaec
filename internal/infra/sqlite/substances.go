package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dosewatch/dosewatch/internal/domain"
)

// ─── Substances ─────────────────────────────────────────────────────────────

// InsertSubstance creates a new tracked substance.
func (d *DB) InsertSubstance(sub domain.Substance) error {
	_, err := d.db.Exec(
		`INSERT INTO substances (id, name, category, dependency_category, auto_stop, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, string(sub.Category), string(sub.DependencyCategory),
		sub.AutoStopOnWearOff, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert substance: %w", err)
	}
	return nil
}

// GetSubstance returns a substance by id.
func (d *DB) GetSubstance(id string) (domain.Substance, error) {
	return d.scanSubstance(d.db.QueryRow(
		`SELECT id, name, category, dependency_category, auto_stop FROM substances WHERE id = ?`, id))
}

// GetSubstanceByName returns a substance by its exact name.
func (d *DB) GetSubstanceByName(name string) (domain.Substance, error) {
	return d.scanSubstance(d.db.QueryRow(
		`SELECT id, name, category, dependency_category, auto_stop FROM substances WHERE name = ?`, name))
}

func (d *DB) scanSubstance(row *sql.Row) (domain.Substance, error) {
	var sub domain.Substance
	var cat, dep string
	err := row.Scan(&sub.ID, &sub.Name, &cat, &dep, &sub.AutoStopOnWearOff)
	if err == sql.ErrNoRows {
		return sub, domain.ErrSubstanceNotFound
	}
	if err != nil {
		return sub, err
	}
	sub.Category = domain.Category(cat)
	sub.DependencyCategory = domain.Category(dep)
	return sub, nil
}

// ListSubstances returns all tracked substances ordered by name.
func (d *DB) ListSubstances() ([]domain.Substance, error) {
	rows, err := d.db.Query(
		`SELECT id, name, category, dependency_category, auto_stop FROM substances ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Substance
	for rows.Next() {
		var sub domain.Substance
		var cat, dep string
		if err := rows.Scan(&sub.ID, &sub.Name, &cat, &dep, &sub.AutoStopOnWearOff); err != nil {
			return nil, err
		}
		sub.Category = domain.Category(cat)
		sub.DependencyCategory = domain.Category(dep)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ─── Reference database ─────────────────────────────────────────────────────

// UpsertReference adds or replaces a reference entry by name.
func (d *DB) UpsertReference(e domain.ReferenceEntry) error {
	aliases, err := json.Marshal(e.Aliases)
	if err != nil {
		return fmt.Errorf("marshal aliases: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO reference_entries (name, generic_name, aliases, description)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET generic_name=excluded.generic_name,
		   aliases=excluded.aliases, description=excluded.description`,
		e.Name, e.GenericName, string(aliases), e.Description,
	)
	return err
}

// ListReferenceEntries returns the whole reference database. The set is
// small (hundreds of rows), so the baseline resolver matches in memory.
func (d *DB) ListReferenceEntries() ([]domain.ReferenceEntry, error) {
	rows, err := d.db.Query(
		`SELECT name, generic_name, aliases, description FROM reference_entries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ReferenceEntry
	for rows.Next() {
		var e domain.ReferenceEntry
		var aliases string
		if err := rows.Scan(&e.Name, &e.GenericName, &aliases, &e.Description); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aliases), &e.Aliases); err != nil {
			return nil, fmt.Errorf("unmarshal aliases for %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
