package store

// Migration represents a single schema migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations contains all schema migrations in order.
// Fresh databases get the full schema and skip straight to SchemaVersion.
var Migrations = []Migration{
	{
		Version:     2,
		Description: "Add indexes for queue drains and entity lookups",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_mutation_queue_status ON mutation_queue(status, created_at);
			CREATE INDEX IF NOT EXISTS idx_mutation_queue_entity ON mutation_queue(entity_id);
		`,
	},
}
