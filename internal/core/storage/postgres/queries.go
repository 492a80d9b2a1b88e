package postgres

// SQL for audit log storage. Table and column identifiers are always passed
// through pq.QuoteIdentifier before being formatted into these templates.

const (
	// queryValidateSchema counts the logical parent tables created by migrations.
	queryValidateSchema = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name = ANY($1)
	`

	// queryPartitionLock serializes creators of one partition for the rest of the
	// transaction. Keyed by partition.LockKey(name).
	queryPartitionLock = `SELECT pg_advisory_xact_lock($1)`

	// queryPartitionExists checks the catalog once the lock is held.
	queryPartitionExists = `SELECT to_regclass($1) IS NOT NULL`

	// queryCreatePartition attaches a monthly range partition to its parent.
	// Args: partition, parent, lower bound literal (inclusive), upper bound literal (exclusive).
	queryCreatePartition = `CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM (%s) TO (%s)`

	// queryInsertRecord writes straight into the partition. The id comes from the
	// category's global sequence so it stays unique across partitions.
	// Args: partition, column list, sequence literal, placeholders.
	queryInsertRecord = `INSERT INTO %s (id, %s) VALUES (nextval(%s), %s) RETURNING id`

	// querySelectRecords reads through the parent, spanning every partition.
	querySelectRecords = `SELECT %s FROM %s`

	queryCountRecords = `SELECT COUNT(*) FROM %s`

	// queryGroupCount args: group column list, parent.
	queryGroupCount = `SELECT %s, COUNT(*) FROM %s`

	orderByTimestamp = ` ORDER BY "timestamp" ASC, "id" ASC`
)

// boundLayout formats partition range bounds for a timestamp column.
const boundLayout = "2006-01-02 15:04:05"
