// Package ledger holds the rules that span more than one record: the
// cross-field validation of money movements, the write path that applies it,
// and the idempotent seed of the default taxonomy.
//
// Column-level rules (amount range, name uniqueness, delete protection) live
// in the storage schema and surface as common.ConstraintViolation.
package ledger
