// Package retention prunes old conversations on a cron schedule,
// cascading deletes to their queries and responses.
package retention
