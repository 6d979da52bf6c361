// Package manager creates, drops, and inspects PostgreSQL databases for the
// provisioner.
//
// Database names are quoted with pgx.Identifier.Sanitize(). CREATE DATABASE and
// DROP DATABASE run on a dedicated connection because they cannot run inside a
// transaction block.
//
//	mgr := manager.New()
//	exists, err := mgr.Exists(ctx, conn, "cricket")
//	err = mgr.TerminateConnections(ctx, conn, "cricket")
//	err = mgr.Drop(ctx, conn, "cricket")
//	err = mgr.Create(ctx, conn, "cricket")
package manager
