// Package services implements the core of the collaborative editor.
//
//   - Editor: applies the six edit commands to a document
//   - SyncProtocol: join, leave and broadcast for realtime sessions
//   - Persistence: diff based save and load of documents
//   - Registry: the single live instance of each open document
//   - Hub: the driving.Hub used by realtime transports
//   - ExportService: the driving.ExportService used by the CLI and MCP
//
// Every method that touches a document's shapes or sessions expects the
// caller to hold that document's lock. Hub, Registry and ExportService take
// the lock themselves; Editor, SyncProtocol and Persistence.Save do not.
package services
