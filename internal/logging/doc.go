// Package logging implements pgbulk.Logger.
//
//   - ConsoleLogger: plain lines on stderr, [VERBOSE]/[ERROR] prefixes
//   - StructuredLogger: logrus text or JSON, with fields such as run_id
//   - NullLogger: discards everything
package logging
