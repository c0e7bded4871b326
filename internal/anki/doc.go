// Package anki implements service.CardStore on top of the AnkiConnect add-on.
//
// AnkiConnect exposes Anki over a single JSON endpoint: every call is a POST of
// {"action", "version", "params"} answered by {"result", "error"}. Read-only
// actions are retried on transport failures; writes are sent exactly once so a
// lost response never duplicates a note.
package anki
