// Package log provides structured logging for fleetctl using zerolog.
//
// Call Init once at process start with the desired level and output
// format; every component then derives a child logger via the With*
// helpers so log lines carry the identifier relevant to that
// component (node_id, role_name, run_id, schedule_id) without each
// call site repeating it.
package log
