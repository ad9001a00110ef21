// Package logging builds the slog loggers used across vcat.
//
// Two output formats are supported: a human-oriented console format for
// interactive CLI runs and a JSON format for captured logs. Both honour the
// level and output-path settings from configuration, and both rewrite
// timestamps to UTC RFC3339 in structured output so log archives sort
// correctly.
package logging
