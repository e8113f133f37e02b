// Package connectors provides the Connector implementations that feed the
// ingestion pipeline: local PDF files, rows of a CSV file and pages from
// trusted medical websites. Every connector stamps its documents with a
// fixed provenance tag.
package connectors
