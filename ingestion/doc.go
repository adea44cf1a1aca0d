// Package ingestion orchestrates bulk indexing of datasets.
//
// The Pipeline type splits input into bounded batches. Within a batch every
// dataset is prepared concurrently on a worker pool, then the prepared
// documents are handed to a single writer in input order. Context
// cancellation is checked between batches.
//
// Failures of individual datasets never stop the run; they are collected and
// returned together once every batch has been processed.
package ingestion
