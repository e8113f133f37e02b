// Package services implements the driving ports.
//
// AskService runs the answer pipeline: retrieve, gate on lexical relevance,
// assemble the context, render the prompt, generate and sanitise.
// IngestService feeds connectors through normalisers and post-processors
// into the index and the catalog. CatalogService, EvalService,
// SettingsService and Scheduler cover inspection, golden-set evaluation,
// configuration and periodic refresh.
//
// Services depend only on domain and the port interfaces.
package services
