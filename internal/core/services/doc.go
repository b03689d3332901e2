// Package services contains the core business logic of the correlation
// engine. Services implement the driving ports and depend only on the
// driven port interfaces, never on concrete adapters.
//
// Services:
//   - MatcherService: pairwise document relationship scoring
//   - TimelineService: per-document events and cross-referenced timelines
//   - IngestService: validation, classification, chunking, analysis and
//     persistence of evidence files
package services
