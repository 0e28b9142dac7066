// Package services implements the driving ports: the availability
// prober, the download completion watcher, and the fetch orchestrator.
//
// Services depend on domain types and driven ports only; adapters are
// injected by the composition root.
package services
