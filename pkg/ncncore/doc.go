// Package ncncore implements the core of a Node Consensus Network (NCN)
// program: a per-epoch, stake-weighted ballot consensus engine with an
// attached multi-stage reward-routing pipeline.
//
// Operators registered under an NCN submit votes on a discrete outcome,
// weighted by effective stake derived from vault delegations across
// staked-token mints. Once a supermajority of stake weight agrees on a
// ballot, the epoch reaches consensus; rewards received during the epoch
// are split between a protocol fee wallet, an NCN fee wallet, and
// participating operators, who further sub-route their share to the
// vaults delegating to them.
//
// This package has no network, storage, or transaction-submission
// concerns: it is a pure state-transition library. Callers persist the
// structs it exposes and invoke its methods as each transition occurs;
// every external dependency (delegation state, the epoch/slot clock, an
// account payer) is consumed through the narrow interfaces in
// delegation.go.
package ncncore
